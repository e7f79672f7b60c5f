package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage is written by the contact form and read by the back office only.
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:nom;not null" json:"nom"`
	Email     string    `gorm:"not null" json:"email"`
	Subject   string    `gorm:"column:sujet;not null" json:"sujet"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"column:lu;not null" json:"lu"`
	Replied   bool      `gorm:"column:repondu;not null" json:"repondu"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
