package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name        string  `gorm:"not null" json:"name" validate:"required"`
	Slug        string  `gorm:"size:255;not null;uniqueIndex" json:"slug" validate:"required"`
	Description string  `gorm:"type:text" json:"description"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Color       string  `gorm:"size:32" json:"color,omitempty"`
	ParentID    *string `gorm:"size:36;index" json:"parentId"`
	// "order" is reserved in SQL
	Order        int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	Active       bool      `gorm:"not null;index" json:"active"`
	ArticleCount int       `gorm:"not null;default:0" json:"articleCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// LastModified is updatedAt falling back to createdAt.
func (c *Category) LastModified() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}
