package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

type Comment struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	ArticleID string        `gorm:"size:36;not null;index" json:"articleId" validate:"required"`
	UserID    *string       `gorm:"size:64" json:"userId"` // nil for anonymous comments
	UserName  string        `gorm:"not null" json:"userName" validate:"required"`
	UserEmail string        `json:"userEmail,omitempty"`
	Content   string        `gorm:"type:text;not null" json:"content" validate:"required"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Status    CommentStatus `gorm:"size:20;not null;index" json:"status" validate:"oneof=pending approved rejected"`
	ParentID  *string       `gorm:"size:36;index" json:"parentId"` // nil for top-level comments
	Likes     int           `gorm:"not null;default:0" json:"likes"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
