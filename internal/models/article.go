package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// Source is an external reference cited by an article.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Article struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Title        string        `gorm:"not null" json:"title" validate:"required"`
	Slug         string        `gorm:"size:255;not null;index" json:"slug" validate:"required"`
	Content      string        `gorm:"type:text" json:"content"`
	Summary      string        `gorm:"type:text" json:"summary"`
	ImageURL     string        `json:"imageUrl"`
	ImageCredit  string        `json:"imageCredit,omitempty"`
	PublishedAt  *time.Time    `gorm:"index" json:"publishedAt" validate:"required_if=Status published"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	AuthorID     string        `gorm:"size:64;index" json:"authorId"`
	AuthorName   string        `json:"authorName"`
	Tags         []string      `gorm:"type:text;serializer:json" json:"tags"`
	Status       ArticleStatus `gorm:"size:20;not null;index" json:"status" validate:"oneof=draft published archived"`
	Featured     bool          `gorm:"not null;index" json:"featured"`
	ViewCount    int64         `gorm:"not null;default:0" json:"viewCount" validate:"gte=0"`
	CommentCount int           `gorm:"not null;default:0" json:"commentCount"`
	LikeCount    int           `gorm:"not null;default:0" json:"likeCount"`
	ShareCount   int           `gorm:"not null;default:0" json:"shareCount"`
	Sources      []Source      `gorm:"type:text;serializer:json" json:"sources,omitempty"`

	// Categories keeps categoryIds in order; position 0 is the primary category.
	Categories  []ArticleCategory `gorm:"foreignKey:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CategoryIDs []string          `gorm:"-" json:"categoryIds"`
}

// ArticleCategory links an article to one of its categories.
type ArticleCategory struct {
	ArticleID  string `gorm:"primaryKey;size:36"`
	CategoryID string `gorm:"primaryKey;size:36;index"`
	Position   int    `gorm:"not null;default:0"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	for i := range a.Categories {
		a.Categories[i].ArticleID = a.ID
	}
	return nil
}

// SetCategoryIDs replaces the ordered category list.
func (a *Article) SetCategoryIDs(ids []string) {
	a.CategoryIDs = ids
	a.Categories = make([]ArticleCategory, 0, len(ids))
	for i, id := range ids {
		a.Categories = append(a.Categories, ArticleCategory{ArticleID: a.ID, CategoryID: id, Position: i})
	}
}

// SyncCategoryIDs fills CategoryIDs from loaded category links.
func (a *Article) SyncCategoryIDs() {
	links := append([]ArticleCategory(nil), a.Categories...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Position < links[j].Position })
	a.CategoryIDs = make([]string, len(links))
	for i, l := range links {
		a.CategoryIDs[i] = l.CategoryID
	}
}

// PrimaryCategoryID returns the first category id, or "" when uncategorized.
func (a *Article) PrimaryCategoryID() string {
	if len(a.CategoryIDs) == 0 {
		return ""
	}
	return a.CategoryIDs[0]
}

// Visible reports whether readers may see the article.
func (a *Article) Visible() bool {
	return a.Status == ArticleStatusPublished && a.PublishedAt != nil
}

// LastModified is updatedAt falling back to publishedAt.
func (a *Article) LastModified() time.Time {
	if !a.UpdatedAt.IsZero() {
		return a.UpdatedAt
	}
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
