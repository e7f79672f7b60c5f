// Package testutil opens throwaway databases and builds fixtures for tests.
package testutil

import (
	"flashinfos/internal/db"
	"flashinfos/internal/models"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// Date returns a whole-second UTC time, convenient for ordering assertions.
func Date(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// CreateCategory inserts an active category.
func CreateCategory(t *testing.T, gdb *gorm.DB, slug string, order int, mutate ...func(*models.Category)) models.Category {
	t.Helper()

	c := models.Category{
		Name:   strings.ToUpper(slug[:1]) + slug[1:],
		Slug:   slug,
		Order:  order,
		Active: true,
	}
	for _, m := range mutate {
		m(&c)
	}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

// CreateArticle inserts a published article in the given categories.
func CreateArticle(t *testing.T, gdb *gorm.DB, slug string, publishedAt time.Time, categoryIDs []string, mutate ...func(*models.Article)) models.Article {
	t.Helper()

	a := models.Article{
		Title:       "Title " + slug,
		Slug:        slug,
		Content:     "<p>Content of " + slug + "</p>",
		Summary:     "Summary of " + slug,
		PublishedAt: &publishedAt,
		AuthorID:    "author-1",
		AuthorName:  "Rédaction",
		Tags:        []string{"news"},
		Status:      models.ArticleStatusPublished,
	}
	a.SetCategoryIDs(categoryIDs)
	for _, m := range mutate {
		m(&a)
	}
	require.NoError(t, gdb.Create(&a).Error)
	return a
}

// CreateComment inserts a comment on the article.
func CreateComment(t *testing.T, gdb *gorm.DB, articleID string, status models.CommentStatus, createdAt time.Time, mutate ...func(*models.Comment)) models.Comment {
	t.Helper()

	c := models.Comment{
		ArticleID: articleID,
		UserName:  "Lecteur",
		Content:   "Un commentaire",
		Status:    status,
		CreatedAt: createdAt,
	}
	for _, m := range mutate {
		m(&c)
	}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}
