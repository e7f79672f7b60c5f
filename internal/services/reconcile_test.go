package services

import (
	"context"
	"flashinfos/internal/models"
	"flashinfos/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerRun(t *testing.T) {
	gdb := testutil.NewDB(t)
	sport := testutil.CreateCategory(t, gdb, "sport", 1, func(c *models.Category) {
		c.ArticleCount = 99
	})
	empty := testutil.CreateCategory(t, gdb, "culture", 2, func(c *models.Category) {
		c.ArticleCount = 4
	})

	a := testutil.CreateArticle(t, gdb, "a", testutil.Date(2025, 1, 1, 8), []string{sport.ID}, func(a *models.Article) {
		a.CommentCount = 12
	})
	testutil.CreateArticle(t, gdb, "b", testutil.Date(2025, 1, 2, 8), []string{sport.ID})
	testutil.CreateArticle(t, gdb, "draft", testutil.Date(2025, 1, 3, 8), []string{sport.ID, empty.ID}, func(a *models.Article) {
		a.Status = models.ArticleStatusDraft
	})

	parent := testutil.CreateComment(t, gdb, a.ID, models.CommentStatusApproved, testutil.Date(2025, 1, 2, 8))
	testutil.CreateComment(t, gdb, a.ID, models.CommentStatusApproved, testutil.Date(2025, 1, 2, 9))
	testutil.CreateComment(t, gdb, a.ID, models.CommentStatusPending, testutil.Date(2025, 1, 2, 10))
	testutil.CreateComment(t, gdb, a.ID, models.CommentStatusApproved, testutil.Date(2025, 1, 2, 11), func(c *models.Comment) {
		c.ParentID = &parent.ID
	})

	require.NoError(t, NewReconciler(gdb).Run(context.Background()))

	var got models.Article
	require.NoError(t, gdb.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, 2, got.CommentCount)

	var gotSport, gotEmpty models.Category
	require.NoError(t, gdb.First(&gotSport, "id = ?", sport.ID).Error)
	assert.Equal(t, 2, gotSport.ArticleCount)
	require.NoError(t, gdb.First(&gotEmpty, "id = ?", empty.ID).Error)
	assert.Equal(t, 0, gotEmpty.ArticleCount)
}

func TestReconcilerSchedule(t *testing.T) {
	r := NewReconciler(testutil.NewDB(t))

	c, err := r.Schedule("@hourly")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()

	_, err = r.Schedule("not a spec")
	assert.Error(t, err)
}
