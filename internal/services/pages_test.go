package services

import (
	"context"
	"flashinfos/internal/models"
	"flashinfos/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage(t *testing.T) {
	gdb := testutil.NewDB(t)
	p := NewPageService(NewContentService(gdb), newTestCache(t))
	ctx := context.Background()

	testutil.CreateCategory(t, gdb, "politique", 1)
	for i := 1; i <= 7; i++ {
		testutil.CreateArticle(t, gdb, "a"+string(rune('0'+i)), testutil.Date(2025, 2, i, 8), nil, func(a *models.Article) {
			a.Featured = true
		})
	}

	home := p.Home(ctx)
	assert.False(t, home.FetchFailed)
	assert.Len(t, home.Featured, HomeFeaturedCount)
	assert.Len(t, home.Latest, 7)
	require.Len(t, home.Categories, 1)

	// served from cache until it expires
	testutil.CreateArticle(t, gdb, "later", testutil.Date(2025, 3, 1, 8), nil)
	cached := p.Home(ctx)
	assert.Len(t, cached.Latest, 7)
	assert.Equal(t, "a7", cached.Latest[0].Slug)
}

func TestHomePageDegrades(t *testing.T) {
	gdb := testutil.NewDB(t)
	c := newTestCache(t)
	p := NewPageService(NewContentService(gdb), c)
	closeDB(t, gdb)

	home := p.Home(context.Background())
	assert.True(t, home.FetchFailed)
	assert.Empty(t, home.Latest)
	assert.Empty(t, home.Featured)
	assert.Empty(t, home.Categories)

	_, err := c.Get(context.Background(), "page:home")
	assert.Error(t, err)
}

func TestArticlePage(t *testing.T) {
	gdb := testutil.NewDB(t)
	p := NewPageService(NewContentService(gdb), newTestCache(t))
	ctx := context.Background()

	cat := testutil.CreateCategory(t, gdb, "sport", 1)
	a := testutil.CreateArticle(t, gdb, "finale", testutil.Date(2025, 2, 10, 20), []string{cat.ID})
	for i := 1; i <= 5; i++ {
		testutil.CreateArticle(t, gdb, "autre"+string(rune('0'+i)), testutil.Date(2025, 2, i, 20), []string{cat.ID})
	}
	testutil.CreateComment(t, gdb, a.ID, models.CommentStatusApproved, testutil.Date(2025, 2, 11, 8))

	page, err := p.Article(ctx, "finale")
	require.NoError(t, err)
	assert.Equal(t, a.ID, page.Article.ID)
	assert.Len(t, page.Comments, 1)
	assert.Len(t, page.Related, DefaultRelatedLimit)
	for _, r := range page.Related {
		assert.NotEqual(t, a.ID, r.ID)
	}
	assert.Equal(t, "sport", page.Categories[cat.ID].Slug)

	cached, err := p.Article(ctx, "finale")
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, cached.Article.CategoryIDs)
	assert.True(t, cached.Article.PublishedAt.Equal(*page.Article.PublishedAt))

	_, err = p.Article(ctx, "inconnu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryPage(t *testing.T) {
	gdb := testutil.NewDB(t)
	p := NewPageService(NewContentService(gdb), newTestCache(t))
	ctx := context.Background()

	cat := testutil.CreateCategory(t, gdb, "culture", 1)
	for i := 1; i <= DefaultPageSize+2; i++ {
		testutil.CreateArticle(t, gdb, "c"+string(rune('a'+i)), testutil.Date(2025, 1, i, 8), []string{cat.ID})
	}

	first, err := p.Category(ctx, "culture", SortNewest, "")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, first.Category.ID)
	assert.Len(t, first.Articles.Items, DefaultPageSize)
	assert.True(t, first.Articles.HasMore)
	assert.Len(t, first.Categories, 1)

	second, err := p.Category(ctx, "culture", SortNewest, first.Articles.NextCursor)
	require.NoError(t, err)
	assert.Len(t, second.Articles.Items, 2)
	assert.False(t, second.Articles.HasMore)

	_, err = p.Category(ctx, "culture", SortPopular, first.Articles.NextCursor)
	assert.ErrorIs(t, err, ErrCursorMismatch)

	_, err = p.Category(ctx, "absente", SortNewest, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNavigationCached(t *testing.T) {
	gdb := testutil.NewDB(t)
	p := NewPageService(NewContentService(gdb), newTestCache(t))
	ctx := context.Background()

	testutil.CreateCategory(t, gdb, "sport", 2)
	testutil.CreateCategory(t, gdb, "archives", 3, func(c *models.Category) { c.Active = false })
	testutil.CreateCategory(t, gdb, "politique", 1)

	nav := p.Navigation(ctx)
	require.Len(t, nav, 2)
	assert.Equal(t, "politique", nav[0].Slug)

	testutil.CreateCategory(t, gdb, "culture", 4)
	assert.Len(t, p.Navigation(ctx), 2)
}
