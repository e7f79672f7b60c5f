package services

import (
	"context"
	"encoding/xml"
	"flashinfos/internal/cache"
	"flashinfos/internal/models"
	"flashinfos/internal/testutil"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSite = Site{URL: "https://flashinfos237.com", Name: "Flash Infos 237", Description: "L'actualité du Cameroun"}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewMemory(100)
	require.NoError(t, err)
	return c
}

func TestFeedRSS(t *testing.T) {
	gdb := testutil.NewDB(t)
	c := newTestCache(t)
	eco := testutil.CreateCategory(t, gdb, "economie", 1)

	testutil.CreateArticle(t, gdb, "budget", testutil.Date(2025, 1, 2, 10), []string{eco.ID}, func(a *models.Article) {
		a.Title = "Budget 2025 : l'État & les régions"
		a.ImageURL = "https://cdn.example.com/budget.jpg"
	})
	testutil.CreateArticle(t, gdb, "sans-image", testutil.Date(2025, 1, 1, 10), nil)
	testutil.CreateArticle(t, gdb, "brouillon", testutil.Date(2025, 1, 3, 10), nil, func(a *models.Article) {
		a.Status = models.ArticleStatusDraft
	})

	f := NewFeedService(NewContentService(gdb), c, testSite)
	f.now = func() time.Time { return testutil.Date(2025, 1, 5, 0) }

	data, err := f.RSS(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))

	feed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	assert.Equal(t, "Flash Infos 237", feed.Title)
	assert.Equal(t, "fr", feed.Language)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Budget 2025 : l'État & les régions", first.Title)
	assert.Equal(t, "https://flashinfos237.com/article/budget", first.Link)
	assert.Equal(t, first.Link, first.GUID)
	assert.Equal(t, "Summary of budget", first.Description)
	assert.Equal(t, []string{"Economie"}, first.Categories)
	require.Len(t, first.Enclosures, 1)
	assert.Equal(t, "image/jpeg", first.Enclosures[0].Type)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(testutil.Date(2025, 1, 2, 10)))

	assert.Empty(t, feed.Items[1].Enclosures)
}

func TestFeedRSSLimitAndCache(t *testing.T) {
	gdb := testutil.NewDB(t)
	c := newTestCache(t)
	base := testutil.Date(2025, 1, 1, 0)
	for i := 0; i < FeedSize+5; i++ {
		testutil.CreateArticle(t, gdb, fmt.Sprintf("a-%02d", i), base.Add(time.Duration(i)*time.Hour), nil)
	}

	f := NewFeedService(NewContentService(gdb), c, testSite)
	ctx := context.Background()

	data, err := f.RSS(ctx)
	require.NoError(t, err)
	feed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	require.Len(t, feed.Items, FeedSize)
	assert.Equal(t, "Title a-54", feed.Items[0].Title)

	testutil.CreateArticle(t, gdb, "fresh", base.Add(1000*time.Hour), nil)
	again, err := f.RSS(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	require.NoError(t, c.Delete(ctx, feedCacheKey))
	rebuilt, err := f.RSS(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(rebuilt), "/article/fresh")
}

func TestFeedRSSFailureIsNotCached(t *testing.T) {
	gdb := testutil.NewDB(t)
	c := newTestCache(t)
	f := NewFeedService(NewContentService(gdb), c, testSite)

	closeDB(t, gdb)
	_, err := f.RSS(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, err = c.Get(context.Background(), feedCacheKey)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestFeedRSSWithoutCategoriesIsNotCached(t *testing.T) {
	gdb := testutil.NewDB(t)
	c := newTestCache(t)
	testutil.CreateArticle(t, gdb, "orphelin", testutil.Date(2025, 1, 2, 10), nil)
	require.NoError(t, gdb.Migrator().DropTable(&models.Category{}))

	f := NewFeedService(NewContentService(gdb), c, testSite)
	data, err := f.RSS(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://flashinfos237.com/article/orphelin")

	_, err = c.Get(context.Background(), feedCacheKey)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestCDATA(t *testing.T) {
	var v struct {
		Text string `xml:",chardata"`
	}
	in := "a ]]> b"
	require.NoError(t, xml.Unmarshal([]byte("<x>"+cdata(in)+"</x>"), &v))
	assert.Equal(t, in, v.Text)
}

func closeDB(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
