package services

import (
	"context"
	"flashinfos/internal/models"
	"flashinfos/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRecorderCountsEveryView(t *testing.T) {
	gdb := testutil.NewDB(t)
	a := testutil.CreateArticle(t, gdb, "a", testutil.Date(2025, 1, 1, 8), nil)
	b := testutil.CreateArticle(t, gdb, "b", testutil.Date(2025, 1, 1, 9), nil)

	// a tiny queue forces some views onto the inline path
	r := NewViewRecorder(gdb, 4)
	day := time.Date(2025, 8, 15, 23, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return day }

	const n = 120
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				r.Record(b.ID)
				return
			}
			r.Record(a.ID)
		}(i)
	}
	wg.Wait()
	r.Close()

	var gotA, gotB models.Article
	require.NoError(t, gdb.First(&gotA, "id = ?", a.ID).Error)
	assert.Equal(t, int64(80), gotA.ViewCount)
	require.NoError(t, gdb.First(&gotB, "id = ?", b.ID).Error)
	assert.Equal(t, int64(40), gotB.ViewCount)

	var pv models.PageView
	require.NoError(t, gdb.First(&pv, "id = ?", "day_2025-08-15").Error)
	assert.Equal(t, int64(n), pv.Count)
	assert.True(t, pv.Date.Equal(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)))
}

func TestViewRecorderCreditsTheDayOfTheView(t *testing.T) {
	gdb := testutil.NewDB(t)
	a := testutil.CreateArticle(t, gdb, "a", testutil.Date(2025, 1, 1, 8), nil)

	r := NewViewRecorder(gdb, 10)
	var mu sync.Mutex
	clock := time.Date(2025, 8, 15, 23, 59, 59, 900_000_000, time.UTC)
	r.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	// the views usually land in one batch, flushed after midnight
	r.Record(a.ID)
	mu.Lock()
	clock = time.Date(2025, 8, 16, 0, 0, 0, 100_000_000, time.UTC)
	mu.Unlock()
	r.Record(a.ID)
	r.Record(a.ID)
	r.Close()

	var before, after models.PageView
	require.NoError(t, gdb.First(&before, "id = ?", "day_2025-08-15").Error)
	assert.Equal(t, int64(1), before.Count)
	require.NoError(t, gdb.First(&after, "id = ?", "day_2025-08-16").Error)
	assert.Equal(t, int64(2), after.Count)

	var got models.Article
	require.NoError(t, gdb.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, int64(3), got.ViewCount)
}

func TestViewRecorderDoesNotTouchUpdatedAt(t *testing.T) {
	gdb := testutil.NewDB(t)
	a := testutil.CreateArticle(t, gdb, "a", testutil.Date(2025, 1, 1, 8), nil)

	var before models.Article
	require.NoError(t, gdb.First(&before, "id = ?", a.ID).Error)

	r := NewViewRecorder(gdb, 10)
	r.Record(a.ID)
	r.Close()

	var after models.Article
	require.NoError(t, gdb.First(&after, "id = ?", a.ID).Error)
	assert.Equal(t, int64(1), after.ViewCount)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestViewRecorderAfterClose(t *testing.T) {
	gdb := testutil.NewDB(t)
	a := testutil.CreateArticle(t, gdb, "a", testutil.Date(2025, 1, 1, 8), nil)

	r := NewViewRecorder(gdb, 10)
	r.Close()
	r.Close()
	r.Record(a.ID)
	r.Record("")

	var got models.Article
	require.NoError(t, gdb.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, int64(1), got.ViewCount)
}

func TestViewRecorderSwallowsFailures(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := NewViewRecorder(gdb, 10)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, func() {
		r.Record("whatever")
		r.Close()
	})
}

func TestTotalViews(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := NewViewRecorder(gdb, 10)
	defer r.Close()
	ctx := context.Background()

	for day, count := range map[int]int64{1: 10, 2: 20, 3: 30, 5: 50} {
		at := time.Date(2025, 9, day, 0, 0, 0, 0, time.UTC)
		require.NoError(t, gdb.Create(&models.PageView{ID: models.PageViewID(at), Date: at, Count: count, LastUpdated: at}).Error)
	}

	total, err := r.TotalViews(ctx, time.Date(2025, 9, 2, 15, 0, 0, 0, time.UTC), time.Date(2025, 9, 5, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)

	total, err = r.TotalViews(ctx, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = r.TotalViews(ctx, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrValidation)
}
