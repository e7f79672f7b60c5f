package services

import (
	"context"
	"flashinfos/internal/models"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	viewBatchSize     = 50
	viewFlushInterval = 500 * time.Millisecond
)

// ViewRecorder counts article views off the request path. Each view bumps
// the article's view_count and the page_views aggregate of the UTC day it
// was recorded on. Failures are logged and dropped, never retried.
type ViewRecorder struct {
	db     *gorm.DB
	queue  chan view
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	now    func() time.Time
}

type view struct {
	articleID string
	at        time.Time
}

// NewViewRecorder starts the background worker. queueSize bounds the number
// of views waiting to be written.
func NewViewRecorder(gdb *gorm.DB, queueSize int) *ViewRecorder {
	if queueSize <= 0 {
		queueSize = 1000
	}
	r := &ViewRecorder{
		db:    gdb,
		queue: make(chan view, queueSize),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go r.worker()
	return r
}

// Record schedules one view of the article. It never blocks on the queue:
// when the queue is full, or the recorder is closed, the view is written
// from the caller's goroutine instead.
func (r *ViewRecorder) Record(articleID string) {
	if articleID == "" {
		return
	}
	v := view{articleID: articleID, at: r.now()}

	r.mu.RLock()
	if !r.closed {
		select {
		case r.queue <- v:
			r.mu.RUnlock()
			return
		default:
			slog.Warn("view queue full, recording inline", "component", "views", "article_id", articleID)
		}
	}
	r.mu.RUnlock()

	r.flush(context.Background(), []view{v})
}

// Close stops accepting queued views and waits until every queued view is written.
func (r *ViewRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}

func (r *ViewRecorder) worker() {
	defer close(r.done)

	batch := make([]view, 0, viewBatchSize)
	ticker := time.NewTicker(viewFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-r.queue:
			if !ok {
				if len(batch) > 0 {
					r.flush(context.Background(), batch)
				}
				return
			}
			batch = append(batch, v)
			if len(batch) >= viewBatchSize {
				r.flush(context.Background(), batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(context.Background(), batch)
				batch = batch[:0]
			}
		}
	}
}

// flush writes a batch: one increment per distinct article, then one
// increment per UTC day the views were recorded on.
func (r *ViewRecorder) flush(ctx context.Context, views []view) {
	perArticle := make(map[string]int64, len(views))
	articles := make([]string, 0, len(views))
	perDay := make(map[string]int64, 1)
	days := make([]time.Time, 0, 1)
	for _, v := range views {
		if perArticle[v.articleID] == 0 {
			articles = append(articles, v.articleID)
		}
		perArticle[v.articleID]++

		id := models.PageViewID(v.at)
		if perDay[id] == 0 {
			days = append(days, v.at)
		}
		perDay[id]++
	}

	for _, id := range articles {
		if err := r.incrementArticle(ctx, id, perArticle[id]); err != nil {
			slog.Error("failed to increment article views", "component", "views", "article_id", id, "error", err)
		}
	}
	for _, at := range days {
		if err := r.incrementDay(ctx, at, perDay[models.PageViewID(at)]); err != nil {
			slog.Error("failed to increment daily views", "component", "views", "day", models.PageViewID(at), "error", err)
		}
	}
}

func (r *ViewRecorder) incrementArticle(ctx context.Context, id string, n int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error
}

// incrementDay creates the aggregate of at's day with count n or adds n to it.
func (r *ViewRecorder) incrementDay(ctx context.Context, at time.Time, n int64) error {
	now := r.now().UTC()
	day := models.PageView{
		ID:          models.PageViewID(at),
		Date:        models.DayStart(at),
		Count:       n,
		CreatedAt:   now,
		LastUpdated: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":        gorm.Expr("page_views.count + ?", n),
			"last_updated": now,
		}),
	}).Create(&day).Error
}

// TotalViews sums the daily aggregates of every UTC day from..to inclusive.
func (r *ViewRecorder) TotalViews(ctx context.Context, from, to time.Time) (int64, error) {
	from, to = models.DayStart(from), models.DayStart(to)
	if to.Before(from) {
		return 0, &ValidationError{Field: "to", Message: "La date de fin précède la date de début."}
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.PageView{}).
		Select("COALESCE(SUM(count), 0)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&total).Error
	if err != nil {
		return 0, fetchFailed("total views", err)
	}
	return total, nil
}
