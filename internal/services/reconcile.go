package services

import (
	"context"
	"flashinfos/internal/models"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const reconcileTimeout = 5 * time.Minute

// Reconciler recomputes denormalized counters from the collections they summarize.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(gdb *gorm.DB) *Reconciler {
	return &Reconciler{db: gdb}
}

// Run sets every article's comment_count to its approved top-level comments
// and every category's article_count to its published articles.
func (r *Reconciler) Run(ctx context.Context) error {
	start := time.Now()

	comments := r.db.WithContext(ctx).Exec(`UPDATE articles SET comment_count = (
		SELECT COUNT(*) FROM comments
		WHERE comments.article_id = articles.id AND comments.status = ? AND comments.parent_id IS NULL)`,
		models.CommentStatusApproved)
	if comments.Error != nil {
		return fmt.Errorf("reconcile comment counts: %w", comments.Error)
	}

	articles := r.db.WithContext(ctx).Exec(`UPDATE categories SET article_count = (
		SELECT COUNT(*) FROM article_categories
		JOIN articles ON articles.id = article_categories.article_id
		WHERE article_categories.category_id = categories.id
		AND articles.status = ? AND articles.published_at IS NOT NULL)`,
		models.ArticleStatusPublished)
	if articles.Error != nil {
		return fmt.Errorf("reconcile article counts: %w", articles.Error)
	}

	slog.Info("counters reconciled", "component", "reconcile",
		"articles", comments.RowsAffected, "categories", articles.RowsAffected,
		"duration", time.Since(start))
	return nil
}

// Schedule runs the reconciler on a cron spec such as "@hourly". The caller
// stops the returned scheduler on shutdown.
func (r *Reconciler) Schedule(spec string) (*cron.Cron, error) {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			slog.Error("reconcile failed", "component", "reconcile", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconcile %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
