package services

import (
	"context"
	"flashinfos/internal/cache"
	"log/slog"
	"time"
)

// Site describes the public identity of the outlet used in generated documents.
type Site struct {
	URL         string
	Name        string
	Description string
}

// ArticleURL is the canonical address of an article.
func (s Site) ArticleURL(slug string) string {
	return s.URL + "/article/" + slug
}

// CategoryURL is the canonical address of a category listing.
func (s Site) CategoryURL(slug string) string {
	return s.URL + "/category/" + slug
}

// cached returns the stored document under key, or builds and returns it.
// A build that reports itself partial is served but not stored.
func cached(ctx context.Context, c cache.Cache, key string, ttl time.Duration, build func() (data []byte, complete bool, err error)) ([]byte, error) {
	if data, err := c.Get(ctx, key); err == nil {
		return data, nil
	}
	data, complete, err := build()
	if err != nil {
		return nil, err
	}
	if !complete {
		return data, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return data, nil
}
