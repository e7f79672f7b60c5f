package services

import (
	"encoding/base64"
	"encoding/json"
	"flashinfos/internal/models"
	"fmt"
	"strconv"
	"time"
)

// SortOrder selects the ordering of a category listing.
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortPopular SortOrder = "popular"
)

// ParseSort maps a query parameter to a SortOrder, defaulting to newest.
func ParseSort(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortPopular:
		return SortOrder(s)
	default:
		return SortNewest
	}
}

// Page is one slice of a keyset-paginated listing. HasMore is false exactly
// when the store returned fewer rows than the page size.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Cursor is the decoded form of a pagination token: the listing it belongs
// to and the sort key and id of the last record returned.
type Cursor struct {
	Scope string `json:"s"`
	Key   string `json:"k"`
	ID    string `json:"i"`
}

// CategoryScope names the listing of one category under one sort order.
func CategoryScope(categoryID string, sort SortOrder) string {
	return "articles|category=" + categoryID + "|sort=" + string(sort)
}

// EncodeCursor returns an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses token and checks it was issued for scope.
func DecodeCursor(token, scope string) (Cursor, error) {
	var c Cursor
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	if c.ID == "" || c.Key == "" {
		return c, ErrInvalidCursor
	}
	if c.Scope != scope {
		return c, ErrCursorMismatch
	}
	return c, nil
}

// articleCursor records where a listing sorted by sort stopped.
func articleCursor(scope string, sort SortOrder, a *models.Article) Cursor {
	c := Cursor{Scope: scope, ID: a.ID}
	if sort == SortPopular {
		c.Key = strconv.FormatInt(a.ViewCount, 10)
	} else if a.PublishedAt != nil {
		c.Key = a.PublishedAt.UTC().Format(time.RFC3339Nano)
	}
	return c
}

// keyset returns the ORDER BY clause for sort and, when c is non-nil, the
// WHERE clause and arguments that resume strictly after c.
func keyset(sort SortOrder, c *Cursor) (order, where string, args []any, err error) {
	switch sort {
	case SortPopular:
		order = "articles.view_count DESC, articles.id DESC"
		if c != nil {
			views, perr := strconv.ParseInt(c.Key, 10, 64)
			if perr != nil {
				return "", "", nil, fmt.Errorf("%w: %w", ErrInvalidCursor, perr)
			}
			where = "articles.view_count < ? OR (articles.view_count = ? AND articles.id < ?)"
			args = []any{views, views, c.ID}
		}
	case SortOldest, SortNewest:
		cmp := "<"
		order = "articles.published_at DESC, articles.id DESC"
		if sort == SortOldest {
			cmp = ">"
			order = "articles.published_at ASC, articles.id ASC"
		}
		if c != nil {
			at, perr := time.Parse(time.RFC3339Nano, c.Key)
			if perr != nil {
				return "", "", nil, fmt.Errorf("%w: %w", ErrInvalidCursor, perr)
			}
			at = at.UTC()
			where = "articles.published_at " + cmp + " ? OR (articles.published_at = ? AND articles.id " + cmp + " ?)"
			args = []any{at, at, c.ID}
		}
	default:
		return "", "", nil, fmt.Errorf("unknown sort order %q", sort)
	}
	return order, where, args, nil
}
