package services

import (
	"context"
	"encoding/json"
	"flashinfos/internal/models"
	"flashinfos/internal/utils"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Export is the JSON dump of the legacy document store: one map of
// documents per collection, keyed by document id.
type Export struct {
	Articles   map[string]map[string]any `json:"articles"`
	Categories map[string]map[string]any `json:"categories"`
	Comments   map[string]map[string]any `json:"comments"`
}

// ImportResult counts what an import wrote and skipped.
type ImportResult struct {
	Categories int
	Articles   int
	Comments   int
	Skipped    int
}

type categoryDoc struct {
	Name         string     `mapstructure:"name"`
	Slug         string     `mapstructure:"slug"`
	Description  string     `mapstructure:"description"`
	ImageURL     string     `mapstructure:"imageUrl"`
	Color        string     `mapstructure:"color"`
	ParentID     *string    `mapstructure:"parentId"`
	Order        int        `mapstructure:"order"`
	Active       bool       `mapstructure:"active"`
	ArticleCount int        `mapstructure:"articleCount"`
	CreatedAt    *time.Time `mapstructure:"createdAt"`
	UpdatedAt    *time.Time `mapstructure:"updatedAt"`
}

type articleDoc struct {
	Title        string          `mapstructure:"title"`
	Slug         string          `mapstructure:"slug"`
	Content      string          `mapstructure:"content"`
	Summary      string          `mapstructure:"summary"`
	ImageURL     string          `mapstructure:"imageUrl"`
	ImageCredit  string          `mapstructure:"imageCredit"`
	PublishedAt  *time.Time      `mapstructure:"publishedAt"`
	CreatedAt    *time.Time      `mapstructure:"createdAt"`
	UpdatedAt    *time.Time      `mapstructure:"updatedAt"`
	AuthorID     string          `mapstructure:"authorId"`
	AuthorName   string          `mapstructure:"authorName"`
	CategoryIDs  []string        `mapstructure:"categoryIds"`
	Tags         []string        `mapstructure:"tags"`
	Status       string          `mapstructure:"status"`
	Featured     bool            `mapstructure:"featured"`
	ViewCount    int64           `mapstructure:"viewCount"`
	CommentCount int             `mapstructure:"commentCount"`
	LikeCount    int             `mapstructure:"likeCount"`
	ShareCount   int             `mapstructure:"shareCount"`
	Sources      []models.Source `mapstructure:"sources"`
}

type commentDoc struct {
	ArticleID string     `mapstructure:"articleId"`
	UserID    *string    `mapstructure:"userId"`
	UserName  string     `mapstructure:"userName"`
	UserEmail string     `mapstructure:"userEmail"`
	Content   string     `mapstructure:"content"`
	CreatedAt *time.Time `mapstructure:"createdAt"`
	UpdatedAt *time.Time `mapstructure:"updatedAt"`
	Status    string     `mapstructure:"status"`
	ParentID  *string    `mapstructure:"parentId"`
	Likes     int        `mapstructure:"likes"`
}

// Importer loads a legacy export into the database. Documents are upserted
// by id, so running the same export twice is harmless.
type Importer struct {
	db *gorm.DB
}

func NewImporter(gdb *gorm.DB) *Importer {
	return &Importer{db: gdb}
}

// Import reads an Export from r and writes categories, then articles, then comments.
// Documents that cannot be decoded or fail validation are logged and skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var export Export
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&export); err != nil {
		return ImportResult{}, fmt.Errorf("decode export: %w", err)
	}

	var res ImportResult
	for _, id := range sortedKeys(export.Categories) {
		if err := im.importCategory(ctx, id, export.Categories[id]); err != nil {
			res.Skipped += skip("category", id, err)
			continue
		}
		res.Categories++
	}
	for _, id := range sortedKeys(export.Articles) {
		if err := im.importArticle(ctx, id, export.Articles[id]); err != nil {
			res.Skipped += skip("article", id, err)
			continue
		}
		res.Articles++
	}
	for _, id := range sortedKeys(export.Comments) {
		if err := im.importComment(ctx, id, export.Comments[id]); err != nil {
			res.Skipped += skip("comment", id, err)
			continue
		}
		res.Comments++
	}
	return res, nil
}

func (im *Importer) importCategory(ctx context.Context, id string, raw map[string]any) error {
	var doc categoryDoc
	if err := decodeDoc(raw, &doc); err != nil {
		return err
	}
	c := models.Category{
		ID:           id,
		Name:         doc.Name,
		Slug:         doc.Slug,
		Description:  doc.Description,
		ImageURL:     doc.ImageURL,
		Color:        doc.Color,
		ParentID:     doc.ParentID,
		Order:        doc.Order,
		Active:       doc.Active,
		ArticleCount: doc.ArticleCount,
		CreatedAt:    timeOr(doc.CreatedAt, time.Time{}),
		UpdatedAt:    timeOr(doc.UpdatedAt, time.Time{}),
	}
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	if err := checkRecord("category", id, &c); err != nil {
		return err
	}
	return im.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&c).Error
}

func (im *Importer) importArticle(ctx context.Context, id string, raw map[string]any) error {
	var doc articleDoc
	if err := decodeDoc(raw, &doc); err != nil {
		return err
	}
	a := models.Article{
		ID:           id,
		Title:        doc.Title,
		Slug:         doc.Slug,
		Content:      doc.Content,
		Summary:      doc.Summary,
		ImageURL:     doc.ImageURL,
		ImageCredit:  doc.ImageCredit,
		PublishedAt:  doc.PublishedAt,
		CreatedAt:    timeOr(doc.CreatedAt, time.Time{}),
		UpdatedAt:    timeOr(doc.UpdatedAt, time.Time{}),
		AuthorID:     doc.AuthorID,
		AuthorName:   doc.AuthorName,
		Tags:         doc.Tags,
		Status:       models.ArticleStatus(doc.Status),
		Featured:     doc.Featured,
		ViewCount:    doc.ViewCount,
		CommentCount: doc.CommentCount,
		LikeCount:    doc.LikeCount,
		ShareCount:   doc.ShareCount,
		Sources:      doc.Sources,
	}
	if a.Slug == "" {
		a.Slug = utils.Slugify(a.Title)
	}
	if a.Status == "" {
		a.Status = models.ArticleStatusDraft
	}
	a.SetCategoryIDs(doc.CategoryIDs)
	if err := checkRecord("article", id, &a); err != nil {
		return err
	}

	return im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories").Clauses(clause.OnConflict{UpdateAll: true}).Create(&a).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", a.ID).Delete(&models.ArticleCategory{}).Error; err != nil {
			return err
		}
		if len(a.Categories) == 0 {
			return nil
		}
		return tx.Create(&a.Categories).Error
	})
}

func (im *Importer) importComment(ctx context.Context, id string, raw map[string]any) error {
	var doc commentDoc
	if err := decodeDoc(raw, &doc); err != nil {
		return err
	}
	c := models.Comment{
		ID:        id,
		ArticleID: doc.ArticleID,
		UserID:    doc.UserID,
		UserName:  doc.UserName,
		UserEmail: doc.UserEmail,
		Content:   doc.Content,
		CreatedAt: timeOr(doc.CreatedAt, time.Time{}),
		UpdatedAt: timeOr(doc.UpdatedAt, time.Time{}),
		Status:    models.CommentStatus(doc.Status),
		ParentID:  doc.ParentID,
		Likes:     doc.Likes,
	}
	if c.Status == "" {
		c.Status = models.CommentStatusPending
	}
	if err := checkRecord("comment", id, &c); err != nil {
		return err
	}
	return im.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&c).Error
}

// decodeDoc normalizes timestamps and decodes a raw document into out.
func decodeDoc(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(utils.NormalizeTimestamps(raw)); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return nil
}

func timeOr(t *time.Time, def time.Time) time.Time {
	if t == nil {
		return def
	}
	return t.UTC()
}

func sortedKeys(m map[string]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func skip(kind, id string, err error) int {
	slog.Warn("skipping document", "component", "import", "kind", kind, "id", id, "error", err)
	return 1
}
