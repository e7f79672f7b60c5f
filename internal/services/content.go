package services

import (
	"context"
	"errors"
	"flashinfos/internal/models"
	"log/slog"

	"gorm.io/gorm"
)

const (
	DefaultPageSize     = 10
	MaxPageSize         = 50
	DefaultRelatedLimit = 3
)

// ContentService answers every read the public site makes against articles,
// categories and comments. Errors are returned, never masked.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(gdb *gorm.DB) *ContentService {
	return &ContentService{db: gdb}
}

// published scopes a query to articles readers may see.
func (s *ContentService) published(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Article{}).
		Where("articles.status = ? AND articles.published_at IS NOT NULL", models.ArticleStatusPublished)
}

// ArticleBySlug returns the published article with the given slug. When the
// slug is shared the most recently published article wins.
func (s *ContentService) ArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var found []models.Article
	err := s.published(ctx).
		Where("articles.slug = ?", slug).
		Order("articles.published_at DESC, articles.id DESC").
		Limit(2).
		Find(&found).Error
	if err != nil {
		return nil, fetchFailed("article by slug", err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	if len(found) > 1 {
		slog.Warn("duplicate article slug", "slug", slug, "using", found[0].ID, "shadowed", found[1].ID)
	}

	article := found[:1]
	if err := checkRecord("article", article[0].ID, &article[0]); err != nil {
		return nil, err
	}
	if err := s.fillCategoryIDs(ctx, article); err != nil {
		return nil, fetchFailed("article by slug", err)
	}
	return &article[0], nil
}

// LatestArticles returns up to n published articles, newest first.
func (s *ContentService) LatestArticles(ctx context.Context, n int) ([]models.Article, error) {
	return s.listArticles(ctx, "latest articles", n, nil)
}

// FeaturedArticles returns up to n featured published articles, newest first.
func (s *ContentService) FeaturedArticles(ctx context.Context, n int) ([]models.Article, error) {
	return s.listArticles(ctx, "featured articles", n, func(q *gorm.DB) *gorm.DB {
		return q.Where("articles.featured = ?", true)
	})
}

// RelatedArticles returns published articles from categoryID, newest first.
// currentID is filtered out after the fetch, so fewer than limit may come back.
func (s *ContentService) RelatedArticles(ctx context.Context, currentID, categoryID string, limit int) ([]models.Article, error) {
	if categoryID == "" {
		return []models.Article{}, nil
	}
	articles, err := s.listArticles(ctx, "related articles", limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("articles.id IN (?)", s.inCategory(categoryID))
	})
	if err != nil {
		return nil, err
	}

	related := articles[:0]
	for _, a := range articles {
		if a.ID != currentID {
			related = append(related, a)
		}
	}
	return related, nil
}

// ArticlesByCategory returns one page of the category's published articles.
// cursor is the NextCursor of the previous page, or empty for the first page.
func (s *ContentService) ArticlesByCategory(ctx context.Context, categoryID string, sort SortOrder, pageSize int, cursor string) (Page[models.Article], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	scope := CategoryScope(categoryID, sort)

	var after *Cursor
	if cursor != "" {
		c, err := DecodeCursor(cursor, scope)
		if err != nil {
			return Page[models.Article]{}, err
		}
		after = &c
	}
	order, where, args, err := keyset(sort, after)
	if err != nil {
		return Page[models.Article]{}, err
	}

	q := s.published(ctx).Where("articles.id IN (?)", s.inCategory(categoryID))
	if where != "" {
		q = q.Where("("+where+")", args...)
	}
	var rows []models.Article
	if err := q.Order(order).Limit(pageSize).Find(&rows).Error; err != nil {
		return Page[models.Article]{}, fetchFailed("articles by category", err)
	}

	page := Page[models.Article]{HasMore: len(rows) == pageSize}
	if page.HasMore {
		page.NextCursor = EncodeCursor(articleCursor(scope, sort, &rows[len(rows)-1]))
	}
	page.Items, err = s.finishArticles(ctx, "articles by category", rows)
	if err != nil {
		return Page[models.Article]{}, err
	}
	return page, nil
}

// CategoryBySlug returns the category whatever its active flag.
func (s *ContentService) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fetchFailed("category by slug", err)
	}
	if err := checkRecord("category", category.ID, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// ActiveCategories returns the navigation categories in display order.
func (s *ContentService) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fetchFailed("active categories", err)
	}
	return keepValid("category", categories, categoryID), nil
}

// AllCategories maps every category id to its category.
func (s *ContentService) AllCategories(ctx context.Context) (map[string]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, fetchFailed("all categories", err)
	}
	categories = keepValid("category", categories, categoryID)

	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

// CommentsByArticleID returns approved top-level comments, newest first.
func (s *ContentService) CommentsByArticleID(ctx context.Context, articleID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("article_id = ? AND status = ? AND parent_id IS NULL", articleID, models.CommentStatusApproved).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fetchFailed("comments by article", err)
	}
	return keepValid("comment", comments, func(c *models.Comment) string { return c.ID }), nil
}

func (s *ContentService) inCategory(categoryID string) *gorm.DB {
	return s.db.Model(&models.ArticleCategory{}).Select("article_id").Where("category_id = ?", categoryID)
}

func (s *ContentService) listArticles(ctx context.Context, op string, n int, scope func(*gorm.DB) *gorm.DB) ([]models.Article, error) {
	if n <= 0 {
		return []models.Article{}, nil
	}
	q := s.published(ctx)
	if scope != nil {
		q = scope(q)
	}
	var rows []models.Article
	if err := q.Order("articles.published_at DESC, articles.id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fetchFailed(op, err)
	}
	return s.finishArticles(ctx, op, rows)
}

// finishArticles validates rows and attaches their category ids.
func (s *ContentService) finishArticles(ctx context.Context, op string, rows []models.Article) ([]models.Article, error) {
	articles := keepValid("article", rows, func(a *models.Article) string { return a.ID })
	if err := s.fillCategoryIDs(ctx, articles); err != nil {
		return nil, fetchFailed(op, err)
	}
	return articles, nil
}

// fillCategoryIDs loads the ordered category ids of every article in one query.
func (s *ContentService) fillCategoryIDs(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	var links []models.ArticleCategory
	err := s.db.WithContext(ctx).
		Where("article_id IN ?", ids).
		Order("article_id ASC, position ASC").
		Find(&links).Error
	if err != nil {
		return err
	}

	byArticle := make(map[string][]string, len(articles))
	for _, l := range links {
		byArticle[l.ArticleID] = append(byArticle[l.ArticleID], l.CategoryID)
	}
	for i := range articles {
		articles[i].CategoryIDs = byArticle[articles[i].ID]
		if articles[i].CategoryIDs == nil {
			articles[i].CategoryIDs = []string{}
		}
	}
	return nil
}

func categoryID(c *models.Category) string { return c.ID }
