package services

import (
	"context"
	"errors"
	"flashinfos/internal/cache"
	"flashinfos/internal/models"
	"log/slog"
	"time"
)

const (
	ArticlePageTTL  = 300 * time.Second
	HomePageTTL     = 900 * time.Second
	CategoryPageTTL = 900 * time.Second
	NavigationTTL   = 900 * time.Second

	HomeFeaturedCount = 5
	HomeLatestCount   = 20
)

type HomePage struct {
	Featured    []models.Article  `json:"featured"`
	Latest      []models.Article  `json:"latest"`
	Categories  []models.Category `json:"categories"`
	FetchFailed bool              `json:"fetchFailed"`
}

type ArticlePage struct {
	Article     models.Article             `json:"article"`
	Comments    []models.Comment           `json:"comments"`
	Related     []models.Article           `json:"related"`
	Categories  map[string]models.Category `json:"categories"`
	FetchFailed bool                       `json:"fetchFailed"`
}

type CategoryPage struct {
	Category    models.Category      `json:"category"`
	Articles    Page[models.Article] `json:"articles"`
	Sort        SortOrder            `json:"sort"`
	Categories  []models.Category    `json:"-"`
	FetchFailed bool                 `json:"fetchFailed"`
}

// PageService assembles the data of each HTML page and caches complete
// results for the page's revalidation interval. Partial results, where a
// secondary query failed, are served but never cached.
type PageService struct {
	content *ContentService
	cache   cache.Cache
}

func NewPageService(content *ContentService, c cache.Cache) *PageService {
	return &PageService{content: content, cache: c}
}

// Home never fails; each failed listing is left empty and flagged.
func (p *PageService) Home(ctx context.Context) HomePage {
	const key = "page:home"
	var page HomePage
	if cache.GetJSON(ctx, p.cache, key, &page) {
		return page
	}

	var err error
	if page.Featured, err = p.content.FeaturedArticles(ctx, HomeFeaturedCount); err != nil {
		page.FetchFailed = degrade("featured articles", err)
		page.Featured = []models.Article{}
	}
	if page.Latest, err = p.content.LatestArticles(ctx, HomeLatestCount); err != nil {
		page.FetchFailed = degrade("latest articles", err)
		page.Latest = []models.Article{}
	}
	page.Categories = p.navigation(ctx, &page.FetchFailed)

	if !page.FetchFailed {
		cache.SetJSON(ctx, p.cache, key, page, HomePageTTL)
	}
	return page
}

// Article returns ErrNotFound, or another error, only when the article itself
// cannot be loaded; comments and related articles degrade.
func (p *PageService) Article(ctx context.Context, slug string) (ArticlePage, error) {
	key := "page:article:" + slug
	var page ArticlePage
	if cache.GetJSON(ctx, p.cache, key, &page) {
		return page, nil
	}

	article, err := p.content.ArticleBySlug(ctx, slug)
	if err != nil {
		return ArticlePage{}, err
	}
	page.Article = *article

	if page.Comments, err = p.content.CommentsByArticleID(ctx, article.ID); err != nil {
		page.FetchFailed = degrade("comments", err)
		page.Comments = []models.Comment{}
	}
	if page.Related, err = p.content.RelatedArticles(ctx, article.ID, article.PrimaryCategoryID(), DefaultRelatedLimit+1); err != nil {
		page.FetchFailed = degrade("related articles", err)
		page.Related = []models.Article{}
	}
	if len(page.Related) > DefaultRelatedLimit {
		page.Related = page.Related[:DefaultRelatedLimit]
	}
	if page.Categories, err = p.content.AllCategories(ctx); err != nil {
		page.FetchFailed = degrade("categories", err)
		page.Categories = map[string]models.Category{}
	}

	if !page.FetchFailed {
		cache.SetJSON(ctx, p.cache, key, page, ArticlePageTTL)
	}
	return page, nil
}

// Category loads one page of a category listing. Only first pages are cached.
func (p *PageService) Category(ctx context.Context, slug string, sort SortOrder, cursor string) (CategoryPage, error) {
	key := "page:category:" + slug + ":" + string(sort)
	var page CategoryPage
	if cursor == "" && cache.GetJSON(ctx, p.cache, key, &page) {
		page.Categories = p.navigation(ctx, new(bool))
		return page, nil
	}

	category, err := p.content.CategoryBySlug(ctx, slug)
	if err != nil {
		return CategoryPage{}, err
	}
	page.Category = *category
	page.Sort = sort

	page.Articles, err = p.content.ArticlesByCategory(ctx, category.ID, sort, DefaultPageSize, cursor)
	switch {
	case errors.Is(err, ErrInvalidCursor), errors.Is(err, ErrCursorMismatch):
		return CategoryPage{}, err
	case err != nil:
		page.FetchFailed = degrade("category articles", err)
		page.Articles = Page[models.Article]{Items: []models.Article{}}
	}

	if cursor == "" && !page.FetchFailed {
		cache.SetJSON(ctx, p.cache, key, page, CategoryPageTTL)
	}
	page.Categories = p.navigation(ctx, &page.FetchFailed)
	return page, nil
}

// Navigation returns the active categories for the site header, empty on failure.
func (p *PageService) Navigation(ctx context.Context) []models.Category {
	const key = "page:navigation"
	var categories []models.Category
	if cache.GetJSON(ctx, p.cache, key, &categories) {
		return categories
	}

	failed := false
	categories = p.navigation(ctx, &failed)
	if !failed {
		cache.SetJSON(ctx, p.cache, key, categories, NavigationTTL)
	}
	return categories
}

func (p *PageService) navigation(ctx context.Context, failed *bool) []models.Category {
	categories, err := p.content.ActiveCategories(ctx)
	if err != nil {
		*failed = degrade("active categories", err)
		return []models.Category{}
	}
	return categories
}

// degrade logs a failed secondary query and reports that the page is partial.
func degrade(what string, err error) bool {
	slog.Error("page query failed", "query", what, "error", err)
	return true
}
