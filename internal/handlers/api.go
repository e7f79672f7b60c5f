package handlers

import (
	"errors"
	"flashinfos/internal/models"
	"flashinfos/internal/services"
	"flashinfos/internal/utils"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultLatestLimit   = 20
	defaultFeaturedLimit = 5
	maxListLimit         = 50
	statsDateLayout      = "2006-01-02"
	defaultStatsDays     = 30
)

// APIHandler serves the JSON API under /api/v1. Every record goes through
// utils.ToRecord so timestamps leave as RFC 3339 strings.
type APIHandler struct {
	content     *services.ContentService
	pages       *services.PageService
	submissions *services.SubmissionService
	views       *services.ViewRecorder
	now         func() time.Time
}

func NewAPIHandler(content *services.ContentService, pages *services.PageService, submissions *services.SubmissionService, views *services.ViewRecorder) *APIHandler {
	return &APIHandler{
		content:     content,
		pages:       pages,
		submissions: submissions,
		views:       views,
		now:         time.Now,
	}
}

// GET /api/v1/articles/latest?limit=
func (h *APIHandler) LatestArticles(c *gin.Context) {
	limit := utils.ClampInt(c.Query("limit"), defaultLatestLimit, maxListLimit)
	articles, err := h.content.LatestArticles(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": utils.ToRecords(articles)})
}

// GET /api/v1/articles/featured?limit=
func (h *APIHandler) FeaturedArticles(c *gin.Context) {
	limit := utils.ClampInt(c.Query("limit"), defaultFeaturedLimit, maxListLimit)
	articles, err := h.content.FeaturedArticles(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": utils.ToRecords(articles)})
}

// GET /api/v1/articles/:slug
func (h *APIHandler) Article(c *gin.Context) {
	page, err := h.pages.Article(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.views.Record(page.Article.ID)

	comments := utils.ToRecords(page.Comments)
	for _, comment := range comments {
		delete(comment, "userEmail")
	}
	categories := make(map[string]map[string]any, len(page.Categories))
	for id, cat := range page.Categories {
		categories[id] = utils.ToRecord(cat)
	}

	c.JSON(http.StatusOK, gin.H{
		"article":     utils.ToRecord(page.Article),
		"comments":    comments,
		"related":     utils.ToRecords(page.Related),
		"categories":  categories,
		"fetchFailed": page.FetchFailed,
	})
}

// POST /api/v1/articles/:slug/comments
func (h *APIHandler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	article, err := h.content.ArticleBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var in services.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgCommentRequired})
		return
	}
	comment, err := h.submissions.SubmitComment(ctx, article.ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	record := utils.ToRecord(comment)
	delete(record, "userEmail")
	c.JSON(http.StatusCreated, gin.H{"message": services.MsgCommentPending, "comment": record})
}

// GET /api/v1/categories
func (h *APIHandler) Categories(c *gin.Context) {
	categories, err := h.content.ActiveCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": utils.ToRecords(categories)})
}

// GET /api/v1/categories/:slug/articles?sort=&cursor=&pageSize=
func (h *APIHandler) CategoryArticles(c *gin.Context) {
	ctx := c.Request.Context()
	category, err := h.content.CategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}

	sort := services.ParseSort(c.Query("sort"))
	pageSize := utils.ClampInt(c.Query("pageSize"), services.DefaultPageSize, services.MaxPageSize)
	page, err := h.content.ArticlesByCategory(ctx, category.ID, sort, pageSize, c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   utils.ToRecord(category),
		"sort":       sort,
		"items":      utils.ToRecords(page.Items),
		"nextCursor": page.NextCursor,
		"hasMore":    page.HasMore,
	})
}

// POST /api/v1/contact
func (h *APIHandler) Contact(c *gin.Context) {
	var in services.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgContactRequired})
		return
	}
	if _, err := h.submissions.SubmitContact(c.Request.Context(), in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": services.MsgContactSent})
}

// POST /api/v1/newsletter
func (h *APIHandler) Newsletter(c *gin.Context) {
	var in services.NewsletterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgEmailRequired})
		return
	}
	if _, err := h.submissions.Subscribe(c.Request.Context(), in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": services.MsgSubscribed})
}

// GET /api/v1/stats/views?from=YYYY-MM-DD&to=YYYY-MM-DD, the last 30 days by default
func (h *APIHandler) ViewStats(c *gin.Context) {
	to := models.DayStart(h.now())
	from := to.AddDate(0, 0, -(defaultStatsDays - 1))

	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(statsDateLayout, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date de début invalide (AAAA-MM-JJ)."})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(statsDateLayout, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date de fin invalide (AAAA-MM-JJ)."})
			return
		}
	}

	total, err := h.views.TotalViews(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":  from.Format(statsDateLayout),
		"to":    to.Format(statsDateLayout),
		"total": total,
	})
}

// fail maps service errors onto status codes.
func (h *APIHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.UserMessage(err)})
	case errors.Is(err, services.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, gin.H{"error": services.UserMessage(err)})
	case errors.Is(err, services.ErrInvalidCursor), errors.Is(err, services.ErrCursorMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgBadCursor})
	case errors.Is(err, services.ErrFetchFailed):
		slog.Error("api fetch failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": MsgServerError})
	default:
		slog.Error("api request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgServerError})
	}
}
