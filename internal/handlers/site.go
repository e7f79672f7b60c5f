package handlers

import (
	"errors"
	"flashinfos/internal/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	MsgArticleNotFound  = "Cet article n'existe pas ou n'est plus disponible."
	MsgCategoryNotFound = "Cette catégorie n'existe pas."
	MsgBadCursor        = "Ce lien de pagination n'est plus valide."
	MsgServerError      = "Une erreur est survenue. Veuillez réessayer plus tard."
)

// SiteHandler serves the reader-facing pages.
type SiteHandler struct {
	pages *services.PageService
	views *services.ViewRecorder
}

func NewSiteHandler(pages *services.PageService, views *services.ViewRecorder) *SiteHandler {
	return &SiteHandler{pages: pages, views: views}
}

func (h *SiteHandler) Home(c *gin.Context) {
	page := h.pages.Home(c.Request.Context())
	Render(c, http.StatusOK, "home.html", gin.H{
		"Featured":    page.Featured,
		"Latest":      page.Latest,
		"Navigation":  page.Categories,
		"FetchFailed": page.FetchFailed,
	})
}

func (h *SiteHandler) Article(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	page, err := h.pages.Article(ctx, slug)
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.notFound(c, MsgArticleNotFound)
		return
	case err != nil:
		slog.Error("failed to load article", "slug", slug, "error", err)
		RenderError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	// counted on cache hits as well
	h.views.Record(page.Article.ID)

	var primary any
	if cat, ok := page.Categories[page.Article.PrimaryCategoryID()]; ok {
		primary = cat
	}
	Render(c, http.StatusOK, "article.html", gin.H{
		"Title":       page.Article.Title,
		"Description": page.Article.Summary,
		"Image":       page.Article.ImageURL,
		"Article":     page.Article,
		"Primary":     primary,
		"Comments":    page.Comments,
		"Related":     page.Related,
		"Categories":  page.Categories,
		"Navigation":  h.pages.Navigation(ctx),
		"FetchFailed": page.FetchFailed,
	})
}

func (h *SiteHandler) Category(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	sort := services.ParseSort(c.Query("sort"))

	page, err := h.pages.Category(ctx, slug, sort, c.Query("cursor"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.notFound(c, MsgCategoryNotFound)
		return
	case errors.Is(err, services.ErrInvalidCursor), errors.Is(err, services.ErrCursorMismatch):
		RenderError(c, http.StatusBadRequest, MsgBadCursor)
		return
	case err != nil:
		slog.Error("failed to load category", "slug", slug, "error", err)
		RenderError(c, http.StatusInternalServerError, MsgServerError)
		return
	}

	Render(c, http.StatusOK, "category.html", gin.H{
		"Title":       page.Category.Name,
		"Description": page.Category.Description,
		"Category":    page.Category,
		"Articles":    page.Articles.Items,
		"NextCursor":  page.Articles.NextCursor,
		"HasMore":     page.Articles.HasMore,
		"Sort":        string(page.Sort),
		"Sorts":       []services.SortOrder{services.SortNewest, services.SortOldest, services.SortPopular},
		"Navigation":  page.Categories,
		"FetchFailed": page.FetchFailed,
	})
}

func (h *SiteHandler) About(c *gin.Context) {
	h.static(c, "about.html", "À propos")
}

func (h *SiteHandler) Terms(c *gin.Context) {
	h.static(c, "terms.html", "Conditions d'utilisation")
}

func (h *SiteHandler) Privacy(c *gin.Context) {
	h.static(c, "privacy.html", "Politique de confidentialité")
}

func (h *SiteHandler) Contact(c *gin.Context) {
	Render(c, http.StatusOK, "contact.html", gin.H{
		"Title":      "Contact",
		"FAQ":        contactFAQ,
		"Navigation": h.pages.Navigation(c.Request.Context()),
	})
}

// NotFound handles unknown routes.
func (h *SiteHandler) NotFound(c *gin.Context) {
	h.notFound(c, "Cette page n'existe pas.")
}

func (h *SiteHandler) static(c *gin.Context, name, title string) {
	Render(c, http.StatusOK, name, gin.H{
		"Title":      title,
		"Navigation": h.pages.Navigation(c.Request.Context()),
	})
}

func (h *SiteHandler) notFound(c *gin.Context, message string) {
	Render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":      "Page introuvable",
		"Error":      message,
		"Navigation": h.pages.Navigation(c.Request.Context()),
	})
}

type faqEntry struct {
	Question string
	Answer   string
}

var contactFAQ = []faqEntry{
	{"Comment proposer une information à la rédaction ?", "Utilisez le formulaire ci-dessus en choisissant le sujet « Proposition d'information ». Nos journalistes vérifient chaque signalement avant publication."},
	{"Comment établir un partenariat ?", "Pour établir un partenariat avec notre média, veuillez nous contacter via le formulaire en choisissant l'option « Publicité & Partenariats ». Notre équipe commerciale vous contactera dans les 24 heures."},
	{"Comment signaler une erreur dans un article ?", "Indiquez le titre de l'article et la correction proposée dans votre message. Les rectifications sont publiées en bas de l'article concerné."},
	{"Comment me désinscrire de la newsletter ?", "Chaque lettre contient un lien de désinscription. Vous pouvez aussi nous écrire via ce formulaire."},
}
