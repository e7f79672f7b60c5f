package handlers

import (
	"errors"
	"flashinfos/internal/middleware"
	"flashinfos/internal/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FormHandler accepts the HTML form posts and answers with a redirect and a flash.
type FormHandler struct {
	content     *services.ContentService
	submissions *services.SubmissionService
}

func NewFormHandler(content *services.ContentService, submissions *services.SubmissionService) *FormHandler {
	return &FormHandler{content: content, submissions: submissions}
}

func (h *FormHandler) Comment(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	article, err := h.content.ArticleBySlug(ctx, slug)
	if errors.Is(err, services.ErrNotFound) {
		RenderError(c, http.StatusNotFound, MsgArticleNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load article for comment", "slug", slug, "error", err)
		middleware.AddFlash(c, middleware.FlashError, services.MsgSubmitFailed)
		redirectBack(c, "/article/"+slug+"#comments")
		return
	}

	var in services.CommentInput
	if !h.bind(c, &in, services.MsgCommentRequired) {
		redirectBack(c, "/article/"+slug+"#comments")
		return
	}
	if _, err := h.submissions.SubmitComment(ctx, article.ID, in); err != nil {
		h.fail(c, err)
	} else {
		middleware.AddFlash(c, middleware.FlashSuccess, services.MsgCommentPending)
	}
	redirectBack(c, "/article/"+slug+"#comments")
}

func (h *FormHandler) Contact(c *gin.Context) {
	var in services.ContactInput
	if !h.bind(c, &in, services.MsgContactRequired) {
		redirectBack(c, "/contact")
		return
	}
	if _, err := h.submissions.SubmitContact(c.Request.Context(), in); err != nil {
		h.fail(c, err)
	} else {
		middleware.AddFlash(c, middleware.FlashSuccess, services.MsgContactSent)
	}
	redirectBack(c, "/contact")
}

func (h *FormHandler) Newsletter(c *gin.Context) {
	var in services.NewsletterInput
	if !h.bind(c, &in, services.MsgEmailRequired) {
		redirectBack(c, "/#newsletter")
		return
	}
	if _, err := h.submissions.Subscribe(c.Request.Context(), in); err != nil {
		h.fail(c, err)
	} else {
		middleware.AddFlash(c, middleware.FlashSuccess, services.MsgSubscribed)
	}
	redirectBack(c, "/#newsletter")
}

// bind decodes the posted form; an unreadable body flashes message instead.
func (h *FormHandler) bind(c *gin.Context, in any, message string) bool {
	if err := c.ShouldBind(in); err != nil {
		slog.Warn("unreadable form submission", "path", c.Request.URL.Path, "error", err)
		middleware.AddFlash(c, middleware.FlashError, message)
		return false
	}
	return true
}

func (h *FormHandler) fail(c *gin.Context, err error) {
	if !errors.Is(err, services.ErrValidation) && !errors.Is(err, services.ErrAlreadySubscribed) {
		slog.Error("form submission failed", "path", c.Request.URL.Path, "error", err)
	}
	middleware.AddFlash(c, middleware.FlashError, services.UserMessage(err))
}
