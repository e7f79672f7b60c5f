package services

import (
	"context"
	"errors"
	"flashinfos/internal/models"
	"log/slog"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Messages shown to readers next to the form they submitted.
const (
	MsgCommentRequired   = "Le nom et le commentaire sont requis."
	MsgCommentTooLong    = "Le commentaire ne doit pas dépasser 5000 caractères."
	MsgCommentPending    = "Votre commentaire a été soumis et est en attente de modération."
	MsgContactRequired   = "Tous les champs sont requis."
	MsgContactSent       = "Votre message a été envoyé avec succès. Notre équipe vous contactera prochainement."
	MsgEmailRequired     = "L'adresse email est requise."
	MsgEmailInvalid      = "L'adresse email n'est pas valide."
	MsgAlreadySubscribed = "Cette adresse email est déjà inscrite à notre newsletter."
	MsgSubscribed        = "Merci pour votre inscription!"
	MsgSubmitFailed      = "Une erreur est survenue. Veuillez réessayer plus tard."
)

const maxCommentLength = 5000

type CommentInput struct {
	UserName  string `form:"userName" json:"userName"`
	UserEmail string `form:"userEmail" json:"userEmail"`
	Content   string `form:"content" json:"content"`
}

type ContactInput struct {
	Name    string `form:"nom" json:"nom"`
	Email   string `form:"email" json:"email"`
	Subject string `form:"sujet" json:"sujet"`
	Message string `form:"message" json:"message"`
}

type NewsletterInput struct {
	Email string `form:"email" json:"email"`
}

// SubmissionService stores what readers send through the site's forms.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(gdb *gorm.DB) *SubmissionService {
	return &SubmissionService{db: gdb}
}

// SubmitComment queues an anonymous top-level comment for moderation.
func (s *SubmissionService) SubmitComment(ctx context.Context, articleID string, in CommentInput) (*models.Comment, error) {
	name := strings.TrimSpace(in.UserName)
	content := strings.TrimSpace(in.Content)
	email := strings.TrimSpace(in.UserEmail)
	if name == "" || content == "" {
		return nil, &ValidationError{Message: MsgCommentRequired}
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, &ValidationError{Field: "content", Message: MsgCommentTooLong}
	}
	if email != "" && !validEmail(email) {
		return nil, &ValidationError{Field: "userEmail", Message: MsgEmailInvalid}
	}

	var visible int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ? AND status = ? AND published_at IS NOT NULL", articleID, models.ArticleStatusPublished).
		Count(&visible).Error
	if err != nil {
		return nil, fetchFailed("comment article", err)
	}
	if visible == 0 {
		return nil, ErrNotFound
	}

	comment := models.Comment{
		ArticleID: articleID,
		UserName:  name,
		UserEmail: email,
		Content:   content,
		Status:    models.CommentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		slog.Error("failed to create comment", "article_id", articleID, "error", err)
		return nil, err
	}
	return &comment, nil
}

// SubmitContact stores a contact message as unread and unanswered.
func (s *SubmissionService) SubmitContact(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, &ValidationError{Message: MsgContactRequired}
	}
	if !validEmail(msg.Email) {
		return nil, &ValidationError{Field: "email", Message: MsgEmailInvalid}
	}

	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		slog.Error("failed to create contact message", "error", err)
		return nil, err
	}
	return &msg, nil
}

// Subscribe adds an active newsletter subscription. An email that already
// has one is rejected with ErrAlreadySubscribed.
func (s *SubmissionService) Subscribe(ctx context.Context, in NewsletterInput) (*models.NewsletterSubscriber, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: MsgEmailRequired}
	}
	if !validEmail(email) {
		return nil, &ValidationError{Field: "email", Message: MsgEmailInvalid}
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&models.NewsletterSubscriber{}).
		Where("email = ? AND active = ?", email, true).
		Count(&existing).Error
	if err != nil {
		return nil, fetchFailed("newsletter lookup", err)
	}
	if existing > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := models.NewsletterSubscriber{Email: email, Active: true}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		// a concurrent request won the partial unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		slog.Error("failed to create subscriber", "error", err)
		return nil, err
	}
	return &sub, nil
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
