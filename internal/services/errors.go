package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record matched a single-entity fetch.
	ErrNotFound = errors.New("not found")
	// ErrFetchFailed wraps any error returned by the store.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrMalformedRecord means a stored record is missing required fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidCursor means a pagination token could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrCursorMismatch means a token was produced for another listing.
	ErrCursorMismatch = errors.New("cursor does not match listing")
	// ErrAlreadySubscribed means the email already has an active subscription.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a message meant for the reader who filled the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func fetchFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
}

// UserMessage returns the reader-facing text for a form error.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrAlreadySubscribed):
		return MsgAlreadySubscribed
	default:
		return MsgSubmitFailed
	}
}
