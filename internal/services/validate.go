package services

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRecord validates a record loaded from the store.
func checkRecord(kind, id string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%s %q: %w: %w", kind, id, ErrMalformedRecord, err)
	}
	return nil
}

// keepValid drops and logs records that fail validation.
func keepValid[T any](kind string, items []T, id func(*T) string) []T {
	out := items[:0]
	for i := range items {
		if err := checkRecord(kind, id(&items[i]), &items[i]); err != nil {
			slog.Warn("dropping malformed record", "kind", kind, "error", err)
			continue
		}
		out = append(out, items[i])
	}
	return out
}
