package utils

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frenchPrinter = message.NewPrinter(language.French)

// FormatDate renders t as "2 mars 2025 à 14:05".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d à %02d:%02d", t.Day(), frenchMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// FormatNumber groups thousands the French way.
func FormatNumber(n int64) string {
	return frenchPrinter.Sprintf("%d", n)
}

// Truncate cuts text to at most length runes and appends an ellipsis.
func Truncate(text string, length int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= length {
		return string(runes)
	}
	return string(runes[:length]) + "..."
}
