package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDuplicates = regexp.MustCompile(`-{2,}`)
)

// Slugify folds accents and keeps lowercase letters, digits and hyphens.
// "L'économie du Cameroun" becomes "l-economie-du-cameroun".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '’' || r == '_' {
			return '-'
		}
		return r
	}, result)
	result = slugInvalid.ReplaceAllString(result, "")
	result = slugDuplicates.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
