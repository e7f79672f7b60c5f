package handlers

import (
	"flashinfos/internal/models"
	"flashinfos/internal/utils"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// Views rendered by name from the handlers. Each one is assembled with the
// base layout and every include.
var views = []string{
	"home.html",
	"article.html",
	"category.html",
	"contact.html",
	"about.html",
	"terms.html",
	"privacy.html",
	"error.html",
}

// LoadTemplates builds the renderer from templatesDir/{layouts,includes,views}.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	includes, err := filepath.Glob(filepath.Join(templatesDir, "includes", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layout found in %s", templatesDir)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		return append(files, filepath.Join(templatesDir, "views", view))
	}

	funcMap := FuncMap(time.Now)
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(view)...)
	}
	return r, nil
}

// FuncMap returns the helpers available in every template.
func FuncMap(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t any) string {
			tv, ok := timeValue(t)
			if !ok {
				return ""
			}
			return timeAgo(now().Sub(tv))
		},
		"formatDate": func(t any) string {
			tv, ok := timeValue(t)
			if !ok {
				return ""
			}
			return utils.FormatDate(tv)
		},
		"isoDate": func(t any) string {
			tv, ok := timeValue(t)
			if !ok {
				return ""
			}
			return utils.FormatISO(tv)
		},
		"truncate":      utils.Truncate,
		"formatNumber":  utils.FormatNumber,
		"renderArticle": utils.RenderArticle,
		"renderComment": utils.RenderComment,
		"stripHTML":     utils.StripHTML,
		"categoryName": func(categories map[string]models.Category, id string) string {
			return categories[id].Name
		},
		"urlquery":   url.QueryEscape,
		"shareLinks": shareLinks,
	}
}

type shareLink struct {
	Network string
	Label   string
	URL     string
}

// mail clients do not decode "+" as a space
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// shareLinks returns the share intents for an article page.
func shareLinks(pageURL, title string) []shareLink {
	u, t := url.QueryEscape(pageURL), url.QueryEscape(title)
	return []shareLink{
		{"facebook", "Facebook", "https://www.facebook.com/sharer/sharer.php?u=" + u},
		{"x", "X", "https://twitter.com/intent/tweet?url=" + u + "&text=" + t},
		{"whatsapp", "WhatsApp", "https://wa.me/?text=" + url.QueryEscape(title+" "+pageURL)},
		{"linkedin", "LinkedIn", "https://www.linkedin.com/sharing/share-offsite/?url=" + u},
		{"email", "Email", "mailto:?subject=" + mailtoEscape(title) + "&body=" + mailtoEscape(pageURL)},
	}
}

func timeValue(t any) (time.Time, bool) {
	switch v := t.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	}
	return time.Time{}, false
}

func timeAgo(d time.Duration) string {
	seconds := int(d.Seconds())
	switch {
	case seconds < 60:
		return "à l'instant"
	case seconds < 3600:
		return fmt.Sprintf("il y a %d min", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("il y a %d h", seconds/3600)
	case seconds < 2592000:
		return plural(seconds/86400, "jour", "jours")
	case seconds < 31536000:
		return fmt.Sprintf("il y a %d mois", seconds/2592000)
	}
	return plural(seconds/31536000, "an", "ans")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("il y a %d %s", n, one)
	}
	return fmt.Sprintf("il y a %d %s", n, many)
}
