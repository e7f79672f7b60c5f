package services

import (
	"context"
	"encoding/xml"
	"flashinfos/internal/cache"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	SitemapArticleLimit = 100
	SitemapCacheTTL     = time.Hour
	sitemapCacheKey     = "sitemap:xml"
	sitemapXMLNS        = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type staticRoute struct {
	path       string
	changeFreq string
	priority   float64
}

var staticRoutes = []staticRoute{
	{"/", "daily", 1.0},
	{"/about", "monthly", 0.7},
	{"/contact", "monthly", 0.7},
	{"/terms", "yearly", 0.5},
	{"/privacy", "yearly", 0.5},
}

// SitemapService lists every public page for crawlers.
type SitemapService struct {
	content *ContentService
	cache   cache.Cache
	site    Site
	now     func() time.Time
}

func NewSitemapService(content *ContentService, c cache.Cache, site Site) *SitemapService {
	return &SitemapService{content: content, cache: c, site: site, now: time.Now}
}

// Build returns the sitemap XML, rebuilding it when the cached copy has expired.
func (s *SitemapService) Build(ctx context.Context) ([]byte, error) {
	return cached(ctx, s.cache, sitemapCacheKey, SitemapCacheTTL, func() ([]byte, bool, error) {
		entries, err := s.Entries(ctx)
		if err != nil {
			return nil, false, err
		}
		out, err := xml.MarshalIndent(urlSet{Xmlns: sitemapXMLNS, URLs: entries}, "", "  ")
		if err != nil {
			return nil, false, fmt.Errorf("marshal sitemap: %w", err)
		}
		return append([]byte(xml.Header), out...), true, nil
	})
}

// Entries returns static routes, then categories, then the latest articles.
// Records without a slug are skipped and each location appears once.
func (s *SitemapService) Entries(ctx context.Context) ([]SitemapURL, error) {
	categories, err := s.content.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	articles, err := s.content.LatestArticles(ctx, SitemapArticleLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]SitemapURL, 0, len(staticRoutes)+len(categories)+len(articles))
	seen := make(map[string]bool, cap(entries))
	add := func(loc string, lastMod time.Time, changeFreq string, priority float64) {
		if seen[loc] {
			return
		}
		seen[loc] = true
		entries = append(entries, SitemapURL{
			Loc:        loc,
			LastMod:    lastMod.UTC().Format(time.RFC3339),
			ChangeFreq: changeFreq,
			Priority:   fmt.Sprintf("%.1f", priority),
		})
	}

	now := s.now()
	for _, r := range staticRoutes {
		add(s.site.URL+r.path, now, r.changeFreq, r.priority)
	}

	sorted := make([]string, 0, len(categories))
	for id := range categories {
		sorted = append(sorted, id)
	}
	slices.SortFunc(sorted, func(a, b string) int {
		ca, cb := categories[a], categories[b]
		if ca.Order != cb.Order {
			return ca.Order - cb.Order
		}
		return strings.Compare(ca.Slug, cb.Slug)
	})
	for _, id := range sorted {
		c := categories[id]
		if c.Slug == "" {
			continue
		}
		add(s.site.CategoryURL(c.Slug), c.LastModified(), "weekly", 0.8)
	}

	for i := range articles {
		a := &articles[i]
		if a.Slug == "" {
			continue
		}
		add(s.site.ArticleURL(a.Slug), a.LastModified(), "weekly", 0.9)
	}
	return entries, nil
}
