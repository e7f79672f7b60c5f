package services

import (
	"context"
	"flashinfos/internal/cache"
	"flashinfos/internal/models"
	"html"
	"log/slog"
	"strings"
	"time"
)

const (
	FeedSize     = 50
	FeedCacheTTL = time.Hour
	feedCacheKey = "feed:rss"
)

// FeedService renders the RSS 2.0 document of the latest articles.
type FeedService struct {
	content *ContentService
	cache   cache.Cache
	site    Site
	now     func() time.Time
}

func NewFeedService(content *ContentService, c cache.Cache, site Site) *FeedService {
	return &FeedService{content: content, cache: c, site: site, now: time.Now}
}

// RSS returns the feed, rebuilding it when the cached copy has expired.
func (f *FeedService) RSS(ctx context.Context) ([]byte, error) {
	return cached(ctx, f.cache, feedCacheKey, FeedCacheTTL, func() ([]byte, bool, error) {
		articles, err := f.content.LatestArticles(ctx, FeedSize)
		if err != nil {
			return nil, false, err
		}
		// without category names the feed is still valid, but only served once
		categories, err := f.content.AllCategories(ctx)
		if err != nil {
			slog.Warn("feed built without category names", "error", err)
		}
		return []byte(f.render(articles, categories)), err == nil, nil
	})
}

func (f *FeedService) render(articles []models.Article, categories map[string]models.Category) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>` + escapeXML(f.site.Name) + `</title>
    <link>` + escapeXML(f.site.URL) + `</link>
    <description>` + escapeXML(f.site.Description) + `</description>
    <language>fr</language>
    <lastBuildDate>` + f.now().UTC().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + escapeXML(f.site.URL) + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for i := range articles {
		a := &articles[i]
		link := escapeXML(f.site.ArticleURL(a.Slug))

		b.WriteString(`    <item>
      <title>` + cdata(a.Title) + `</title>
      <link>` + link + `</link>
      <guid isPermaLink="true">` + link + `</guid>
`)
		if a.PublishedAt != nil {
			b.WriteString(`      <pubDate>` + a.PublishedAt.UTC().Format(time.RFC1123Z) + `</pubDate>
`)
		}
		b.WriteString(`      <description>` + cdata(a.Summary) + `</description>
`)
		if a.AuthorName != "" {
			b.WriteString(`      <dc:creator>` + escapeXML(a.AuthorName) + `</dc:creator>
`)
		}
		for _, id := range a.CategoryIDs {
			if c, ok := categories[id]; ok {
				b.WriteString(`      <category>` + escapeXML(c.Name) + `</category>
`)
			}
		}
		if a.ImageURL != "" {
			b.WriteString(`      <enclosure url="` + escapeXML(a.ImageURL) + `" length="0" type="image/jpeg"/>
`)
		}
		b.WriteString(`    </item>
`)
	}

	b.WriteString(`  </channel>
</rss>`)
	return b.String()
}

func escapeXML(s string) string {
	return html.EscapeString(s)
}

// cdata wraps s in a CDATA section, splitting any terminator it contains.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}
