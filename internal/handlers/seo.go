package handlers

import (
	"flashinfos/internal/services"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const documentCacheControl = "public, max-age=3600, s-maxage=3600"

// Manifest is the web app manifest served at /manifest.webmanifest.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type SEOHandler struct {
	siteURL  string
	feed     *services.FeedService
	sitemap  *services.SitemapService
	manifest Manifest
}

func NewSEOHandler(siteURL string, feed *services.FeedService, sitemap *services.SitemapService, manifest Manifest) *SEOHandler {
	return &SEOHandler{siteURL: siteURL, feed: feed, sitemap: sitemap, manifest: manifest}
}

// RobotsTxt points crawlers at the sitemap and away from the JSON API
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# API et formulaires
Disallow: /api/
Disallow: /newsletter

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// SitemapXML serves the sitemap, rebuilt at most once an hour
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	data, err := h.sitemap.Build(c.Request.Context())
	if err != nil {
		slog.Error("failed to build sitemap", "error", err)
		c.String(http.StatusServiceUnavailable, "sitemap temporarily unavailable")
		return
	}
	c.Header("Cache-Control", documentCacheControl)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// RSSFeed serves the 50 latest articles as RSS 2.0
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	data, err := h.feed.RSS(c.Request.Context())
	if err != nil {
		slog.Error("failed to build feed", "error", err)
		c.String(http.StatusServiceUnavailable, "feed temporarily unavailable")
		return
	}
	c.Header("Cache-Control", documentCacheControl)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

func (h *SEOHandler) WebManifest(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Content-Type", "application/manifest+json")
	c.JSON(http.StatusOK, h.manifest)
}

// DefaultManifest builds the manifest from the site identity.
func DefaultManifest(name, shortName, description, background, theme string) Manifest {
	return Manifest{
		Name:            name,
		ShortName:       shortName,
		Description:     description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: background,
		ThemeColor:      theme,
		Icons: []ManifestIcon{
			{Src: "/static/icons/icon.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/static/icons/icon.png", Sizes: "512x512", Type: "image/png"},
			{Src: "/static/icons/icon.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable"},
		},
	}
}
