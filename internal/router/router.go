package router

import (
	"flashinfos/internal/cache"
	"flashinfos/internal/config"
	"flashinfos/internal/handlers"
	"flashinfos/internal/middleware"
	"flashinfos/internal/services"
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived resources the engine is built on. The caller owns
// them and closes them on shutdown.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Cache
	Views  *services.ViewRecorder
}

// New builds the gin engine with every page, form, generator and API route.
func New(d Deps) (*gin.Engine, error) {
	cfg := d.Config

	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := gin.Default()
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.SessionKey))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true})
	r.Use(sessions.Sessions("flashinfos_session", store))
	r.Use(middleware.LoadFlashes())
	r.Use(middleware.SiteInfo(gin.H{
		"Name":        cfg.SiteName,
		"URL":         cfg.SiteURL,
		"Description": cfg.SiteTagline,
		"ThemeColor":  cfg.ThemeColor,
		"Year":        time.Now().Year(),
	}))
	r.Use(apiCORS())

	r.HTMLRender = renderer
	r.Static("/static", cfg.StaticDir)

	RegisterRoutes(r, d)
	return r, nil
}

// RegisterRoutes wires the handlers onto r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	site := services.Site{URL: cfg.SiteURL, Name: cfg.SiteName, Description: cfg.SiteTagline}

	// Services
	content := services.NewContentService(d.DB)
	pages := services.NewPageService(content, d.Cache)
	submissions := services.NewSubmissionService(d.DB)
	feed := services.NewFeedService(content, d.Cache, site)
	sitemap := services.NewSitemapService(content, d.Cache, site)

	// Handlers
	siteHandler := handlers.NewSiteHandler(pages, d.Views)
	formHandler := handlers.NewFormHandler(content, submissions)
	apiHandler := handlers.NewAPIHandler(content, pages, submissions, d.Views)
	seoHandler := handlers.NewSEOHandler(cfg.SiteURL, feed, sitemap,
		handlers.DefaultManifest(cfg.SiteName, cfg.ShortName, cfg.SiteTagline, cfg.Background, cfg.ThemeColor))

	limited := middleware.RateLimit(middleware.NewIPLimiter(cfg.SubmitPerMinute, cfg.SubmitBurst))

	// Pages
	r.GET("/", siteHandler.Home)
	r.GET("/article/:slug", siteHandler.Article)
	r.GET("/category/:slug", siteHandler.Category)
	r.GET("/about", siteHandler.About)
	r.GET("/terms", siteHandler.Terms)
	r.GET("/privacy", siteHandler.Privacy)
	r.GET("/contact", siteHandler.Contact)

	// Forms
	r.POST("/article/:slug/comments", limited, formHandler.Comment)
	r.POST("/contact", limited, formHandler.Contact)
	r.POST("/newsletter", limited, formHandler.Newsletter)

	// Generated documents
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/manifest.webmanifest", seoHandler.WebManifest)

	api := r.Group("/api/v1")
	{
		api.GET("/articles/latest", apiHandler.LatestArticles)
		api.GET("/articles/featured", apiHandler.FeaturedArticles)
		api.GET("/articles/:slug", apiHandler.Article)
		api.POST("/articles/:slug/comments", limited, apiHandler.CreateComment)
		api.GET("/categories", apiHandler.Categories)
		api.GET("/categories/:slug/articles", apiHandler.CategoryArticles)
		api.POST("/contact", limited, apiHandler.Contact)
		api.POST("/newsletter", limited, apiHandler.Newsletter)
		api.GET("/stats/views", apiHandler.ViewStats)
	}

	r.NoRoute(siteHandler.NotFound)
}

// apiCORS opens the JSON API to any origin. It is installed globally so
// preflight requests, which match no route, still reach it.
func apiCORS() gin.HandlerFunc {
	handler := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	})
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler(c)
			return
		}
		c.Next()
	}
}
