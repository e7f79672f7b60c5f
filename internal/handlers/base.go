package handlers

import (
	"flashinfos/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like site identity and flashes
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if site, exists := c.Get(middleware.SiteKey); exists {
		obj["Site"] = site
	}
	if flashes, exists := c.Get(middleware.FlashesKey); exists {
		obj["Flashes"] = flashes
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError shows the error page with a link home
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Error": message})
}

// redirectBack sends the reader to path after a form post (post/redirect/get)
func redirectBack(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}
