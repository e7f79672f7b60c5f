package middleware

import (
	"github.com/gin-gonic/gin"
)

const SiteKey = "site"

// SiteInfo exposes the site identity to every template.
func SiteInfo(info gin.H) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SiteKey, info)
		c.Next()
	}
}
