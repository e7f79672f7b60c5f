package middleware

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"

	// FlashesKey holds the flashes popped for the current request.
	FlashesKey = "flashes"
)

// Flashes maps a flash kind to its messages.
type Flashes map[string][]string

// AddFlash queues a message for the next page the reader sees.
func AddFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	if err := session.Save(); err != nil {
		slog.Warn("failed to save flash", "error", err)
	}
}

// LoadFlashes pops queued flash messages into the request context.
func LoadFlashes() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		flashes := Flashes{}
		for _, kind := range []string{FlashSuccess, FlashError} {
			for _, f := range session.Flashes(kind) {
				if msg, ok := f.(string); ok {
					flashes[kind] = append(flashes[kind], msg)
				}
			}
		}
		if len(flashes) > 0 {
			if err := session.Save(); err != nil {
				slog.Warn("failed to clear flashes", "error", err)
			}
		}
		c.Set(FlashesKey, flashes)
		c.Next()
	}
}
