package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPLimiter(t *testing.T) {
	l := NewIPLimiter(5, 5)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("1.2.3.4"), i)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(12 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	now = now.Add(time.Hour)
	l.Allow("9.9.9.9")
	assert.Len(t, l.visitors, 1)
}

func newEngine(l *IPLimiter) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadFlashes())
	r.Use(SiteInfo(gin.H{"Name": "Flash Infos 237"}))

	r.POST("/api/v1/newsletter", RateLimit(l), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/article/:slug/comments", RateLimit(l), func(c *gin.Context) {
		AddFlash(c, FlashSuccess, "ok")
		c.Redirect(http.StatusSeeOther, "/article/"+c.Param("slug"))
	})
	r.GET("/article/:slug", func(c *gin.Context) {
		flashes, _ := c.Get(FlashesKey)
		site, _ := c.Get(SiteKey)
		c.JSON(http.StatusOK, gin.H{"flashes": flashes, "site": site})
	})
	return r
}

func TestRateLimitAPI(t *testing.T) {
	r := newEngine(NewIPLimiter(1, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Trop de tentatives")
}

func TestRateLimitFormAndFlash(t *testing.T) {
	r := newEngine(NewIPLimiter(1, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/article/budget/comments", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/article/budget", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"success":["ok"]`)
	assert.Contains(t, w.Body.String(), "Flash Infos 237")

	// second post is over the limit and bounces back to the article
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/article/budget/comments", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/article/budget", w.Header().Get("Location"))
}
