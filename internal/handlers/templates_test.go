package handlers

import (
	"bytes"
	"flashinfos/internal/models"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "à l'instant"},
		{5 * time.Minute, "il y a 5 min"},
		{3 * time.Hour, "il y a 3 h"},
		{24 * time.Hour, "il y a 1 jour"},
		{72 * time.Hour, "il y a 3 jours"},
		{60 * 24 * time.Hour, "il y a 2 mois"},
		{800 * 24 * time.Hour, "il y a 2 ans"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timeAgo(tt.d), tt.d.String())
	}
}

func TestFuncMap(t *testing.T) {
	now := time.Date(2025, 3, 2, 14, 5, 0, 0, time.UTC)
	published := now.Add(-2 * time.Hour)

	tmpl, err := template.New("t").Funcs(FuncMap(func() time.Time { return now })).Parse(
		`{{formatDate .At}}|{{timeAgo .At}}|{{formatDate .Missing}}|{{categoryName .Cats "c1"}}|{{with dict "a" 1}}{{.a}}{{end}}|{{add 1 2}}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]any{
		"At":      &published,
		"Missing": (*time.Time)(nil),
		"Cats":    map[string]models.Category{"c1": {Name: "Sport"}},
	}))
	assert.Equal(t, "2 mars 2025 à 12:05|il y a 2 h||Sport|1|3", buf.String())
}

func TestLoadTemplates(t *testing.T) {
	_, err := LoadTemplates("../../web/templates")
	require.NoError(t, err)

	_, err = LoadTemplates(t.TempDir())
	assert.Error(t, err)
}

func TestShareLinks(t *testing.T) {
	links := shareLinks("https://flashinfos237.com/article/budget", "Budget 2025 & régions")
	require.Len(t, links, 5)

	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fflashinfos237.com%2Farticle%2Fbudget", links[0].URL)
	assert.Equal(t, "https://twitter.com/intent/tweet?url=https%3A%2F%2Fflashinfos237.com%2Farticle%2Fbudget&text=Budget+2025+%26+r%C3%A9gions", links[1].URL)
	assert.Equal(t, "whatsapp", links[2].Network)
	assert.Equal(t, "mailto:?subject=Budget%202025%20%26%20r%C3%A9gions&body=https%3A%2F%2Fflashinfos237.com%2Farticle%2Fbudget", links[4].URL)
}
