package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamps(t *testing.T) {
	at := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	var missing *time.Time

	in := map[string]any{
		"title":       "Budget 2025",
		"publishedAt": Timestamp{Seconds: at.Unix()},
		"createdAt":   at,
		"updatedAt":   &at,
		"deletedAt":   missing,
		"legacy":      map[string]any{"seconds": float64(at.Unix()), "nanoseconds": float64(0)},
		"meta":        map[string]any{"seconds": float64(1), "nanoseconds": float64(0), "other": true},
		"nested":      map[string]any{"at": Timestamp{Seconds: 1}},
		"count":       int64(3),
	}
	out := NormalizeTimestamps(in)

	want := "2025-01-02T10:00:00.000Z"
	assert.Equal(t, want, out["publishedAt"])
	assert.Equal(t, want, out["createdAt"])
	assert.Equal(t, want, out["updatedAt"])
	assert.Equal(t, want, out["legacy"])
	assert.Nil(t, out["deletedAt"])
	assert.Equal(t, "Budget 2025", out["title"])
	assert.Equal(t, int64(3), out["count"])
	// only exact {seconds, nanoseconds} pairs are timestamps; nested values are not visited
	assert.IsType(t, map[string]any{}, out["meta"])
	assert.IsType(t, Timestamp{}, out["nested"].(map[string]any)["at"])

	// input untouched
	assert.IsType(t, Timestamp{}, in["publishedAt"])

	again := NormalizeTimestamps(out)
	assert.Equal(t, out, again)

	parsed, err := time.Parse(time.RFC3339, want)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestNormalizeTimestampsFromJSON(t *testing.T) {
	var doc map[string]any
	dec := json.NewDecoder(stringsReader(`{"publishedAt":{"seconds":1735812000,"nanoseconds":250000000}}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&doc))

	out := NormalizeTimestamps(doc)
	assert.Equal(t, "2025-01-02T10:00:00.250Z", out["publishedAt"])
}

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2024, 6, 30, 23, 59, 59, 123456789, time.UTC)
	assert.True(t, TimestampOf(at).Time().Equal(at))
}

type recordFixture struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Published *time.Time `json:"publishedAt"`
	Created   time.Time  `json:"createdAt"`
	Secret    string     `json:"-"`
	Note      string     `json:"note,omitempty"`
	Tags      []string   `json:"tags"`
	Plain     int
	hidden    bool
}

func TestToRecord(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	r := ToRecord(&recordFixture{ID: "a1", Title: "T", Created: at, Secret: "x", Tags: []string{"eco"}, Plain: 2, hidden: true})

	assert.Equal(t, "a1", r["id"])
	assert.Equal(t, "2025-05-01T08:30:00.000Z", r["createdAt"])
	assert.Nil(t, r["publishedAt"])
	assert.Contains(t, r, "publishedAt")
	assert.NotContains(t, r, "Secret")
	assert.NotContains(t, r, "-")
	assert.NotContains(t, r, "note")
	assert.NotContains(t, r, "hidden")
	assert.Equal(t, []string{"eco"}, r["tags"])
	assert.Equal(t, 2, r["Plain"])

	assert.Nil(t, ToRecord(nil))
	assert.Nil(t, ToRecord("not a struct"))

	rs := ToRecords([]recordFixture{{ID: "a"}, {ID: "b"}})
	require.Len(t, rs, 2)
	assert.Equal(t, "b", rs[1]["id"])
}
