package utils

import (
	"encoding/json"
	"time"
)

// isoLayout matches the ISO-8601 form browsers produce (millisecond precision, UTC).
const isoLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is the legacy document store's native time value.
type Timestamp struct {
	Seconds     int64 `json:"seconds" mapstructure:"seconds"`
	Nanoseconds int32 `json:"nanoseconds" mapstructure:"nanoseconds"`
}

// Time converts the pair into a UTC time.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// TimestampOf is the inverse of Time.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// FormatISO renders t the way NormalizeTimestamps does.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// NormalizeTimestamps returns a shallow copy of record where every top-level
// value holding a native timestamp is replaced by its ISO-8601 string. Nested
// maps and slices are left untouched, so running it twice changes nothing.
func NormalizeTimestamps(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		if t, ok := asTime(v); ok {
			out[k] = FormatISO(t)
			continue
		}
		out[k] = v
	}
	return out
}

func asTime(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case *time.Time:
		if tv == nil {
			return time.Time{}, false
		}
		return *tv, true
	case Timestamp:
		return tv.Time(), true
	case *Timestamp:
		if tv == nil {
			return time.Time{}, false
		}
		return tv.Time(), true
	case map[string]any:
		return mapTimestamp(tv)
	}
	return time.Time{}, false
}

// mapTimestamp recognizes {"seconds": n, "nanoseconds": n} as decoded from JSON.
func mapTimestamp(m map[string]any) (time.Time, bool) {
	if len(m) != 2 {
		return time.Time{}, false
	}
	secs, ok := number(m["seconds"])
	if !ok {
		return time.Time{}, false
	}
	nanos, ok := number(m["nanoseconds"])
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, nanos).UTC(), true
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
