package models

import (
	"time"
)

// PageView aggregates article views for one UTC calendar day.
type PageView struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"` // day_YYYY-MM-DD
	Date        time.Time `gorm:"not null;index" json:"date"`
	Count       int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PageViewID returns the aggregate id for the UTC day containing t.
func PageViewID(t time.Time) string {
	return "day_" + t.UTC().Format("2006-01-02")
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
