package progress

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// CivilDate truncates t to midnight of its UTC calendar date. All date
// comparisons in this package go through it.
func CivilDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)) / day)
}

// DDayInfo describes the distance from today to a deadline.
type DDayInfo struct {
	Days    int    `json:"dday"`
	Label   string `json:"label"`
	Overdue bool   `json:"is_overdue"`
}

// DDay computes the D-day countdown: "D-Day" on the deadline, "D-n" before it
// and "D+n" after it.
func DDay(deadline, today time.Time) DDayInfo {
	days := daysBetween(today, deadline)
	switch {
	case days == 0:
		return DDayInfo{Days: 0, Label: "D-Day"}
	case days > 0:
		return DDayInfo{Days: days, Label: fmt.Sprintf("D-%d", days)}
	default:
		return DDayInfo{Days: days, Label: fmt.Sprintf("D+%d", -days), Overdue: true}
	}
}

// Health is the coarse project state shown on project cards.
type Health string

const (
	HealthPreparing  Health = "preparing"
	HealthInProgress Health = "in_progress"
	HealthOnTrack    Health = "on_track"
	HealthDelayed    Health = "delayed"
)

// ProjectHealth derives a project's health from its overall progress and
// deadline. A project is behind when its progress is under 70% of the
// expected progress, where expected = max(0, 100 - 2*daysLeft).
func ProjectHealth(overall float64, deadline *time.Time, today time.Time) Health {
	if overall == 0 {
		return HealthPreparing
	}
	if deadline == nil {
		return HealthInProgress
	}

	d := DDay(*deadline, today)
	if d.Overdue {
		return HealthDelayed
	}

	expected := float64(100 - d.Days*2)
	if expected < 0 {
		expected = 0
	}
	if overall < expected*0.7 {
		return HealthDelayed
	}
	return HealthOnTrack
}

// RelativeTime renders t relative to now in coarse buckets, counted in
// calendar days.
func RelativeTime(t, now time.Time) string {
	days := daysBetween(t, now)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return ago(days, "day")
	case days < 30:
		return ago(days/7, "week")
	case days < 365:
		return ago(days/30, "month")
	default:
		return ago(days/365, "year")
	}
}

func ago(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
