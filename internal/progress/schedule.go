package progress

import (
	"math"
	"time"
)

// ScheduleEntry is the slice of a milestone that schedule adherence needs.
type ScheduleEntry struct {
	EndDate     *time.Time
	CompletedAt *time.Time
	Progress    int
}

// ScheduleStats summarises on-time completion across completed milestones.
type ScheduleStats struct {
	Rate    int `json:"rate"`
	OnTime  int `json:"on_time"`
	Delayed int `json:"delayed"`
	Total   int `json:"total"`
}

// ScheduleEntries projects milestones onto schedule entries.
func ScheduleEntries(milestones []Milestone) []ScheduleEntry {
	entries := make([]ScheduleEntry, len(milestones))
	for i, m := range milestones {
		entries[i] = ScheduleEntry{
			EndDate:     m.EndDate,
			CompletedAt: m.CompletedAt,
			Progress:    m.Progress(),
		}
	}
	return entries
}

// ScheduleAdherence counts completed milestones finished on or before their
// planned end date. A milestone missing either date has no deadline to miss
// and counts as on time. With nothing completed the rate is 100.
func ScheduleAdherence(entries []ScheduleEntry) ScheduleStats {
	var onTime, delayed int
	for _, e := range entries {
		if e.Progress != 100 {
			continue
		}
		if e.EndDate == nil || e.CompletedAt == nil {
			onTime++
			continue
		}
		if CivilDate(*e.CompletedAt).After(CivilDate(*e.EndDate)) {
			delayed++
		} else {
			onTime++
		}
	}

	total := onTime + delayed
	rate := 100
	if total > 0 {
		rate = int(math.Round(100 * float64(onTime) / float64(total)))
	}
	return ScheduleStats{Rate: rate, OnTime: onTime, Delayed: delayed, Total: total}
}
