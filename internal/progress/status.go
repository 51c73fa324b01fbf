package progress

import (
	"fmt"
	"time"
)

// Classify returns the status of m within its project. all must contain every
// milestone of the project, m included. m is matched against the current
// milestone by ID and order index, so milestones without IDs still yield a
// single current one as long as their order indexes differ.
//
// Rules, first match wins: 100% progress is completed; a set end date before
// today is delayed; the first incomplete milestone by order index is current;
// everything else is pending.
func Classify(m Milestone, all []Milestone, today time.Time) Status {
	progress := progressOf(all)
	current := currentIndex(all, progress)
	isCurrent := current >= 0 && sameMilestone(all[current], m)
	return classify(m, m.Progress(), isCurrent, today)
}

// ClassifyAll classifies every milestone of one project. The result is
// index-aligned with all.
func ClassifyAll(all []Milestone, today time.Time) []Status {
	progress := progressOf(all)
	current := currentIndex(all, progress)

	statuses := make([]Status, len(all))
	for i, m := range all {
		statuses[i] = classify(m, progress[i], i == current, today)
	}
	return statuses
}

func classify(m Milestone, progress int, isCurrent bool, today time.Time) Status {
	if progress == 100 {
		return StatusCompleted
	}
	if m.EndDate != nil && CivilDate(today).After(CivilDate(*m.EndDate)) {
		return StatusDelayed
	}
	if isCurrent {
		return StatusCurrent
	}
	return StatusPending
}

func sameMilestone(a, b Milestone) bool {
	return a.ID == b.ID && a.OrderIndex == b.OrderIndex
}

func progressOf(all []Milestone) []int {
	progress := make([]int, len(all))
	for i, m := range all {
		progress[i] = m.Progress()
	}
	return progress
}

// currentIndex finds the incomplete milestone with the smallest order index.
// Ties keep the earliest position in all. Returns -1 when all are complete.
func currentIndex(all []Milestone, progress []int) int {
	idx := -1
	for i := range all {
		if progress[i] >= 100 {
			continue
		}
		if idx == -1 || all[i].OrderIndex < all[idx].OrderIndex {
			idx = i
		}
	}
	return idx
}

// Offset is the distance between a milestone's planned end date and its
// actual completion date.
type Offset struct {
	Days int  `json:"days"`
	Late bool `json:"late"`
}

func (o Offset) String() string {
	if o.Late {
		return fmt.Sprintf("late by %d days", o.Days)
	}
	return fmt.Sprintf("early by %d days", o.Days)
}

// CompletionOffset reports how early or late a completed milestone finished.
// ok is false unless the milestone is 100% complete and has both EndDate and
// CompletedAt. Finishing on the end date counts as early by 0 days.
func CompletionOffset(m Milestone) (Offset, bool) {
	if m.Progress() != 100 || m.EndDate == nil || m.CompletedAt == nil {
		return Offset{}, false
	}
	diff := daysBetween(*m.EndDate, *m.CompletedAt)
	if diff <= 0 {
		return Offset{Days: -diff}, true
	}
	return Offset{Days: diff, Late: true}, true
}

// TimelineState is the per-milestone state on the project timeline, which
// looks only at the milestone's own dates and progress.
type TimelineState string

const (
	TimelineCompleted  TimelineState = "completed"
	TimelineInProgress TimelineState = "in_progress"
	TimelineNotStarted TimelineState = "not_started"
	TimelineDelayed    TimelineState = "delayed"
)

// TimelineStatus classifies m for the timeline view. Milestones without a
// full planned range are never delayed there.
func TimelineStatus(m Milestone, today time.Time) TimelineState {
	progress := m.Progress()
	if progress == 100 {
		return TimelineCompleted
	}
	if m.StartDate != nil && m.EndDate != nil &&
		CivilDate(today).After(CivilDate(*m.EndDate)) {
		return TimelineDelayed
	}
	if progress > 0 {
		return TimelineInProgress
	}
	return TimelineNotStarted
}
