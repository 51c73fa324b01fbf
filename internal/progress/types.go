// Package progress turns milestone and checklist snapshots into progress
// percentages, milestone statuses and member-level schedule statistics.
//
// Every function here is a pure transformation over already-fetched data.
// Callers load records, convert them to the types below and persist any
// derived value (such as a project's overall progress) themselves.
package progress

import "time"

// ChecklistItem is one binary-completable task inside a milestone.
// CompletedAt may be nil even when Completed is true.
type ChecklistItem struct {
	Completed   bool
	CompletedAt *time.Time
}

// Milestone is one weighted stage of a project. StartDate and EndDate are the
// planned range; CompletedAt is the actual completion instant stamped by the
// application when the checklist became fully complete.
type Milestone struct {
	ID          string
	Weight      float64
	OrderIndex  int
	StartDate   *time.Time
	EndDate     *time.Time
	CompletedAt *time.Time
	Items       []ChecklistItem
}

// Progress returns the checklist-derived completion percentage.
func (m Milestone) Progress() int {
	return MilestoneProgress(m.Items)
}

// Status is the classification of a milestone relative to its project and today.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCurrent   Status = "current"
	StatusDelayed   Status = "delayed"
	StatusPending   Status = "pending"
)
