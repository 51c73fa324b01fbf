package mq

import "time"

// ProjectCreatedPayload is published when a project row is committed. The
// worker seeds the stage template from it.
type ProjectCreatedPayload struct {
	EventID    string    `json:"event_id"`
	ProjectID  string    `json:"project_id"`
	CreatedBy  string    `json:"created_by"`
	Title      string    `json:"title"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ChecklistToggledPayload is published after a checklist item changes state.
type ChecklistToggledPayload struct {
	EventID     string    `json:"event_id"`
	ItemID      string    `json:"item_id"`
	MilestoneID string    `json:"milestone_id"`
	ProjectID   string    `json:"project_id"`
	Completed   bool      `json:"completed"`
	ToggledBy   string    `json:"toggled_by"`
	TraceID     string    `json:"trace_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
