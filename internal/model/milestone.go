package model

import (
	"time"

	"github.com/google/uuid"

	"labboard/internal/progress"
)

type Milestone struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	Stage       string          `json:"stage"`
	Weight      float64         `json:"weight"`
	SortOrder   int             `json:"sort_order"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Items       []ChecklistItem `json:"checklist_items"`
}

type ChecklistItem struct {
	ID          uuid.UUID  `json:"id"`
	MilestoneID uuid.UUID  `json:"milestone_id"`
	Content     string     `json:"content"`
	Completed   bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	SortOrder   int        `json:"sort_order"`
}

// Core converts the record into the progress engine's input.
func (m Milestone) Core() progress.Milestone {
	items := make([]progress.ChecklistItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = progress.ChecklistItem{Completed: it.Completed, CompletedAt: it.CompletedAt}
	}
	return progress.Milestone{
		ID:          m.ID.String(),
		Weight:      m.Weight,
		OrderIndex:  m.SortOrder,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		CompletedAt: m.CompletedAt,
		Items:       items,
	}
}

func CoreMilestones(ms []Milestone) []progress.Milestone {
	out := make([]progress.Milestone, len(ms))
	for i, m := range ms {
		out[i] = m.Core()
	}
	return out
}
