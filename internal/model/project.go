package model

import (
	"time"

	"github.com/google/uuid"
)

// Author roles on a project.
const (
	RoleFirstAuthor   = "first_author"
	RoleCorresponding = "corresponding"
	RoleCoAuthor      = "co_author"
)

type Project struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Category        string     `json:"category"` // thesis / submission / revision / publication / other
	Status          string     `json:"status"`
	OverallProgress float64    `json:"overall_progress"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ProjectAuthor is one entry of a project's author list. Name is matched
// against member names when building a member's project set.
type ProjectAuthor struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	SortOrder int       `json:"sort_order"`
}

// Membership is a project as seen from one member, loaded with its
// milestones and checklists.
type Membership struct {
	Project    Project     `json:"project"`
	Role       string      `json:"role"`
	Milestones []Milestone `json:"milestones"`
}

// MembershipID keys memberships by project for de-duplication.
func MembershipID(m Membership) string {
	return m.Project.ID.String()
}
