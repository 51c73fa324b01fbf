package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReviewPending    = "pending"
	ReviewProcessing = "processing"
	ReviewCompleted  = "completed"
	ReviewError      = "error"
)

type PeerReview struct {
	ID           uuid.UUID  `json:"id"`
	MemberID     uuid.UUID  `json:"member_id"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	ProjectTitle *string    `json:"project_title,omitempty"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Result       *string    `json:"review_result,omitempty"`
	Status       string     `json:"review_status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
