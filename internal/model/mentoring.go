package model

import (
	"time"

	"github.com/google/uuid"
)

// MentoringPost records one mentoring meeting. Column order matches the
// repository's SELECT lists.
type MentoringPost struct {
	ID             uuid.UUID  `json:"id"`
	AuthorID       uuid.UUID  `json:"author_id"`
	TargetMemberID *uuid.UUID `json:"target_member_id,omitempty"`
	MeetingDate    time.Time  `json:"meeting_date"`
	Content        string     `json:"content"`
	NextSteps      []string   `json:"next_steps,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type MentoringComment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
