package model

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Position       string     `json:"position"` // professor / post_doc / phd / ms / researcher
	Status         string     `json:"status"`
	AdmissionDate  *time.Time `json:"admission_date,omitempty"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
