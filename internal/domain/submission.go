package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grade exists only on submissions that have been graded, so a completed
// record without a score cannot be represented.
type Grade struct {
	Score    float64
	Feedback *string
	GradedAt time.Time
}

type Submission struct {
	ID           uuid.UUID
	AssignmentID uuid.UUID
	StudentID    uuid.UUID
	Status       SubmissionStatus
	SubmittedAt  *time.Time
	Grade        *Grade
	Attachments  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
