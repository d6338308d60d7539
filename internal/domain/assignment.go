package domain

import (
	"time"

	"github.com/google/uuid"
)

type Assignment struct {
	ID          uuid.UUID
	TeacherID   uuid.UUID
	StudentID   uuid.UUID
	Title       string
	Description string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AssignmentFilter struct {
	TeacherID uuid.UUID
	StudentID uuid.UUID
}
