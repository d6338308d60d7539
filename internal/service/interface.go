package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom_service/internal/domain"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	Update(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	GetByPair(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*domain.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Submission, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	Update(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByFilter(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error)
	FindDueSoon(ctx context.Context, window time.Duration) ([]*domain.Assignment, error)
}

// Notifier hands lifecycle events to the messaging collaborator. Failures are
// logged and never fail the operation that raised the event.
type Notifier interface {
	Send(ctx context.Context, topic string, message interface{}) error
}
