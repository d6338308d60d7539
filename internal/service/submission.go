package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classroom_service/internal/domain"
	"classroom_service/internal/errdefs"
	"classroom_service/pkg/ctxdata"
	"classroom_service/pkg/logging"
)

const gradedEventsTopic = "submission-graded"

type GradeInput struct {
	Score    float64
	Feedback *string
	// Now is the grading instant used for the late determination. The zero
	// value means the wall clock.
	Now time.Time
	// AllowUnsubmitted permits grading work still in pending. Admin only.
	AllowUnsubmitted bool
}

type SubmissionServiceInterface interface {
	CreateSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error)
	SubmitWork(ctx context.Context, id uuid.UUID, attachments []string) (*domain.Submission, error)
	GradeSubmission(ctx context.Context, id uuid.UUID, input GradeInput) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	GetSubmissionByPair(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error)
	ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*domain.Submission, error)
	ListSubmissionsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Submission, error)
}

type submissionService struct {
	submissionRepo SubmissionRepository
	assignmentRepo AssignmentRepository
	notifier       Notifier
}

func NewSubmissionService(
	submissionRepo SubmissionRepository,
	assignmentRepo AssignmentRepository,
	notifier Notifier,
) SubmissionServiceInterface {
	return &submissionService{
		submissionRepo: submissionRepo,
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
	}
}

// CreateSubmission opens the one pending record an assignment/student pair
// may have. The teacher issuing the assignment and the student it was issued
// to may both open it; the unique index makes concurrent creates resolve to
// one row and one errdefs.ErrDuplicateSubmission.
func (s *submissionService) CreateSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.StudentID != studentID {
		return nil, errdefs.ErrValidation
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleTeacher:
		if assignment.TeacherID != userID {
			return nil, errdefs.ErrPermissionDenied
		}
	case domain.RoleStudent:
		if studentID != userID {
			return nil, errdefs.ErrPermissionDenied
		}
	case domain.RoleAdmin:
	default:
		return nil, errdefs.ErrPermissionDenied
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	submission := &domain.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       domain.SubmissionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// SubmitWork moves a pending submission to submitted, recording the
// submission instant and the attachment references. Only the owning student
// may submit, and only once; every other starting status is rejected.
func (s *submissionService) SubmitWork(ctx context.Context, id uuid.UUID, attachments []string) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	if role != domain.RoleStudent || submission.StudentID != userID {
		return nil, errdefs.ErrPermissionDenied
	}

	if submission.Status != domain.SubmissionStatusPending {
		return nil, errdefs.ErrInvalidTransition
	}

	now := time.Now()
	submission.Status = domain.SubmissionStatusSubmitted
	submission.SubmittedAt = &now
	submission.Attachments = attachments
	submission.UpdatedAt = now

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// GradeSubmission records a grade and closes the record. The status becomes
// late when the grading instant is strictly after the assignment due date,
// completed otherwise. Completed and late keep their status on regrade; the
// grade record is replaced wholesale.
func (s *submissionService) GradeSubmission(ctx context.Context, id uuid.UUID, input GradeInput) (*domain.Submission, error) {
	if input.Score < 0 || input.Score > 100 {
		return nil, errdefs.ErrOutOfRange
	}

	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, err
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleTeacher:
		if assignment.TeacherID != userID {
			return nil, errdefs.ErrPermissionDenied
		}
	case domain.RoleAdmin:
	default:
		return nil, errdefs.ErrPermissionDenied
	}

	if submission.Status == domain.SubmissionStatusPending {
		if !input.AllowUnsubmitted {
			return nil, errdefs.ErrNotSubmitted
		}
		if role != domain.RoleAdmin {
			return nil, errdefs.ErrPermissionDenied
		}
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	if !submission.Status.IsTerminal() {
		if assignment.DueDate != nil && now.After(*assignment.DueDate) {
			submission.Status = domain.SubmissionStatusLate
		} else {
			submission.Status = domain.SubmissionStatusCompleted
		}
	}

	submission.Grade = &domain.Grade{
		Score:    input.Score,
		Feedback: input.Feedback,
		GradedAt: now,
	}
	submission.UpdatedAt = now

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}

	s.publishGraded(ctx, submission)

	return submission, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureParticipant(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// GetSubmissionByPair resolves the one record an assignment/student pair may
// have. Callers hitting ErrDuplicateSubmission on create land here to reach
// the existing record.
func (s *submissionService) GetSubmissionByPair(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByPair(ctx, assignmentID, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureParticipant(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

func (s *submissionService) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*domain.Submission, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	if role != domain.RoleAdmin && assignment.TeacherID != userID && assignment.StudentID != userID {
		return nil, errdefs.ErrPermissionDenied
	}

	return s.submissionRepo.ListByAssignment(ctx, assignmentID)
}

func (s *submissionService) ListSubmissionsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Submission, error) {
	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	if role == domain.RoleStudent && studentID != userID {
		return nil, errdefs.ErrPermissionDenied
	}

	return s.submissionRepo.ListByStudent(ctx, studentID)
}

func (s *submissionService) ensureParticipant(ctx context.Context, submission *domain.Submission) error {
	userID, err := getUserID(ctx)
	if err != nil {
		return err
	}
	role, err := getRole(ctx)
	if err != nil {
		return err
	}

	if role == domain.RoleAdmin || submission.StudentID == userID {
		return nil
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return err
	}
	if assignment.TeacherID != userID {
		return errdefs.ErrPermissionDenied
	}

	return nil
}

func (s *submissionService) publishGraded(ctx context.Context, submission *domain.Submission) {
	event := map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
		"status":        submission.Status,
		"score":         submission.Grade.Score,
		"graded_at":     submission.Grade.GradedAt,
	}

	if err := s.notifier.Send(ctx, gradedEventsTopic, event); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Error(ctx, "failed to publish graded event",
				zap.String("submission_id", submission.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func getUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return uuid.Nil, errdefs.ErrAuthentication
	}

	idUUID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errdefs.ErrAuthentication
	}

	return idUUID, nil
}

func getRole(ctx context.Context) (domain.Role, error) {
	roleString, ok := ctxdata.GetUserRole(ctx)
	if !ok {
		return "", errdefs.ErrAuthentication
	}
	role := domain.Role(roleString)
	if !role.IsValid() {
		return "", errdefs.ErrAuthentication
	}

	return role, nil
}
