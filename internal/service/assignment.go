package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom_service/internal/domain"
	"classroom_service/internal/errdefs"
)

type AssignmentServiceInterface interface {
	CreateAssignment(ctx context.Context, assignment *domain.Assignment) (*domain.Assignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	UpdateAssignment(ctx context.Context, assignment *domain.Assignment) error
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
	ListAssignmentsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*domain.Assignment, error)
	ListAssignmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Assignment, error)
}

type assignmentService struct {
	assignmentRepo AssignmentRepository
}

func NewAssignmentService(assignmentRepo AssignmentRepository) AssignmentServiceInterface {
	return &assignmentService{assignmentRepo: assignmentRepo}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, req *domain.Assignment) (*domain.Assignment, error) {
	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	if role != domain.RoleTeacher && role != domain.RoleAdmin {
		return nil, errdefs.ErrPermissionDenied
	}
	if role == domain.RoleTeacher && req.TeacherID != userID {
		return nil, errdefs.ErrPermissionDenied
	}

	if req.Title == "" {
		return nil, errdefs.ErrValidation
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	assignment := &domain.Assignment{
		ID:          id,
		TeacherID:   req.TeacherID,
		StudentID:   req.StudentID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
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

	return assignment, nil
}

func (s *assignmentService) UpdateAssignment(ctx context.Context, assignment *domain.Assignment) error {
	existing, err := s.assignmentRepo.GetByID(ctx, assignment.ID)
	if err != nil {
		return err
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return err
	}
	role, err := getRole(ctx)
	if err != nil {
		return err
	}

	if role != domain.RoleAdmin && existing.TeacherID != userID {
		return errdefs.ErrPermissionDenied
	}

	return s.assignmentRepo.Update(ctx, assignment)
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	userID, err := getUserID(ctx)
	if err != nil {
		return err
	}
	role, err := getRole(ctx)
	if err != nil {
		return err
	}

	if role != domain.RoleAdmin && assignment.TeacherID != userID {
		return errdefs.ErrPermissionDenied
	}

	return s.assignmentRepo.Delete(ctx, id)
}

func (s *assignmentService) ListAssignmentsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*domain.Assignment, error) {
	userID, err := getUserID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := getRole(ctx)
	if err != nil {
		return nil, err
	}

	if role != domain.RoleAdmin && teacherID != userID {
		return nil, errdefs.ErrPermissionDenied
	}

	return s.assignmentRepo.ListByFilter(ctx, domain.AssignmentFilter{TeacherID: teacherID})
}

func (s *assignmentService) ListAssignmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Assignment, error) {
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

	return s.assignmentRepo.ListByFilter(ctx, domain.AssignmentFilter{StudentID: studentID})
}
