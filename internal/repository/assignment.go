package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"classroom_service/internal/domain"
)

type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	query := `
		INSERT INTO assignments
			(id, teacher_id, student_id, title, description, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.TeacherID,
		assignment.StudentID,
		assignment.Title,
		assignment.Description,
		assignment.DueDate,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		return handleAssignmentError(err)
	}

	return nil
}

func (r *AssignmentRepository) Update(ctx context.Context, assignment *domain.Assignment) error {
	query := `
		UPDATE assignments
		SET title = $1, description = $2, due_date = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		assignment.Title,
		assignment.Description,
		assignment.DueDate,
		time.Now(),
		assignment.ID,
	)
	if err != nil {
		return handleAssignmentError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return handleAssignmentError(err)
	}
	if rowsAffected == 0 {
		return handleAssignmentError(sql.ErrNoRows)
	}

	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	query := `
		SELECT id, teacher_id, student_id, title, description, due_date, created_at, updated_at
		FROM assignments
		WHERE id = $1
	`

	var assignment domain.Assignment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.TeacherID,
		&assignment.StudentID,
		&assignment.Title,
		&assignment.Description,
		&assignment.DueDate,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, handleAssignmentError(err)
	}

	return &assignment, nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return handleAssignmentError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return handleAssignmentError(err)
	}
	if rowsAffected == 0 {
		return handleAssignmentError(sql.ErrNoRows)
	}

	return nil
}

func (r *AssignmentRepository) ListByFilter(ctx context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	query := `
		SELECT id, teacher_id, student_id, title, description, due_date, created_at, updated_at
		FROM assignments
		WHERE 1=1
	`
	var args []interface{}
	argsCount := 1

	if filter.TeacherID != uuid.Nil {
		query += fmt.Sprintf(" AND teacher_id = $%d", argsCount)
		args = append(args, filter.TeacherID)
		argsCount++
	}

	if filter.StudentID != uuid.Nil {
		query += fmt.Sprintf(" AND student_id = $%d", argsCount)
		args = append(args, filter.StudentID)
		argsCount++
	}

	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, handleAssignmentError(err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(
			&a.ID,
			&a.TeacherID,
			&a.StudentID,
			&a.Title,
			&a.Description,
			&a.DueDate,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, handleAssignmentError(err)
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, handleAssignmentError(err)
	}

	return assignments, nil
}

// FindDueSoon returns assignments whose due date falls inside the window and
// that still have an ungraded submission attached.
func (r *AssignmentRepository) FindDueSoon(ctx context.Context, window time.Duration) ([]*domain.Assignment, error) {
	query := `
		SELECT DISTINCT a.id, a.teacher_id, a.student_id, a.title, a.description,
		       a.due_date, a.created_at, a.updated_at
		FROM assignments a
		JOIN submissions s ON s.assignment_id = a.id
		WHERE a.due_date BETWEEN NOW() AND $1
		AND s.status IN ('pending', 'submitted')
	`

	deadline := time.Now().Add(window)
	rows, err := r.db.QueryContext(ctx, query, deadline)
	if err != nil {
		return nil, handleAssignmentError(err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(
			&a.ID,
			&a.TeacherID,
			&a.StudentID,
			&a.Title,
			&a.Description,
			&a.DueDate,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, handleAssignmentError(err)
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, handleAssignmentError(err)
	}

	return assignments, nil
}
