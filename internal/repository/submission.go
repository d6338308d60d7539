package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"classroom_service/internal/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// textArray coalesces a nil slice to an empty one before handing it to the
// driver; the attachments column is NOT NULL and pq.Array serializes nil as
// SQL NULL.
func textArray(attachments []string) driver.Valuer {
	if attachments == nil {
		attachments = []string{}
	}
	return pq.Array(attachments)
}

const submissionColumns = `
	id, assignment_id, student_id, status, submitted_at,
	grade_score, grade_feedback, graded_at, attachments, created_at, updated_at
`

// Create inserts the submission. The unique index on
// (assignment_id, student_id) is the serialization point for concurrent
// creates; a violation surfaces as errdefs.ErrDuplicateSubmission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	query := `
		INSERT INTO submissions
			(id, assignment_id, student_id, status, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.Status,
		textArray(submission.Attachments),
		submission.CreatedAt,
		submission.UpdatedAt,
	)
	if err != nil {
		return handleSubmissionError(err)
	}

	return nil
}

// Update writes the full mutable row so concurrent grade calls resolve to
// last-writer-wins rather than a merged delta.
func (r *SubmissionRepository) Update(ctx context.Context, submission *domain.Submission) error {
	query := `
		UPDATE submissions
		SET status = $1, submitted_at = $2, grade_score = $3, grade_feedback = $4,
		    graded_at = $5, attachments = $6, updated_at = $7
		WHERE id = $8
	`

	var score sql.NullFloat64
	var feedback sql.NullString
	var gradedAt sql.NullTime
	if submission.Grade != nil {
		score = sql.NullFloat64{Float64: submission.Grade.Score, Valid: true}
		if submission.Grade.Feedback != nil {
			feedback = sql.NullString{String: *submission.Grade.Feedback, Valid: true}
		}
		gradedAt = sql.NullTime{Time: submission.Grade.GradedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		submission.Status,
		submission.SubmittedAt,
		score,
		feedback,
		gradedAt,
		textArray(submission.Attachments),
		submission.UpdatedAt,
		submission.ID,
	)
	if err != nil {
		return handleSubmissionError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return handleSubmissionError(err)
	}
	if rowsAffected == 0 {
		return handleSubmissionError(sql.ErrNoRows)
	}

	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SubmissionRepository) GetByPair(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, assignmentID, studentID))
}

func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 ORDER BY created_at`
	return r.list(ctx, query, assignmentID)
}

func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE student_id = $1 ORDER BY created_at`
	return r.list(ctx, query, studentID)
}

func (r *SubmissionRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, handleSubmissionError(err)
	}
	defer func() { _ = rows.Close() }()

	var submissions []*domain.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, handleSubmissionError(err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSubmissionError(err)
	}

	return submissions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SubmissionRepository) scanOne(row rowScanner) (*domain.Submission, error) {
	submission, err := scanSubmission(row)
	if err != nil {
		return nil, handleSubmissionError(err)
	}
	return submission, nil
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var submission domain.Submission
	var score sql.NullFloat64
	var feedback sql.NullString
	var gradedAt sql.NullTime

	err := row.Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.Status,
		&submission.SubmittedAt,
		&score,
		&feedback,
		&gradedAt,
		pq.Array(&submission.Attachments),
		&submission.CreatedAt,
		&submission.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		grade := &domain.Grade{
			Score:    score.Float64,
			GradedAt: gradedAt.Time,
		}
		if feedback.Valid {
			grade.Feedback = &feedback.String
		}
		submission.Grade = grade
	}

	return &submission, nil
}
