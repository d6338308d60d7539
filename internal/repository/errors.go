package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"classroom_service/internal/errdefs"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func handleSubmissionError(err error) error {
	if isUniqueViolation(err) {
		return errdefs.ErrDuplicateSubmission
	}
	if isNotFound(err) {
		return errdefs.ErrNotFound
	}
	return fmt.Errorf("repository error: %w", err)
}

func handleAssignmentError(err error) error {
	if isNotFound(err) {
		return errdefs.ErrNotFound
	}
	return fmt.Errorf("repository error: %w", err)
}
