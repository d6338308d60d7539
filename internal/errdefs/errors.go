package errdefs

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateSubmission = errors.New("submission already exists for this assignment and student")
	ErrInvalidTransition   = errors.New("invalid submission status transition")
	ErrNotSubmitted        = errors.New("cannot grade work that was not submitted")
	ErrOutOfRange          = errors.New("grade must be between 0 and 100")
	ErrValidation          = errors.New("validation error")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAuthentication      = errors.New("authentication error")
)
