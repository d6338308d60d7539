package domain

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusLate      SubmissionStatus = "late"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusSubmitted,
		SubmissionStatusCompleted, SubmissionStatusLate:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further status change.
// Terminal records may still have their grade and feedback replaced.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusCompleted || s == SubmissionStatusLate
}

func ToSubmissionStatus(status string) (SubmissionStatus, bool) {
	s := SubmissionStatus(status)
	return s, s.IsValid()
}
