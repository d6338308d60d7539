package httpapi

import (
	"time"

	"classroom_service/internal/domain"
)

type createAssignmentRequest struct {
	TeacherID   string     `json:"teacher_id" validate:"required,uuid"`
	StudentID   string     `json:"student_id" validate:"required,uuid"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type updateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type createSubmissionRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	StudentID    string `json:"student_id" validate:"required,uuid"`
}

type submitWorkRequest struct {
	Attachments []string `json:"attachments" validate:"max=32,dive,required"`
}

type gradeSubmissionRequest struct {
	Score            float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback         *string `json:"feedback"`
	AllowUnsubmitted bool    `json:"allow_unsubmitted"`
}

type assignmentResponse struct {
	ID          string     `json:"id"`
	TeacherID   string     `json:"teacher_id"`
	StudentID   string     `json:"student_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type gradeResponse struct {
	Score    float64   `json:"score"`
	Feedback *string   `json:"feedback,omitempty"`
	GradedAt time.Time `json:"graded_at"`
}

type submissionResponse struct {
	ID           string         `json:"id"`
	AssignmentID string         `json:"assignment_id"`
	StudentID    string         `json:"student_id"`
	Status       string         `json:"status"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
	Grade        *gradeResponse `json:"grade,omitempty"`
	Attachments  []string       `json:"attachments"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func toAssignmentResponse(a *domain.Assignment) *assignmentResponse {
	return &assignmentResponse{
		ID:          a.ID.String(),
		TeacherID:   a.TeacherID.String(),
		StudentID:   a.StudentID.String(),
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toAssignmentResponses(assignments []*domain.Assignment) []*assignmentResponse {
	resp := make([]*assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, toAssignmentResponse(a))
	}
	return resp
}

func toSubmissionResponse(s *domain.Submission) *submissionResponse {
	resp := &submissionResponse{
		ID:           s.ID.String(),
		AssignmentID: s.AssignmentID.String(),
		StudentID:    s.StudentID.String(),
		Status:       string(s.Status),
		SubmittedAt:  s.SubmittedAt,
		Attachments:  s.Attachments,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}

	if s.Grade != nil {
		resp.Grade = &gradeResponse{
			Score:    s.Grade.Score,
			Feedback: s.Grade.Feedback,
			GradedAt: s.Grade.GradedAt,
		}
	}

	return resp
}

func toSubmissionResponses(submissions []*domain.Submission) []*submissionResponse {
	resp := make([]*submissionResponse, 0, len(submissions))
	for _, s := range submissions {
		resp = append(resp, toSubmissionResponse(s))
	}
	return resp
}
