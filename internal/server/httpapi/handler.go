package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"classroom_service/internal/auth"
	"classroom_service/internal/domain"
	"classroom_service/internal/errdefs"
	"classroom_service/internal/gate"
	"classroom_service/internal/middleware"
	"classroom_service/internal/service"
	"classroom_service/pkg/logging"
)

type Handler struct {
	assignmentService service.AssignmentServiceInterface
	submissionService service.SubmissionServiceInterface
	validate          *validator.Validate
}

func NewHandler(
	assignmentService service.AssignmentServiceInterface,
	submissionService service.SubmissionServiceInterface,
) *Handler {
	return &Handler{
		assignmentService: assignmentService,
		submissionService: submissionService,
		validate:          validator.New(),
	}
}

// RegisterRoutes wires the role-gated routes. The gate runs before any
// handler; the required role sets declared here are the caller-supplied
// policy, the gate itself knows nothing about which roles fit which route.
func (h *Handler) RegisterRoutes(r chi.Router, g *gate.Gate, authenticator auth.Authenticator) {
	anyRole := middleware.RequireRoles(g, authenticator,
		string(domain.RoleStudent), string(domain.RoleTeacher), string(domain.RoleAdmin))
	staffOnly := middleware.RequireRoles(g, authenticator,
		string(domain.RoleTeacher), string(domain.RoleAdmin))
	studentOnly := middleware.RequireRoles(g, authenticator,
		string(domain.RoleStudent))

	r.Route("/assignments", func(r chi.Router) {
		r.With(staffOnly).Post("/", h.CreateAssignment)
		r.With(anyRole).Get("/{id}", h.GetAssignment)
		r.With(staffOnly).Put("/{id}", h.UpdateAssignment)
		r.With(staffOnly).Delete("/{id}", h.DeleteAssignment)
		r.With(anyRole).Get("/{id}/submissions", h.ListSubmissionsByAssignment)
		r.With(anyRole).Get("/{id}/submissions/{studentID}", h.GetSubmissionByPair)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.With(anyRole).Post("/", h.CreateSubmission)
		r.With(anyRole).Get("/{id}", h.GetSubmission)
		r.With(studentOnly).Post("/{id}/submit", h.SubmitWork)
		r.With(staffOnly).Post("/{id}/grade", h.GradeSubmission)
	})

	r.Route("/teachers", func(r chi.Router) {
		r.With(staffOnly).Get("/{id}/assignments", h.ListAssignmentsByTeacher)
	})

	r.Route("/students", func(r chi.Router) {
		r.With(anyRole).Get("/{id}/assignments", h.ListAssignmentsByStudent)
		r.With(anyRole).Get("/{id}/submissions", h.ListSubmissionsByStudent)
	})
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	teacherID, _ := uuid.Parse(req.TeacherID)
	studentID, _ := uuid.Parse(req.StudentID)

	assignment, err := h.assignmentService.CreateAssignment(r.Context(), &domain.Assignment{
		TeacherID:   teacherID,
		StudentID:   studentID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.writeError(w, r, "create assignment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssignmentResponse(assignment))
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, toAssignmentResponse(assignment))
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignment := &domain.Assignment{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := h.assignmentService.UpdateAssignment(r.Context(), assignment); err != nil {
		h.writeError(w, r, "update assignment", err)
		return
	}

	updated, err := h.assignmentService.GetAssignment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, toAssignmentResponse(updated))
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(r.Context(), id); err != nil {
		h.writeError(w, r, "delete assignment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAssignmentsByTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListAssignmentsByTeacher(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list assignments by teacher", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": toAssignmentResponses(assignments)})
}

func (h *Handler) ListAssignmentsByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListAssignmentsByStudent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list assignments by student", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": toAssignmentResponses(assignments)})
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignmentID, _ := uuid.Parse(req.AssignmentID)
	studentID, _ := uuid.Parse(req.StudentID)

	submission, err := h.submissionService.CreateSubmission(r.Context(), assignmentID, studentID)
	if err != nil {
		h.writeError(w, r, "create submission", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubmissionResponse(submission))
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get submission", err)
		return
	}

	writeJSON(w, http.StatusOK, toSubmissionResponse(submission))
}

func (h *Handler) GetSubmissionByPair(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid student id")
		return
	}

	submission, err := h.submissionService.GetSubmissionByPair(r.Context(), assignmentID, studentID)
	if err != nil {
		h.writeError(w, r, "get submission by pair", err)
		return
	}

	writeJSON(w, http.StatusOK, toSubmissionResponse(submission))
}

func (h *Handler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req submitWorkRequest
	if !h.decode(w, r, &req) {
		return
	}

	submission, err := h.submissionService.SubmitWork(r.Context(), id, req.Attachments)
	if err != nil {
		h.writeError(w, r, "submit work", err)
		return
	}

	writeJSON(w, http.StatusOK, toSubmissionResponse(submission))
}

func (h *Handler) GradeSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req gradeSubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}

	submission, err := h.submissionService.GradeSubmission(r.Context(), id, service.GradeInput{
		Score:            req.Score,
		Feedback:         req.Feedback,
		Now:              time.Now(),
		AllowUnsubmitted: req.AllowUnsubmitted,
	})
	if err != nil {
		h.writeError(w, r, "grade submission", err)
		return
	}

	writeJSON(w, http.StatusOK, toSubmissionResponse(submission))
}

func (h *Handler) ListSubmissionsByAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListSubmissionsByAssignment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list submissions by assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": toSubmissionResponses(submissions)})
}

func (h *Handler) ListSubmissionsByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListSubmissionsByStudent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "list submissions by student", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": toSubmissionResponses(submissions)})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", errdefs.ErrValidation, err))
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	statusCode := mapError(err)

	if logger, ok := logging.GetFromContext(r.Context()); ok {
		logger.Error(r.Context(), "request failed",
			zap.String("operation", op),
			zap.Int("status", statusCode),
			zap.Error(err),
		)
	}

	writeErrorJSON(w, statusCode, userMessage(err, statusCode))
}
