package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"classroom_service/internal/auth"
	"classroom_service/internal/domain"
	"classroom_service/internal/errdefs"
	"classroom_service/internal/gate"
	"classroom_service/internal/server/httpapi"
	"classroom_service/internal/service"
)

type mockAssignmentService struct {
	mock.Mock
}

func (m *mockAssignmentService) CreateAssignment(ctx context.Context, assignment *domain.Assignment) (*domain.Assignment, error) {
	args := m.Called(ctx, assignment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *mockAssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *mockAssignmentService) UpdateAssignment(ctx context.Context, assignment *domain.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentService) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAssignmentService) ListAssignmentsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*domain.Assignment, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Assignment), args.Error(1)
}

func (m *mockAssignmentService) ListAssignmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Assignment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Assignment), args.Error(1)
}

type mockSubmissionService struct {
	mock.Mock
}

func (m *mockSubmissionService) CreateSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, assignmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) SubmitWork(ctx context.Context, id uuid.UUID, attachments []string) (*domain.Submission, error) {
	args := m.Called(ctx, id, attachments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) GradeSubmission(ctx context.Context, id uuid.UUID, input service.GradeInput) (*domain.Submission, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) GetSubmissionByPair(ctx context.Context, assignmentID, studentID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, assignmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*domain.Submission, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

func (m *mockSubmissionService) ListSubmissionsByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Submission, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

// staticAuthenticator resolves tokens from a fixed table, standing in for the
// session store.
type staticAuthenticator struct {
	principals map[string]*auth.Principal
}

func (a *staticAuthenticator) Authenticate(_ context.Context, credential string) (*auth.Principal, error) {
	principal, ok := a.principals[credential]
	if !ok {
		return nil, errdefs.ErrAuthentication
	}
	return principal, nil
}

type testEnv struct {
	router            chi.Router
	assignmentService *mockAssignmentService
	submissionService *mockSubmissionService
	teacherID         uuid.UUID
	studentID         uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		assignmentService: new(mockAssignmentService),
		submissionService: new(mockSubmissionService),
		teacherID:         uuid.New(),
		studentID:         uuid.New(),
	}

	authenticator := &staticAuthenticator{principals: map[string]*auth.Principal{
		"teacher-token": {UserID: env.teacherID, Role: string(domain.RoleTeacher)},
		"student-token": {UserID: env.studentID, Role: string(domain.RoleStudent)},
		"admin-token":   {UserID: uuid.New(), Role: string(domain.RoleAdmin)},
	}}

	handler := httpapi.NewHandler(env.assignmentService, env.submissionService)
	env.router = chi.NewRouter()
	handler.RegisterRoutes(env.router, gate.New("/sign-in", ""), authenticator)
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRedirectOnDenial(t *testing.T) {
	env := newTestEnv(t)
	submissionID := uuid.New()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"MissingCredential", http.MethodGet, "/submissions/" + submissionID.String(), ""},
		{"UnknownCredential", http.MethodGet, "/submissions/" + submissionID.String(), "stale-token"},
		{"StudentOnStaffRoute", http.MethodPost, "/assignments", "student-token"},
		{"TeacherOnStudentRoute", http.MethodPost, "/submissions/" + submissionID.String() + "/submit", "teacher-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.token, nil)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
		})
	}

	// Denials never reach the services.
	env.assignmentService.AssertNotCalled(t, "CreateAssignment", mock.Anything, mock.Anything)
	env.submissionService.AssertNotCalled(t, "GetSubmission", mock.Anything, mock.Anything)
}

func TestGetSubmissionHandler(t *testing.T) {
	env := newTestEnv(t)
	submittedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	submission := &domain.Submission{
		ID:           uuid.New(),
		AssignmentID: uuid.New(),
		StudentID:    env.studentID,
		Status:       domain.SubmissionStatusSubmitted,
		SubmittedAt:  &submittedAt,
		Attachments:  []string{"files/essay.pdf"},
	}

	env.submissionService.On("GetSubmission", mock.Anything, submission.ID).Return(submission, nil)

	rec := env.do(t, http.MethodGet, "/submissions/"+submission.ID.String(), "student-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, submission.ID.String(), resp.ID)
	assert.Equal(t, "submitted", resp.Status)
}

func TestGetSubmissionByPairHandler(t *testing.T) {
	env := newTestEnv(t)
	assignmentID := uuid.New()
	submission := &domain.Submission{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		StudentID:    env.studentID,
		Status:       domain.SubmissionStatusPending,
	}

	env.submissionService.On("GetSubmissionByPair", mock.Anything, assignmentID, env.studentID).
		Return(submission, nil)

	path := fmt.Sprintf("/assignments/%s/submissions/%s", assignmentID, env.studentID)
	rec := env.do(t, http.MethodGet, path, "student-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, submission.ID.String(), resp.ID)
}

func TestCreateSubmissionHandler(t *testing.T) {
	assignmentID := uuid.New()

	t.Run("Created", func(t *testing.T) {
		env := newTestEnv(t)
		submission := &domain.Submission{
			ID:           uuid.New(),
			AssignmentID: assignmentID,
			StudentID:    env.studentID,
			Status:       domain.SubmissionStatusPending,
		}
		env.submissionService.On("CreateSubmission", mock.Anything, assignmentID, env.studentID).Return(submission, nil)

		rec := env.do(t, http.MethodPost, "/submissions", "teacher-token", map[string]string{
			"assignment_id": assignmentID.String(),
			"student_id":    env.studentID.String(),
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.submissionService.On("CreateSubmission", mock.Anything, assignmentID, env.studentID).
			Return(nil, errdefs.ErrDuplicateSubmission)

		rec := env.do(t, http.MethodPost, "/submissions", "teacher-token", map[string]string{
			"assignment_id": assignmentID.String(),
			"student_id":    env.studentID.String(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("MalformedIDRejectedBeforeService", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/submissions", "teacher-token", map[string]string{
			"assignment_id": "not-a-uuid",
			"student_id":    env.studentID.String(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.submissionService.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmitWorkHandler(t *testing.T) {
	env := newTestEnv(t)
	submissionID := uuid.New()
	now := time.Now()
	env.submissionService.On("SubmitWork", mock.Anything, submissionID, []string{"files/a.pdf"}).
		Return(&domain.Submission{
			ID:          submissionID,
			StudentID:   env.studentID,
			Status:      domain.SubmissionStatusSubmitted,
			SubmittedAt: &now,
			Attachments: []string{"files/a.pdf"},
		}, nil)

	rec := env.do(t, http.MethodPost, "/submissions/"+submissionID.String()+"/submit", "student-token", map[string]interface{}{
		"attachments": []string{"files/a.pdf"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGradeSubmissionHandler(t *testing.T) {
	submissionID := uuid.New()

	grade := func(t *testing.T, env *testEnv, body map[string]interface{}) *httptest.ResponseRecorder {
		t.Helper()
		return env.do(t, http.MethodPost, "/submissions/"+submissionID.String()+"/grade", "teacher-token", body)
	}

	t.Run("Graded", func(t *testing.T) {
		env := newTestEnv(t)
		env.submissionService.On("GradeSubmission", mock.Anything, submissionID, mock.AnythingOfType("service.GradeInput")).
			Return(&domain.Submission{
				ID:     submissionID,
				Status: domain.SubmissionStatusCompleted,
				Grade:  &domain.Grade{Score: 85, GradedAt: time.Now()},
			}, nil)

		rec := grade(t, env, map[string]interface{}{"score": 85})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string `json:"status"`
			Grade  *struct {
				Score float64 `json:"score"`
			} `json:"grade"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)
		require.NotNil(t, resp.Grade)
		assert.Equal(t, 85.0, resp.Grade.Score)
	})

	t.Run("ScoreOutOfRangeRejectedBeforeService", func(t *testing.T) {
		env := newTestEnv(t)

		rec := grade(t, env, map[string]interface{}{"score": 101})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.submissionService.AssertNotCalled(t, "GradeSubmission", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotSubmittedIsConflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.submissionService.On("GradeSubmission", mock.Anything, submissionID, mock.Anything).
			Return(nil, errdefs.ErrNotSubmitted)

		rec := grade(t, env, map[string]interface{}{"score": 50})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("PermissionDeniedIsForbidden", func(t *testing.T) {
		env := newTestEnv(t)
		env.submissionService.On("GradeSubmission", mock.Anything, submissionID, mock.Anything).
			Return(nil, errdefs.ErrPermissionDenied)

		rec := grade(t, env, map[string]interface{}{"score": 50})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("UnknownErrorHidesDetail", func(t *testing.T) {
		env := newTestEnv(t)
		env.submissionService.On("GradeSubmission", mock.Anything, submissionID, mock.Anything).
			Return(nil, errors.New("pq: connection reset"))

		rec := grade(t, env, map[string]interface{}{"score": 50})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp["error"])
	})
}

func TestAssignmentHandlers(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		env := newTestEnv(t)
		created := &domain.Assignment{
			ID:        uuid.New(),
			TeacherID: env.teacherID,
			StudentID: env.studentID,
			Title:     "essay",
		}
		env.assignmentService.On("CreateAssignment", mock.Anything, mock.AnythingOfType("*domain.Assignment")).
			Return(created, nil)

		rec := env.do(t, http.MethodPost, "/assignments", "teacher-token", map[string]string{
			"teacher_id": env.teacherID.String(),
			"student_id": env.studentID.String(),
			"title":      "essay",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("CreateMissingTitle", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/assignments", "teacher-token", map[string]string{
			"teacher_id": env.teacherID.String(),
			"student_id": env.studentID.String(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.assignmentService.AssertNotCalled(t, "CreateAssignment", mock.Anything, mock.Anything)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.assignmentService.On("GetAssignment", mock.Anything, id).Return(nil, errdefs.ErrNotFound)

		rec := env.do(t, http.MethodGet, "/assignments/"+id.String(), "admin-token", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("GetMalformedID", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet, "/assignments/not-a-uuid", "admin-token", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.assignmentService.On("DeleteAssignment", mock.Anything, id).Return(nil)

		rec := env.do(t, http.MethodDelete, "/assignments/"+id.String(), "teacher-token", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("ListByStudent", func(t *testing.T) {
		env := newTestEnv(t)
		env.assignmentService.On("ListAssignmentsByStudent", mock.Anything, env.studentID).
			Return([]*domain.Assignment{{ID: uuid.New(), Title: "essay"}}, nil)

		rec := env.do(t, http.MethodGet, fmt.Sprintf("/students/%s/assignments", env.studentID), "student-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Assignments []json.RawMessage `json:"assignments"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Assignments, 1)
	})
}
