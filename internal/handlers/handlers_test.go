package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/services"
)

type mockInterviewService struct {
	getByIDFn    func(ctx context.Context, id string) (*models.Interview, error)
	listFn       func(ctx context.Context, userID string) ([]models.Interview, error)
	latestFn     func(ctx context.Context, userID string) ([]models.Interview, error)
	publicFn     func(ctx context.Context, userID string) ([]models.Interview, error)
	scheduledFn  func(ctx context.Context, userID string) ([]models.Interview, error)
	incompleteFn func(ctx context.Context, userID string) ([]models.Interview, error)
	enterFn      func(ctx context.Context, userID, id string) (*services.EntryResult, error)
}

func emptyList(context.Context, string) ([]models.Interview, error) {
	return []models.Interview{}, nil
}

func orEmpty(fn func(context.Context, string) ([]models.Interview, error)) func(context.Context, string) ([]models.Interview, error) {
	if fn == nil {
		return emptyList
	}
	return fn
}

func (m *mockInterviewService) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	if m.getByIDFn == nil {
		return nil, nil
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockInterviewService) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	return orEmpty(m.listFn)(ctx, userID)
}

func (m *mockInterviewService) Latest(ctx context.Context, userID string) ([]models.Interview, error) {
	return orEmpty(m.latestFn)(ctx, userID)
}

func (m *mockInterviewService) PublicFeed(ctx context.Context, userID string) ([]models.Interview, error) {
	return orEmpty(m.publicFn)(ctx, userID)
}

func (m *mockInterviewService) Scheduled(ctx context.Context, userID string) ([]models.Interview, error) {
	return orEmpty(m.scheduledFn)(ctx, userID)
}

func (m *mockInterviewService) Incomplete(ctx context.Context, userID string) ([]models.Interview, error) {
	return orEmpty(m.incompleteFn)(ctx, userID)
}

func (m *mockInterviewService) Enter(ctx context.Context, userID, id string) (*services.EntryResult, error) {
	if m.enterFn == nil {
		return nil, services.ErrNotFound
	}
	return m.enterFn(ctx, userID, id)
}

type mockGenerator struct {
	generateFn func(ctx context.Context, userID string, req *models.GenerateInterviewRequest) (*models.Interview, error)
}

func (m *mockGenerator) Generate(ctx context.Context, userID string, req *models.GenerateInterviewRequest) (*models.Interview, error) {
	return m.generateFn(ctx, userID, req)
}

type mockFeedbackService struct {
	createFn func(ctx context.Context, userID string, req *models.CreateFeedbackRequest) (*models.Feedback, error)
	getFn    func(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

func (m *mockFeedbackService) Create(ctx context.Context, userID string, req *models.CreateFeedbackRequest) (*models.Feedback, error) {
	return m.createFn(ctx, userID, req)
}

func (m *mockFeedbackService) GetByInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, interviewID, userID)
}

// serve sends body to handler as the authenticated user "u1"
func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	req = req.WithContext(middleware.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}
