package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/services"
	"prepwise/interview/internal/utils"
)

type InterviewService interface {
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByUser(ctx context.Context, userID string) ([]models.Interview, error)
	Latest(ctx context.Context, userID string) ([]models.Interview, error)
	PublicFeed(ctx context.Context, userID string) ([]models.Interview, error)
	Scheduled(ctx context.Context, userID string) ([]models.Interview, error)
	Incomplete(ctx context.Context, userID string) ([]models.Interview, error)
	Enter(ctx context.Context, userID, id string) (*services.EntryResult, error)
}

type InterviewGenerator interface {
	Generate(ctx context.Context, userID string, req *models.GenerateInterviewRequest) (*models.Interview, error)
}

type InterviewHandler struct {
	interviews InterviewService
	generator  InterviewGenerator
	logger     *zap.Logger
}

func NewInterviewHandler(interviews InterviewService, generator InterviewGenerator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, generator: generator, logger: logger}
}

// LatestByUserHandler serves the unauthenticated lookup used by the voice
// agent: a list holding the user's most recent interview, if any
func (h *InterviewHandler) LatestByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	list, err := h.interviews.Latest(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load latest interview", zap.String("userId", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load interviews"})
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *InterviewHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenerateInterviewRequest](r)
	userID, _ := middleware.UserIDFromContext(r.Context())

	iv, err := h.generator.Generate(r.Context(), userID, req)
	switch {
	case errors.Is(err, services.ErrScheduleInPast):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "validation_error",
			Message: "Request validation failed",
			Details: []models.ValidationErrorDetail{{Field: "scheduledFor", Reason: "must not be in the past"}},
		})
	case errors.Is(err, services.ErrGeneration):
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "ai_error",
			Message: "Failed to generate interview questions",
		})
	case err != nil:
		h.logger.Error("failed to create interview", zap.String("userId", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to create interview",
		})
	default:
		utils.JSON(w, http.StatusCreated, iv)
	}
}

func (h *InterviewHandler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.interviews.ListByUser)
}

func (h *InterviewHandler) PublicHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.interviews.PublicFeed)
}

func (h *InterviewHandler) ScheduledHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.interviews.Scheduled)
}

func (h *InterviewHandler) IncompleteHandler(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.interviews.Incomplete)
}

func (h *InterviewHandler) list(w http.ResponseWriter, r *http.Request, load func(context.Context, string) ([]models.Interview, error)) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	list, err := load(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list interviews", zap.String("userId", userID), zap.String("path", r.URL.Path), zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	iv, err := h.interviews.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load interview", zap.String("interviewId", id), zap.Error(err))
		internalError(w)
		return
	}
	if iv == nil {
		notFound(w, "Interview not found")
		return
	}
	utils.JSON(w, http.StatusOK, iv)
}

// EnterHandler applies the start window rules before the client opens the
// interview session
func (h *InterviewHandler) EnterHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, _ := middleware.UserIDFromContext(r.Context())

	res, err := h.interviews.Enter(r.Context(), userID, id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		notFound(w, "Interview not found")
	case errors.Is(err, services.ErrTooEarly):
		utils.JSON(w, http.StatusForbidden, models.ErrorResponse{
			Code:    "too-early",
			Message: "This interview has not started yet",
		})
	case errors.Is(err, services.ErrExpired):
		utils.JSON(w, http.StatusGone, models.ErrorResponse{
			Code:    "expired",
			Message: "The start window for this interview has passed",
		})
	case err != nil:
		h.logger.Error("failed to enter interview", zap.String("interviewId", id), zap.String("userId", userID), zap.Error(err))
		internalError(w)
	default:
		utils.JSON(w, http.StatusOK, models.EntryResponse{Interview: res.Interview, FeedbackID: res.FeedbackID})
	}
}

func notFound(w http.ResponseWriter, message string) {
	utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: message})
}

func internalError(w http.ResponseWriter) {
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "internal_error",
		Message: "Something went wrong",
	})
}
