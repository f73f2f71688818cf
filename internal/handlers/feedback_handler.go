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

type FeedbackService interface {
	Create(ctx context.Context, userID string, req *models.CreateFeedbackRequest) (*models.Feedback, error)
	GetByInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type FeedbackHandler struct {
	feedback FeedbackService
	logger   *zap.Logger
}

func NewFeedbackHandler(feedback FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

func (h *FeedbackHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateFeedbackRequest](r)
	userID, _ := middleware.UserIDFromContext(r.Context())

	fb, err := h.feedback.Create(r.Context(), userID, req)
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrFeedbackNotFound):
		utils.JSON(w, http.StatusNotFound, models.CreateFeedbackResponse{Success: false})
	case errors.Is(err, services.ErrGeneration):
		// already logged by the service
		utils.JSON(w, http.StatusBadGateway, models.CreateFeedbackResponse{Success: false})
	case err != nil:
		h.logger.Error("failed to save feedback", zap.String("interviewId", req.InterviewID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.CreateFeedbackResponse{Success: false})
	default:
		utils.JSON(w, http.StatusCreated, models.CreateFeedbackResponse{Success: true, FeedbackID: fb.ID})
	}
}

// GetHandler returns the caller's feedback for an interview
func (h *FeedbackHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	userID, _ := middleware.UserIDFromContext(r.Context())

	fb, err := h.feedback.GetByInterview(r.Context(), interviewID, userID)
	if err != nil {
		h.logger.Error("failed to load feedback", zap.String("interviewId", interviewID), zap.Error(err))
		internalError(w)
		return
	}
	if fb == nil {
		notFound(w, "Feedback not found")
		return
	}
	utils.JSON(w, http.StatusOK, fb)
}
