package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/services"
	"prepwise/interview/internal/utils"
)

type DashboardService interface {
	Dashboard(ctx context.Context, userID string) (*services.Dashboard, error)
	Analytics(ctx context.Context, userID string) (*services.Analytics, error)
}

type DashboardHandler struct {
	dashboard DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	d, err := h.dashboard.Dashboard(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load dashboard", zap.String("userId", userID), zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	a, err := h.dashboard.Analytics(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load analytics", zap.String("userId", userID), zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}
