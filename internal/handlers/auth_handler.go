package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"prepwise/interview/internal/auth"
	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.UserProfile, error)
}

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *zap.Logger
}

func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	resp, err := h.auth.Register(r.Context(), req)
	if errors.Is(err, repositories.ErrEmailTaken) {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{Code: "email_taken", Message: "email taken"})
		return
	}
	if err != nil {
		h.logger.Error("registration failed", zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	resp, err := h.auth.Login(r.Context(), req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "invalid_credentials", Message: err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	profile, err := h.auth.Me(r.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		notFound(w, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load profile", zap.String("userId", userID), zap.Error(err))
		internalError(w)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}
