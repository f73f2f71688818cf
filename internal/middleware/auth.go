package middleware

import (
	"context"
	"net/http"

	"prepwise/interview/internal/auth"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

const userIDKey contextKey = "user_id"

// TokenVerifier validates the bearer token on a request
type TokenVerifier interface {
	VerifyToken(r *http.Request) (jwt.MapClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the request context
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.VerifyToken(r)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}

			userID, err := auth.GetUserIDFromClaims(claims)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
