package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
)

// LegacyRoutes keeps the unauthenticated latest-interview lookup
func LegacyRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Get("/api/interviews", interviewHandler.LatestByUserHandler)
}

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler, verifier middleware.TokenVerifier) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.With(middleware.RequireAuth(verifier)).Get("/me", authHandler.MeHandler)
	})
}

func InterviewRoutes(
	router *chi.Mux,
	interviewHandler *handlers.InterviewHandler,
	feedbackHandler *handlers.FeedbackHandler,
	dashboardHandler *handlers.DashboardHandler,
	verifier middleware.TokenVerifier,
) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier))

		r.Route("/interviews", func(r chi.Router) {
			r.With(middleware.ValidateRequest[*models.GenerateInterviewRequest]()).Post("/", interviewHandler.GenerateHandler)
			r.Get("/", interviewHandler.ListMineHandler)
			r.Get("/public", interviewHandler.PublicHandler)
			r.Get("/scheduled", interviewHandler.ScheduledHandler)
			r.Get("/incomplete", interviewHandler.IncompleteHandler)
			r.Get("/{id}", interviewHandler.GetHandler)
			r.Post("/{id}/enter", interviewHandler.EnterHandler)
			r.Get("/{id}/feedback", feedbackHandler.GetHandler)
		})

		r.With(middleware.ValidateRequest[*models.CreateFeedbackRequest]()).Post("/feedback", feedbackHandler.CreateHandler)
		r.Get("/dashboard", dashboardHandler.DashboardHandler)
		r.Get("/analytics", dashboardHandler.AnalyticsHandler)
	})
}

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
}
