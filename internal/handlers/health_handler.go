package handlers

import (
	"context"
	"net/http"
	"time"

	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger is satisfied by the mongo client
type Pinger interface {
	Ping(ctx context.Context) error
}

// TemplateLister reports the loaded prompt templates
type TemplateLister interface {
	GetTemplates() []string
}

type HealthHandler struct {
	store     Pinger
	provider  llm.Provider
	templates TemplateLister
	timeout   time.Duration
}

func NewHealthHandler(store Pinger, provider llm.Provider, templates TemplateLister) *HealthHandler {
	return &HealthHandler{store: store, provider: provider, templates: templates, timeout: 2 * time.Second}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true
	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: "failed", Message: message}
		allChecksPass = false
	}

	if handler.store == nil {
		fail("store", "Interview store not initialized")
	} else {
		ctx, cancel := context.WithTimeout(request.Context(), handler.timeout)
		err := handler.store.Ping(ctx)
		cancel()
		if err != nil {
			fail("store", err.Error())
		} else {
			checks["store"] = ReadinessCheck{Status: "ok"}
		}
	}

	if handler.provider == nil {
		fail("provider", "AI provider not initialized")
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok"}
	}

	if handler.templates == nil || len(handler.templates.GetTemplates()) == 0 {
		fail("prompt_manager", "No prompt templates loaded")
	} else {
		checks["prompt_manager"] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{Service: "interview", Checks: checks}
	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
