package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prepwise/interview/internal/auth"
	"prepwise/interview/internal/config"
	"prepwise/interview/internal/events"
	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/models"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func TestOpenUserDBSQLite(t *testing.T) {
	cfg := &config.Config{DatabaseDSN: fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())}

	db, err := openUserDB(cfg)
	if err != nil {
		t.Fatalf("openUserDB returned error: %v", err)
	}
	if !db.Migrator().HasTable(&models.User{}) {
		t.Fatal("expected users table to be migrated")
	}
}

func TestNewPublisherWithoutRedis(t *testing.T) {
	pub, closeFn := newPublisher(context.Background(), &config.Config{}, zap.NewNop())
	defer closeFn()
	if _, ok := pub.(events.Nop); !ok {
		t.Fatalf("expected no-op publisher, got %T", pub)
	}
}

func TestNewPublisherWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	pub, closeFn := newPublisher(context.Background(), &config.Config{RedisAddr: mr.Addr()}, zap.NewNop())
	defer closeFn()
	if _, ok := pub.(*events.RedisPublisher); !ok {
		t.Fatalf("expected redis publisher, got %T", pub)
	}
}

func TestNewPublisherUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	pub, closeFn := newPublisher(context.Background(), &config.Config{RedisAddr: addr}, zap.NewNop())
	defer closeFn()
	if _, ok := pub.(events.Nop); !ok {
		t.Fatalf("expected fallback to no-op publisher, got %T", pub)
	}
}

func TestRouterServesHealthAndCORS(t *testing.T) {
	logger := zap.NewNop()
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:3000"}}
	router := newRouter(cfg)
	registerRoutes(router, appHandlers{
		interview: handlers.NewInterviewHandler(nil, nil, logger),
		feedback:  handlers.NewFeedbackHandler(nil, logger),
		dashboard: handlers.NewDashboardHandler(nil, logger),
		auth:      handlers.NewAuthHandler(nil, logger),
		health:    handlers.NewHealthHandler(nil, nil, nil),
	}, auth.NewTokenManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected CORS header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated dashboard, got %d", rec.Code)
	}
}
