package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepwise/interview/internal/auth"
	"prepwise/interview/internal/config"
	"prepwise/interview/internal/events"
	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/jobs"
	"prepwise/interview/internal/llm"
	_ "prepwise/interview/internal/llm/gemini"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/prompts"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/repositories/mongo"
	"prepwise/interview/internal/routers"
	"prepwise/interview/internal/services"
	"prepwise/interview/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type appHandlers struct {
	interview *handlers.InterviewHandler
	feedback  *handlers.FeedbackHandler
	dashboard *handlers.DashboardHandler
	auth      *handlers.AuthHandler
	health    *handlers.HealthHandler
}

func registerRoutes(router *chi.Mux, h appHandlers, verifier *auth.TokenManager) {
	routers.HealthRoutes(router, h.health)
	routers.LegacyRoutes(router, h.interview)
	routers.AuthRoutes(router, h.auth, verifier)
	routers.InterviewRoutes(router, h.interview, h.feedback, h.dashboard, verifier)
}

// openUserDB connects to postgres when the DSN names one and to a sqlite file
// otherwise, then migrates the users table
func openUserDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.UsesPostgres() {
		dialector = postgres.Open(cfg.DatabaseDSN)
	} else {
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to users database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users database: %w", err)
	}
	return db, nil
}

// newPublisher returns a Redis publisher, or a no-op one when Redis is not
// configured or unreachable
func newPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (events.Publisher, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, interview events disabled")
		return events.Nop{}, func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, interview events disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return events.Nop{}, func() {}
	}
	logger.Info("publishing interview events", zap.String("addr", cfg.RedisAddr))
	return events.NewRedisPublisher(rdb, logger), func() { _ = rdb.Close() }
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)
	return router
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := utils.NewLogger(os.Getenv("APP_ENV"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("mongoDB", cfg.MongoDBName),
		zap.Bool("postgresUsers", cfg.UsesPostgres()))

	ctx := context.Background()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongoClient.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure indexes", zap.Error(err))
	}
	if ok, err := mongoClient.SupportsTransactions(ctx); err != nil {
		logger.Warn("Failed to check mongo topology", zap.Error(err))
	} else if !ok {
		logger.Warn("MongoDB is not a replica set; expiry sweeps will fail until MONGO_URI points at one",
			zap.String("hint", "mongodb://localhost:27017/?replicaSet=rs0"))
	}
	interviewRepo, err := mongo.NewInterviewRepo(mongoClient)
	if err != nil {
		logger.Fatal("Failed to create interview repository", zap.Error(err))
	}
	feedbackRepo, err := mongo.NewFeedbackRepo(mongoClient)
	if err != nil {
		logger.Fatal("Failed to create feedback repository", zap.Error(err))
	}

	db, err := openUserDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize users database", zap.Error(err))
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	publisher, closePublisher := newPublisher(ctx, cfg, logger)
	defer closePublisher()

	interviewService := services.NewInterviewService(interviewRepo, feedbackRepo, publisher, logger, cfg.PublicFeedLimit)
	sweeper := services.NewSweeper(interviewRepo, publisher, logger)
	dashboardService := services.NewDashboardService(interviewService, sweeper)
	feedbackService := services.NewFeedbackService(interviewRepo, feedbackRepo, aiProvider, promptManager, publisher, logger)
	generationService := services.NewGenerationService(interviewRepo, aiProvider, promptManager, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(&repositories.UserRepository{DB: db}, tokens, logger)

	exporterJob := jobs.NewFeedbackExporterJob(feedbackRepo, &jobs.ExporterConfig{
		Schedule:      cfg.ExportSchedule,
		ExportDir:     cfg.ExportDir,
		ExportEnabled: cfg.ExportEnabled,
		Lookback:      cfg.ExportLookback,
	}, logger)
	if err := exporterJob.Start(); err != nil {
		logger.Error("Failed to start feedback exporter job", zap.Error(err))
	}

	router := newRouter(cfg)
	registerRoutes(router, appHandlers{
		interview: handlers.NewInterviewHandler(interviewService, generationService, logger),
		feedback:  handlers.NewFeedbackHandler(feedbackService, logger),
		dashboard: handlers.NewDashboardHandler(dashboardService, logger),
		auth:      handlers.NewAuthHandler(authService, logger),
		health:    handlers.NewHealthHandler(mongoClient, aiProvider, promptManager),
	}, tokens)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")
	exporterJob.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
