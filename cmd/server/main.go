package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"docportal/internal/auth"
	"docportal/internal/config"
	"docportal/internal/handler"
	"docportal/internal/httputil"
	"docportal/internal/middleware"
	"docportal/internal/repository/postgres"
	"docportal/internal/scheduler"
	"docportal/internal/service/notify"
	"docportal/internal/service/review"
	"docportal/internal/service/timeliness"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	catRepo := postgres.NewCategoryRepository(repoConfig)
	notifRepo := postgres.NewNotificationRepository(repoConfig)
	profileRepo := postgres.NewProfileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Notification read path: router → cache → emitter → dispatcher
	router, err := notify.NewRouter()
	if err != nil {
		log.Fatalf("Failed to load notification routing rules: %v", err)
	}
	cache := notify.NewCache(notifRepo, router, notify.CacheOptions{
		TTL:            cfg.NotificationCacheTTL,
		FetchLimit:     cfg.NotificationFetchLimit,
		ReconcileDelay: cfg.NotificationReconcileDelay,
	}, logger)
	emitter := notify.NewEmitter(notifRepo, cache, logger)
	dispatcher := notify.NewDispatcher(cache, 2, logger)

	// Realtime change feed from the store into the dispatcher
	listenerCtx, stopListener := context.WithCancel(ctx)
	listener := postgres.NewListener(pool, cfg.RealtimeChannel, dispatcher.Dispatch, logger)
	go func() {
		if err := listener.Run(listenerCtx); err != nil {
			logger.Error("realtime listener exited", "error", err)
		}
	}()

	// Core services
	workflow := review.NewWorkflow(docRepo, profileRepo, txManager, emitter, logger)
	reporter := timeliness.NewReporter(docRepo, catRepo, logger)

	// Deadline reminder cron
	reminders := scheduler.NewReminderScheduler(
		docRepo,
		catRepo,
		profileRepo,
		emitter,
		cfg.CronSpecDeadlineReminders,
		cfg.DeadlineReminderWindow,
		logger,
	)
	if err := reminders.Start(); err != nil {
		log.Fatalf("Failed to start deadline reminder scheduler: %v", err)
	}

	// Create handlers
	reviewHandler := handler.NewReviewHandler(workflow, logger)
	notificationHandler := handler.NewNotificationHandler(cache, logger)
	ratingsHandler := handler.NewRatingsHandler(reporter, profileRepo, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Document review routes
	mux.HandleFunc("GET /api/documents", reviewHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents/bulk-approve", reviewHandler.BulkApprove) // Must come before {id} routes
	mux.HandleFunc("POST /api/documents/{id}/approve", reviewHandler.Approve)
	mux.HandleFunc("POST /api/documents/{id}/reject", reviewHandler.Reject)

	// Notification routes
	mux.HandleFunc("GET /api/notifications", notificationHandler.List)
	mux.HandleFunc("POST /api/notifications/read-all", notificationHandler.MarkAllRead)
	mux.HandleFunc("GET /api/notifications/unread-count", notificationHandler.UnreadCount)

	// Timeliness rating routes
	mux.HandleFunc("GET /api/ratings", ratingsHandler.ForDepartment)
	mux.HandleFunc("GET /api/ratings/me", ratingsHandler.ForSelf)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	stopListener()
	reminders.Stop()
	dispatcher.Shutdown()
	cache.InvalidateAll()

	logger.Info("server stopped")
}
