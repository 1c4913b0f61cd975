package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/cache"
	"github.com/fraudsight/transaction-service/internal/config"
	"github.com/fraudsight/transaction-service/internal/handler"
	"github.com/fraudsight/transaction-service/internal/integrations/watchlist"
	"github.com/fraudsight/transaction-service/internal/jobs"
	"github.com/fraudsight/transaction-service/internal/middleware"
	"github.com/fraudsight/transaction-service/internal/repository"
	"github.com/fraudsight/transaction-service/internal/service"
	"github.com/fraudsight/transaction-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize cache. The cache is best-effort, so an unreachable redis
	// downgrades the service rather than stopping it.
	redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	defer redisStore.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisStore.Ping(pingCtx); err != nil {
		logger.Warnf("Redis unreachable, running without cache hits: %v", err)
	}
	cancel()

	// Initialize layers
	repo := repository.NewRepository(db)
	coordinator := cache.NewCoordinator(redisStore, logger)
	svc := service.NewService(repo.Transactions(), repo.Users(), coordinator, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Schedule the high-risk sweep
	watchlistClient := watchlist.NewClient(cfg, logger)
	mailer := email.NewSender(cfg, logger)
	sweep := jobs.NewSweep(repo.Transactions(), watchlistClient, mailer, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddJob(cfg.SweepSchedule, sweep); err != nil {
		logger.Fatalf("Failed to schedule high-risk sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	// Public routes
	r.HandleFunc("/api/health", h.Health).Methods("GET")
	r.HandleFunc("/api/users", h.Register).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/transactions/search", h.Search).Methods("GET")
	authRouter.HandleFunc("/transactions/high-risk", h.HighRisk).Methods("GET")
	authRouter.HandleFunc("/transactions", h.Search).Methods("GET")
	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.UpdateTransaction).Methods("PUT")
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.DeleteTransaction).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Shut down on SIGINT/SIGTERM, draining in-flight requests
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
