package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"paydash/internal/analytics"
	"paydash/internal/dashboard"
	"paydash/internal/handler"
	"paydash/internal/middleware"
	"paydash/internal/repository/postgres"
	"paydash/pkg/cache"
	"paydash/pkg/config"
	"paydash/pkg/logger"
	"paydash/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("dashboard-service")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Dashboard Service", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Redis connected", nil)

	// Repositories
	txRepo := postgres.NewTransactionRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Aggregation engine and cached dashboard service
	engine := analytics.New(txRepo, userRepo, analytics.Options{
		SummarySpanDays: cfg.Analytics.SummarySpanDays,
		DailySpanDays:   cfg.Analytics.DailySpanDays,
	}, log)

	store := cache.NewRedisCacheWithClient(redisClient)
	val := validator.New()
	dashboardService := dashboard.NewService(engine, txRepo, store, val, cfg.Analytics.CacheTTL, log)

	// Handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	transactionHandler := handler.NewTransactionHandler(dashboardService, log)
	systemHandler := handler.NewSystemHandler(db, redisClient, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, log).Limit)
	}

	// Probes (never behind auth, and not request-logged)
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/ready", systemHandler.Ready).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if cfg.Auth.Enabled {
		api.Use(middleware.NewAuthMiddleware(cfg.Auth.JWTSecret).Authenticate)
	}
	// Logging sits inside auth so entries can carry the caller's identity.
	api.Use(middleware.NewLoggingMiddleware(log).Log)

	api.HandleFunc("/dashboard/stats", dashboardHandler.GetStats).Methods("GET")
	api.HandleFunc("/dashboard/stats/filtered", dashboardHandler.GetFilteredStats).Methods("GET")
	api.HandleFunc("/dashboard/analytics/daily", dashboardHandler.GetDailyAnalytics).Methods("GET")
	api.HandleFunc("/dashboard/analytics/hourly-traffic", dashboardHandler.GetHourlyTraffic).Methods("GET")
	api.HandleFunc("/dashboard/analytics/payment-methods", dashboardHandler.GetPaymentMethods).Methods("GET")
	api.HandleFunc("/transactions", transactionHandler.List).Methods("GET")

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", map[string]interface{}{"error": err.Error()})
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", nil)
}
