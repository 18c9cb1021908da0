package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sebuszqo/FinanceCategories/internal/auth"
	database "github.com/sebuszqo/FinanceCategories/internal/db"
	"github.com/sebuszqo/FinanceCategories/internal/finance/application"
	"github.com/sebuszqo/FinanceCategories/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceCategories/internal/finance/interfaces"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Message string `json:"message"`
}

type Config struct {
	Addr              string
	JWTSecret         string
	LogLevel          logrus.Level
	ReportingCurrency string
	ExchangeRates     map[string]decimal.Decimal
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start).String(),
		}).Info("Request completed")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router          *http.ServeMux
	categoryHandler *interfaces.CategoryHandler
	jwtManager      auth.JWTManagerInterface
	health          func(ctx context.Context) map[string]string
}

func NewServer(categoryHandler *interfaces.CategoryHandler, jwtManager auth.JWTManagerInterface, health func(ctx context.Context) map[string]string) *Server {
	return &Server{
		categoryHandler: categoryHandler,
		jwtManager:      jwtManager,
		health:          health,
		router:          http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

// checkConfiguration loads .env when present and reads the service settings from the environment.
func checkConfiguration() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file loaded, continuing with system environment variables")
	}

	cfg := &Config{
		Addr:              os.Getenv("HTTP_ADDR"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ReportingCurrency: os.Getenv("REPORTING_CURRENCY"),
		LogLevel:          logrus.InfoLevel,
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("no JWT_SECRET Provided")
	}
	if cfg.ReportingCurrency == "" {
		cfg.ReportingCurrency = application.DefaultReportingCurrency
	}
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		level, err := logrus.ParseLevel(strings.ToLower(levelStr))
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	rates, err := application.ParseExchangeRates(os.Getenv("EXCHANGE_RATES"))
	if err != nil {
		return nil, err
	}
	cfg.ExchangeRates = rates
	return cfg, nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, stats)
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	s.categoryHandler.RegisterRoutes(protectedRoutes, auth.AccessTokenMiddleware(s.jwtManager))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func configureLogger(log *logrus.Logger) {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func main() {
	log := logrus.StandardLogger()
	configureLogger(log)

	cfg, err := checkConfiguration()
	if err != nil {
		log.WithError(err).Fatal("Missing configuration, update to start server")
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize database")
	}
	defer dbService.Close()

	if err := dbService.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("Could not apply database schema")
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("Could not create JWT manager")
	}

	converter := application.NewStaticRateConverter(cfg.ReportingCurrency, cfg.ExchangeRates)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	categoryService := application.NewCategoryService(categoryRepo, converter)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, log, respondJSON, respondError)

	server := NewServer(categoryHandler, jwtManager, dbService.Health)
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           loggingMiddleware(log, server.router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":               cfg.Addr,
		"reporting_currency": converter.ReportingCurrency(),
	}).Info("Server starting")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server failed to start")
	}
}
