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
	"github.com/sirupsen/logrus"

	"bankcards/internal/auth"
	"bankcards/internal/config"
	"bankcards/internal/handler"
	"bankcards/internal/middleware"
	"bankcards/internal/repository/postgres"
	"bankcards/internal/service"
	"bankcards/internal/utils"
	"bankcards/pkg/db"
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
	database, err := db.NewPostgres(cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Initialize layers
	codec, err := utils.NewCryptoCodec([]byte(cfg.EncryptionKey))
	if err != nil {
		logger.Fatalf("Failed to initialize crypto codec: %v", err)
	}
	tokens := auth.NewTokenProvider([]byte(cfg.JWTSecret), time.Duration(cfg.JWTLifetimeMins)*time.Minute)

	userRepo := postgres.NewUserRepository(database)
	cardRepo := postgres.NewCardRepository(database)

	authSvc := service.NewAuthService(database, userRepo, tokens, logger)
	userSvc := service.NewUserService(database, userRepo, cardRepo, logger)
	cardSvc := service.NewCardService(database, database, userRepo, cardRepo, codec, logger,
		db.BeginTx, db.CommitTx, db.RollbackTx)

	if err := userSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatalf("Failed to ensure admin account: %v", err)
	}

	authHandler := handler.NewAuthHandler(authSvc, logger)
	cardHandler := handler.NewCardHandler(cardSvc, logger)
	adminCardHandler := handler.NewAdminCardHandler(cardSvc, logger)
	adminUserHandler := handler.NewAdminUserHandler(userSvc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Authenticate(tokens, userRepo, database, logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Authenticated routes
	cards := api.PathPrefix("/cards").Subrouter()
	cards.Use(mux.MiddlewareFunc(middleware.RequireAuth))
	cards.HandleFunc("", cardHandler.List).Methods("GET")
	cards.HandleFunc("/transfer", cardHandler.Transfer).Methods("POST")
	cards.HandleFunc("/balance/{id}", cardHandler.Balance).Methods("GET")
	cards.HandleFunc("/{id}", cardHandler.Get).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(middleware.RequireAdmin))
	admin.HandleFunc("/cards", adminCardHandler.Create).Methods("POST")
	admin.HandleFunc("/cards", adminCardHandler.List).Methods("GET")
	admin.HandleFunc("/cards/{id}/activate", adminCardHandler.Activate).Methods("PATCH")
	admin.HandleFunc("/cards/{id}/block", adminCardHandler.Block).Methods("PATCH")
	admin.HandleFunc("/cards/{id}", adminCardHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/users", adminUserHandler.Create).Methods("POST")
	admin.HandleFunc("/users", adminUserHandler.List).Methods("GET")
	admin.HandleFunc("/users/{id}", adminUserHandler.Get).Methods("GET")
	admin.HandleFunc("/users/{id}", adminUserHandler.Delete).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
