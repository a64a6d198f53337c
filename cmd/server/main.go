package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "memberhub-backend/internal/api/http"
	"memberhub-backend/internal/config"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository/postgres"
	"memberhub-backend/internal/security"
	"memberhub-backend/internal/service"
	"memberhub-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MemberHub backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AuthExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.GateExpiryMins)*time.Minute,
	)

	if cfg.Storage.Type != "" && cfg.Storage.Type != "local" {
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}
	files, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)

	sender, err := service.NewSender(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	emailSvc := service.NewEmailService(
		sender,
		cfg.Registration.FrontendURL,
		cfg.Registration.InviteTTLDays,
		cfg.Registration.VerificationTTLMins,
	)

	verificationTTL := time.Duration(cfg.Registration.VerificationTTLMins) * time.Minute
	inviteTTL := time.Duration(cfg.Registration.InviteTTLDays) * 24 * time.Hour

	authSvc := service.NewAuthService(
		store.UserRepository,
		emailSvc,
		tokenManager,
		cfg.Registration.FrontendURL,
		verificationTTL,
	)
	invitationSvc := service.NewInvitationService(
		store.InvitationRepository,
		store.UserRepository,
		emailSvc,
		tokenManager,
		cfg.Registration.FrontendURL,
		inviteTTL,
		cfg.Registration.PromoCode,
	)
	userSvc := service.NewUserService(
		store.UserRepository,
		store.InvitationRepository,
		emailSvc,
		files,
		cfg.Registration.FrontendURL,
		cfg.Registration.PromoCode,
		verificationTTL,
	)
	verificationSvc := service.NewVerificationService(
		store.UserRepository,
		emailSvc,
		cfg.Registration.FrontendURL,
		cfg.Registration.AdminEmails,
		cfg.RateLimit.DailyCap,
		time.Duration(cfg.RateLimit.CooldownMins)*time.Minute,
	)
	adminSvc := service.NewAdminService(store.UserRepository, emailSvc)
	dashboardSvc := service.NewDashboardService(store.UserRepository, store.StatsRepository, cfg.RateLimit.DailyCap)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Auth:          authSvc,
		Users:         userSvc,
		Invitations:   invitationSvc,
		Verification:  verificationSvc,
		Admin:         adminSvc,
		Dashboard:     dashboardSvc,
		Files:         files,
		Tokens:        tokenManager,
		SecureCookies: cfg.Server.Host != "localhost" && cfg.Server.Host != "127.0.0.1",
	})

	server := httpapi.NewServer(cfg.GetServerAddress(), router)

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
