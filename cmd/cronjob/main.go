package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"memberhub-backend/internal/config"
	"memberhub-backend/internal/jobs"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository/postgres"
	"memberhub-backend/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-invitations', 'all')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MemberHub cronjob runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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
	retention := time.Duration(cfg.Registration.PurgeRetentionDays) * 24 * time.Hour
	runner := jobs.NewRunner(store.InvitationRepository, retention)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(runner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.New(runner)
	if err := cronScheduler.Register(cfg.Scheduler); err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

func runJobOnce(runner *jobs.Runner, jobName string) {
	ctx := context.Background()
	switch jobName {
	case "expire-invitations":
		runner.ExpireInvitations(ctx)
	case "reconcile-orphaned-codes":
		runner.ReconcileOrphanedCodes(ctx)
	case "purge-invitations":
		runner.PurgeExpiredInvitations(ctx)
	case "all":
		runner.ExpireInvitations(ctx)
		runner.ReconcileOrphanedCodes(ctx)
		runner.PurgeExpiredInvitations(ctx)
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-invitations\n")
		fmt.Printf("  - reconcile-orphaned-codes\n")
		fmt.Printf("  - purge-invitations\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
