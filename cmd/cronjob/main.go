package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"rentorder-backend/internal/config"
	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/jobs"
	"rentorder-backend/internal/logger"
	"rentorder-backend/internal/repository/postgres"
	"rentorder-backend/internal/scheduler"
	"rentorder-backend/internal/service"
	"rentorder-backend/internal/tax"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'generate-invoices', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rent Order Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	refs := postgres.NewRefSequence(db, cfg.Rent.RefPrefix, cfg.Rent.RefWidth)

	// Initialize Services
	orderService := service.NewOrderService(
		store.OrderRepository,
		store.InvoiceRepository,
		store.ProductRepository,
		refs,
		tax.NewCalculator(),
		cfg.FiscalPositions(),
		service.Defaults{
			DurationUnit:  domain.DurationUnit(cfg.Rent.DefaultDurationUnit),
			InvoicePeriod: cfg.Rent.DefaultInvoicePeriod,
		},
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, orderService, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "generate-invoices":
		jobRunner.GenerateDueInvoices()
	case "complete-orders":
		jobRunner.CompleteFinishedOrders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - generate-invoices\n")
		fmt.Printf("  - complete-orders\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
