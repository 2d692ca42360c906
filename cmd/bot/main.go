package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/autohof/settlement-bot/internal/api"
	"github.com/autohof/settlement-bot/internal/auditlog"
	"github.com/autohof/settlement-bot/internal/banking"
	"github.com/autohof/settlement-bot/internal/config"
	"github.com/autohof/settlement-bot/internal/logger"
	"github.com/autohof/settlement-bot/internal/platform/persistence"
	"github.com/autohof/settlement-bot/internal/scheduler"
	"github.com/autohof/settlement-bot/internal/sheets"
	"github.com/autohof/settlement-bot/internal/tasks"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("bot")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)
	if !cfg.Application.Production {
		log.Warn("Running in dry-run mode, no transfers or ledger writes will be made")
	}

	// The audit sink writes to PostgreSQL only in production; in dry-run mode
	// audit entries go to the structured log alone.
	var postgresDB *persistence.PostgresDB
	var sink auditlog.Sink
	if cfg.Application.Production {
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		sink = auditlog.NewPostgresSink(log, postgresDB)
	}
	audit := auditlog.NewRecorder(log, cfg.Application.Name, sink)

	// Initialize the banking client and the spreadsheet ledger store
	bankingClient := banking.NewClient(log, &cfg.Banking)

	ledger, err := sheets.NewStore(appCtx, log, cfg.Spreadsheet)
	if err != nil {
		log.Error("Failed to initialize spreadsheet store", "error", err)
		os.Exit(1)
	}

	// Initialize the update applier worker pool
	applier, err := tasks.NewUpdateApplier(log, ledger, cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize update applier", "error", err)
		os.Exit(1)
	}

	// Initialize the scheduled tasks
	repayment := tasks.NewRepaymentTask(tasks.RepaymentTaskParams{
		Source:       bankingClient,
		Store:        ledger,
		Applier:      applier,
		Audit:        audit,
		Logger:       log,
		Account:      cfg.Banking.PaymentAccount,
		SourceOffset: cfg.Banking.SourceUTCOffset,
		DryRun:       !cfg.Application.Production,
	})
	payroll := tasks.NewPayrollTask(tasks.PayrollTaskParams{
		Store:       ledger,
		Transferer:  bankingClient,
		Audit:       audit,
		Logger:      log,
		Application: cfg.Application.Name,
		FromAccount: cfg.Banking.PaymentAccount,
		Pace:        cfg.Payroll.Pace,
		DryRun:      !cfg.Application.Production,
	})

	// Register tasks with the scheduler
	tracker := tasks.NewRunTracker(cfg.Server.RunHistory)
	sched := scheduler.NewScheduler(log, tracker)
	if err = sched.Register(cfg.Schedule.Repayment, repayment); err != nil {
		log.Error("Failed to register repayment task", "error", err)
		os.Exit(1)
	}
	if err = sched.Register(cfg.Schedule.Payroll, payroll); err != nil {
		log.Error("Failed to register payroll task", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, tracker)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Outside production every task fires once at startup so a dry run can be
	// inspected without waiting for the next cron tick.
	sched.Start(!cfg.Application.Production)

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop the scheduler and wait for in-flight runs
	sched.Stop(cfg.Server.ShutdownTimeout)

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the worker pool
	applier.Shutdown()

	// Shutdown postgres connection pool
	if postgresDB != nil {
		postgresDB.Close()
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Bot shutdown completed with errors")
	} else {
		log.Info("Bot shutdown completed successfully")
	}
}
