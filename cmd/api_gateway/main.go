package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohada-ledger/internal/api_gateway"
	"github.com/ohada-ledger/internal/api_gateway/service"
	"github.com/ohada-ledger/internal/config"
	"github.com/ohada-ledger/internal/data/mongo"
	"github.com/ohada-ledger/internal/data/postgres"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/ohada-ledger/internal/logger"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
	"github.com/ohada-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Submissions are queued for the journal processor
	submissionProducer, err := producers.NewSubmissionProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize submission Kafka producer", "error", err)
		os.Exit(1)
	}

	store := postgres.NewStore(log, postgresDB)
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())

	journal := ledger.NewJournal(log, store, nil)
	directory := ledger.NewDirectory(log, store)

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Accounts:    directory,
		Balances:    ledger.NewBalanceCalculator(store),
		Journal:     journal,
		Reports:     ledger.NewReports(store, cfg.Ledger.PostedOnlyReports),
		Submissions: service.NewSubmissionService(log, journal, submissionProducer),
		Archive:     service.NewArchiveService(log, archiveRepo),
		Probes: map[string]api_gateway.Probe{
			"postgres": postgresDB.Ping,
			"mongodb":  mongoDB.Ping,
		},
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the stores go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = submissionProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
