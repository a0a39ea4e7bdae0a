package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohada-ledger/internal/config"
	"github.com/ohada-ledger/internal/data/postgres"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/ohada-ledger/internal/logger"
	"github.com/ohada-ledger/internal/platform/persistence"
	"github.com/ohada-ledger/internal/seed"
)

func main() {
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig("ledger_seed")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	chartFile, err := seed.Load(cfg.Ledger.SeedFile)
	if err != nil {
		log.Error("Failed to load chart of accounts", "file", cfg.Ledger.SeedFile, "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	store := postgres.NewStore(log, postgresDB)
	seeder := seed.NewSeeder(ledger.NewDirectory(log, store), log)

	res, err := seeder.Run(appCtx, chartFile)
	if err != nil {
		log.Error("Seeding failed", "error", err,
			"classes_created", res.ClassesCreated,
			"accounts_created", res.AccountsCreated)
		postgresDB.Close()
		os.Exit(1)
	}

	log.Info("Seeding completed",
		"classes", len(chartFile.Classes),
		"accounts", len(chartFile.Accounts),
		"accounts_created", res.AccountsCreated)
}
