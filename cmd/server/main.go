// Package main is the entry point for the Chronodemica election
// simulation server. It wires the SQLite storage, the simulation
// services and the HTTP API, starts the maintenance scheduler and
// performs a graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codingBeanie/Chronodemica/internal/config"
	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/modules/coalitions"
	coalitionhandlers "github.com/codingBeanie/Chronodemica/internal/modules/coalitions/handlers"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
	electionhandlers "github.com/codingBeanie/Chronodemica/internal/modules/election/handlers"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
	registryhandlers "github.com/codingBeanie/Chronodemica/internal/modules/registry/handlers"
	"github.com/codingBeanie/Chronodemica/internal/modules/statistics"
	statisticshandlers "github.com/codingBeanie/Chronodemica/internal/modules/statistics/handlers"
	"github.com/codingBeanie/Chronodemica/internal/modules/transfer"
	transferhandlers "github.com/codingBeanie/Chronodemica/internal/modules/transfer/handlers"
	"github.com/codingBeanie/Chronodemica/internal/scheduler"
	"github.com/codingBeanie/Chronodemica/internal/server"
	"github.com/codingBeanie/Chronodemica/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Chronodemica")

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "chronodemica",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	log.Info().Str("path", cfg.DatabasePath()).Msg("Database ready")

	// Repositories
	periodRepo := registry.NewPeriodRepository(db, log)
	popRepo := registry.NewPopRepository(db, log)
	partyRepo := registry.NewPartyRepository(db, log)
	popSnapRepo := registry.NewPopSnapshotRepository(db, log)
	partySnapRepo := registry.NewPartySnapshotRepository(db, log)
	voteRepo := election.NewVoteRepository(db, log)
	resultRepo := election.NewResultRepository(db, log)

	// Services
	electionService := election.NewService(
		db, voteRepo, resultRepo,
		periodRepo, popRepo, partyRepo, popSnapRepo, partySnapRepo,
		log,
	)
	coalitionService := coalitions.NewService(
		resultRepo, partyRepo, partySnapRepo,
		cfg.MaxCoalitionParties, log,
	)
	statisticsService := statistics.NewService(db, log)
	transferService := transfer.NewService(
		db, periodRepo, popRepo, partyRepo,
		popSnapRepo, partySnapRepo, voteRepo, resultRepo,
		log,
	)

	// Background maintenance: nightly WAL truncation and integrity check
	sched := scheduler.New(log)
	maintenanceJob := scheduler.NewMaintenanceJob(db, log)
	if err := sched.AddJob("0 0 3 * * *", maintenanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:    log,
		DB:     db,
		Config: cfg,
		Registry: registryhandlers.NewHandler(
			periodRepo, popRepo, partyRepo, popSnapRepo, partySnapRepo, log,
		),
		Election: electionhandlers.NewHandler(
			electionService, cfg.DefaultSeats, cfg.DefaultThresholdPct, log,
		),
		Coalitions:     coalitionhandlers.NewHandler(coalitionService, log),
		Statistics:     statisticshandlers.NewHandler(statisticsService, log),
		Transfer:       transferhandlers.NewHandler(transferService, log),
		Scheduler:      sched,
		MaintenanceJob: maintenanceJob,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}

	log.Info().Msg("Chronodemica stopped")
}
