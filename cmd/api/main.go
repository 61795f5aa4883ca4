package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"phasewin/adapters/agedata"
	"phasewin/adapters/postgres"
	"phasewin/adapters/rng"
	"phasewin/app"
	"phasewin/internal"
	"phasewin/internal/api"
	"phasewin/internal/config"
	"phasewin/ports"
)

func main() {
	_ = godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		repo, db, err := postgres.Open(context.Background(), cfg.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		runs = repo
		logger.Info("run persistence enabled")
	}

	svc := app.NewEvaluationService(rng.New(), runs, cfg.Sim.Workers)
	source := agedata.NewFileSource(cfg.Data.AgesFile)
	server := api.NewServer(svc, source, cfg, logger)

	logger.Info("listening on :%s (ages from %s)", cfg.Server.Port, cfg.Data.AgesFile)
	if err := http.ListenAndServe(":"+cfg.Server.Port, server.Router()); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
