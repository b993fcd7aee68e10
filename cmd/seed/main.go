package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/app"
	"github.com/dafibh/giderler/giderler-backend/internal/config"
	"github.com/dafibh/giderler/giderler-backend/internal/repository"
	"github.com/dafibh/giderler/giderler-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	force := flag.Bool("force", false, "write the sample expenses even if the store is not empty")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	// Samples carry no receipts
	cfg.ObjectStore = config.ObjectStoreNone

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer stores.Close()

	expenseService := service.NewExpenseService(repository.NewExpenseRepository(stores.Records, nil))

	created, err := expenseService.SeedSamples(ctx, *force)
	if err != nil {
		log.Error().Err(err).Int("created", len(created)).Msg("Seeding failed")
		stores.Close()
		os.Exit(1)
	}

	log.Info().Int("created", len(created)).Bool("force", *force).Msg("Seed finished")
}
