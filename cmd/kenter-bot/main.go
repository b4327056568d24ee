package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/app"
	"github.com/lueurxax/kenter-news-bot/internal/platform/config"
	db "github.com/lueurxax/kenter-news-bot/internal/storage"
)

func main() {
	mode := flag.String("mode", "", "Service mode (scrape, scheduler, archive, keywords, http)")
	category := flag.String("category", "", "Category to scrape (scrape mode); empty follows the half-hour rotation")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	categories, err := config.LoadCategories(cfg.CategoriesFile, cfg.MaxItemsPerCategory)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load category catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	if err := database.SyncCategories(ctx, categories); err != nil {
		logger.Fatal().Err(err).Msg("failed to sync categories")
	}

	application := app.New(cfg, database, categories, &logger)

	// The HTTP mode serves in the foreground; every other mode keeps health and metrics up in the background.
	if *mode != "http" {
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				logger.Error().Err(err).Msg("health check server error")
			}
		}()
	}

	if err := runMode(ctx, application, *mode, *category); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, category string) error {
	switch mode {
	case "scrape":
		return application.RunScrape(ctx, category)
	case "scheduler":
		return application.RunScheduler(ctx)
	case "archive":
		return application.RunArchive(ctx)
	case "keywords":
		return application.RunKeywords(ctx)
	case "http":
		return application.RunHTTP(ctx)
	default:
		return fmt.Errorf("usage: %s --mode=[scrape|scheduler|archive|keywords|http] [--category=NAME]", os.Args[0])
	}
}
