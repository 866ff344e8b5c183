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

	"github.com/inovaitive/revu/internal/api"
	"github.com/inovaitive/revu/internal/app"
	"github.com/inovaitive/revu/internal/platform/config"
	db "github.com/inovaitive/revu/internal/storage"
)

func main() {
	mode := flag.String("mode", "", "Service mode (api, worker, import, token)")
	file := flag.String("file", "", "CSV file to load (import mode)")
	org := flag.String("org", "", "Organization ID (import and token modes)")
	user := flag.String("user", "", "User ID the token is issued to (token mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	if *mode == "token" {
		if err := printToken(cfg, *user, *org); err != nil {
			logger.Fatal().Err(err).Msg("failed to issue token")
		}

		return
	}

	if *mode != "api" && *mode != "worker" && *mode != "import" {
		log.Fatalf("Usage: %s --mode=[api|worker|import|token]", os.Args[0])
	}

	if err := cfg.RequireDatabase(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.Database.MaxConnections,
		MinConns:          cfg.Database.MinConnections,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.Database.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	if err := runMode(ctx, application, *mode, *file, *org); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")

			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if appEnv == config.EnvLocal {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, file, org string) error {
	switch mode {
	case "api":
		return application.RunAPI(ctx)
	case "worker":
		return application.RunWorker(ctx)
	case "import":
		if file == "" || org == "" {
			return errors.New("import mode needs --file and --org")
		}

		return application.RunImport(ctx, file, org)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func printToken(cfg *config.Config, userID, orgID string) error {
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	token, err := api.IssueToken([]byte(cfg.JWTSecret), userID, orgID, cfg.JWTTokenTTL, time.Now())
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}
