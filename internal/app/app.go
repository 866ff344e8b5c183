// Package app wires dependencies and runs the service modes:
//
//   - API mode: REST API plus health and metrics, optionally with the worker
//   - Worker mode: background analysis of un-analyzed feedback
//   - Import mode: one-shot CSV import for an organization
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/inovaitive/revu/internal/api"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/core/llm"
	"github.com/inovaitive/revu/internal/ingest/csvimport"
	"github.com/inovaitive/revu/internal/notify"
	"github.com/inovaitive/revu/internal/platform/config"
	"github.com/inovaitive/revu/internal/platform/observability"
	"github.com/inovaitive/revu/internal/platform/worker"
	"github.com/inovaitive/revu/internal/process/analysis"
	"github.com/inovaitive/revu/internal/process/nlp"
	db "github.com/inovaitive/revu/internal/storage"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// RunAPI serves the REST API with health and metrics endpoints. The
// analysis worker runs alongside when enabled.
func (a *App) RunAPI(ctx context.Context) error {
	if err := a.cfg.RequireJWTSecret(); err != nil {
		return fmt.Errorf("api mode: %w", err)
	}

	svc, err := a.newAnalysisService()
	if err != nil {
		return err
	}

	importer := csvimport.New(a.database, a.logger)
	handler := api.NewServer(svc, a.database, importer, []byte(a.cfg.JWTSecret), a.logger).Handler()
	srv := observability.NewServerWithAPI(a.database, a.cfg.HTTPPort, handler, a.logger)

	a.logger.Info().Msg("Starting API mode")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("api server: %w", err)
		}

		return nil
	})

	if a.cfg.Worker.Enabled {
		g.Go(func() error {
			return a.newWorker(svc).Run(gctx)
		})
	}

	return g.Wait()
}

// RunWorker runs only the background analysis worker plus health endpoints.
func (a *App) RunWorker(ctx context.Context) error {
	svc, err := a.newAnalysisService()
	if err != nil {
		return err
	}

	a.logger.Info().Msg("Starting worker mode")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := observability.NewServer(a.database, a.cfg.HTTPPort, a.logger).Start(gctx); err != nil {
			return fmt.Errorf("health server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		return a.newWorker(svc).Run(gctx)
	})

	return g.Wait()
}

// RunImport loads a CSV file into orgID and prints the result summary.
func (a *App) RunImport(ctx context.Context, path, orgID string) error {
	if _, err := uuid.Parse(orgID); err != nil {
		return fmt.Errorf("%w: organization id %q", coreerrors.ErrInvalidID, orgID)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	res, err := csvimport.New(a.database, a.logger).Import(ctx, orgID, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	for _, rowErr := range res.Errors {
		a.logger.Warn().Int("row", rowErr.Row).Str("error", rowErr.Error).Msg("row skipped")
	}

	a.logger.Info().
		Str("file", path).
		Int("total", res.Total).
		Int("imported", res.SuccessCount).
		Int("errors", res.ErrorCount).
		Msg("import complete")

	return nil
}

func (a *App) newAnalysisService() (*analysis.Service, error) {
	provider, err := llm.SelectProvider(a.cfg.LLM, a.cfg.IsLocal(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	if !provider.IsAvailable() {
		a.logger.Warn().Str("provider", string(provider.Name())).Msg("AI provider has no credentials, every analysis will use the fallback judgment")
	}

	judge := llm.NewJudge(provider, llm.JudgeConfigFrom(a.cfg.LLM), a.logger)
	extractor := nlp.New(a.cfg.Analysis.KnownCompetitors, a.logger)

	svc := analysis.New(
		analysis.Config{BatchConcurrency: a.cfg.Analysis.BatchConcurrency},
		a.database, a.database, extractor, judge, a.logger,
	)

	if a.cfg.Alerts.Enabled() {
		alerter, err := notify.NewTelegramAlerter(a.cfg.Alerts, a.logger)
		if err != nil {
			a.logger.Error().Err(err).Msg("telegram alerts disabled")
		} else {
			svc.SetAlerter(alerter)
		}
	}

	return svc, nil
}

func (a *App) newWorker(svc *analysis.Service) *worker.AnalysisWorker {
	return worker.NewAnalysisWorker(a.cfg.Worker, svc, a.database, db.AnalysisWorkerLockID, a.logger)
}
