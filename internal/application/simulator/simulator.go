// Package simulator orquesta las corridas Monte Carlo: reparte paths entre
// workers, reduce el ensemble a estadísticas, persiste el registro y lo reporta.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/portfolio"
	"github.com/alejandrodnm/montecarlo/internal/ports"
)

// Config contiene la configuración del simulador.
type Config struct {
	Workers          int           // goroutines por corrida (0 = NumCPU)
	ProgressInterval time.Duration // cada cuánto se loguea el avance (0 = 1s)
	BatchConcurrency int           // corridas simultáneas en RunBatch (0 = 2)
}

// PortfolioJob describe una corrida de cartera desde las asignaciones del usuario.
type PortfolioJob struct {
	Allocations   []domain.Allocation
	TotalCapital  float64
	History       map[string][]domain.StockRecord
	MinRecords    int // sólo sube portfolio.MinRecords
	Horizon       int
	NumPaths      int
	Seed          uint64
	UseAntithetic bool
	Dt            float64
}

// RunOption ajusta el registro de una corrida.
type RunOption func(*domain.RunRecord)

// WithTickers etiqueta la corrida con los tickers de origen.
func WithTickers(tickers ...string) RunOption {
	return func(r *domain.RunRecord) {
		r.Tickers = tickers
	}
}

// Simulator conecta los orquestadores con storage y reporter.
type Simulator struct {
	cfg      Config
	storage  ports.RunStorage
	reporter ports.Reporter
	now      func() time.Time
}

// New crea un Simulator con las dependencias inyectadas. storage y reporter
// pueden ser nil.
func New(cfg Config, storage ports.RunStorage, reporter ports.Reporter) *Simulator {
	return &Simulator{
		cfg:      cfg,
		storage:  storage,
		reporter: reporter,
		now:      time.Now,
	}
}

// RunSingle simula un activo, persiste la corrida y la reporta.
func (s *Simulator) RunSingle(ctx context.Context, req domain.SimulationRequest, opts ...RunOption) (domain.RunResult, error) {
	result, err := s.execSingle(ctx, req, opts...)
	if err != nil {
		return domain.RunResult{}, err
	}
	s.report(ctx, result)
	return result, nil
}

// RunPortfolio construye la cartera desde el histórico, la simula, persiste la
// corrida y la reporta.
func (s *Simulator) RunPortfolio(ctx context.Context, job PortfolioJob) (domain.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunResult{}, err
	}

	var opts []portfolio.Option
	if job.MinRecords > 0 {
		opts = append(opts, portfolio.WithMinRecords(job.MinRecords))
	}
	cfg, err := portfolio.Build(job.Allocations, job.TotalCapital, job.History, opts...)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulator.RunPortfolio: %w", err)
	}

	if s.reporter != nil {
		if err := s.reporter.ReportPortfolio(ctx, cfg); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}

	req := domain.PortfolioRequest{
		Config:        cfg,
		Horizon:       job.Horizon,
		NumPaths:      job.NumPaths,
		Seed:          job.Seed,
		UseAntithetic: job.UseAntithetic,
		Dt:            job.Dt,
	}

	start := s.now()
	ensemble, err := simulatePortfolio(req, s.pool())
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulator.RunPortfolio: %w", err)
	}
	result, err := s.finish(ctx, domain.RunPortfolio, start, req.Seed, req.UseAntithetic, ensemble, WithTickers(cfg.Tickers()...))
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulator.RunPortfolio: %w", err)
	}
	s.report(ctx, result)
	return result, nil
}

// RunBatch corre varios escenarios de un activo en paralelo (acotado por
// BatchConcurrency). Los resultados salen en el orden de reqs y se reportan
// al final, en ese mismo orden. El primer error cancela los pendientes.
func (s *Simulator) RunBatch(ctx context.Context, reqs []domain.SimulationRequest) ([]domain.RunResult, error) {
	limit := s.cfg.BatchConcurrency
	if limit <= 0 {
		limit = 2
	}

	results := make([]domain.RunResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.execSingle(gctx, req)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulator.RunBatch: %w", err)
	}

	for _, res := range results {
		s.report(ctx, res)
	}
	slog.Info("batch complete", "scenarios", len(reqs))
	return results, nil
}

// History devuelve las últimas corridas persistidas.
func (s *Simulator) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.storage == nil {
		return nil, nil
	}
	runs, err := s.storage.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("simulator.History: %w", err)
	}
	return runs, nil
}

func (s *Simulator) execSingle(ctx context.Context, req domain.SimulationRequest, opts ...RunOption) (domain.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunResult{}, err
	}

	start := s.now()
	ensemble, err := simulateEnsemble(req, s.pool())
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulator.RunSingle: %w", err)
	}
	result, err := s.finish(ctx, domain.RunSingle, start, req.Seed, req.UseAntithetic, ensemble, opts...)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("simulator.RunSingle: %w", err)
	}
	return result, nil
}

// finish calcula estadísticas, arma el registro y lo persiste si hay storage.
// Un error de storage se loguea pero no invalida la corrida.
func (s *Simulator) finish(
	ctx context.Context,
	kind domain.RunKind,
	start time.Time,
	seed uint64,
	antithetic bool,
	ensemble domain.PathEnsemble,
	opts ...RunOption,
) (domain.RunResult, error) {
	stats, err := ensemble.Summarize()
	if err != nil {
		return domain.RunResult{}, err
	}

	record := domain.RunRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		StartedAt:  start,
		Duration:   s.now().Sub(start),
		Seed:       seed,
		Antithetic: antithetic,
		Stats:      stats,
	}
	for _, opt := range opts {
		opt(&record)
	}

	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, record); err != nil {
			slog.Warn("storage error", "run_id", record.ID, "err", err)
		}
	}

	slog.Info("simulation complete",
		"run_id", record.ID,
		"kind", record.Kind,
		"model", stats.ModelLabel,
		"paths", stats.PathCount,
		"mean", fmt.Sprintf("%.4f", stats.Mean),
		"var95", fmt.Sprintf("%.4f", stats.VaR95),
		"duration", record.Duration.Round(time.Millisecond),
	)
	return domain.RunResult{Record: record, Ensemble: ensemble}, nil
}

func (s *Simulator) report(ctx context.Context, result domain.RunResult) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.ReportRun(ctx, result); err != nil {
		slog.Warn("reporter error", "err", err)
	}
}

func (s *Simulator) pool() poolConfig {
	return poolConfig{workers: s.cfg.Workers, progressInterval: s.cfg.ProgressInterval}
}
