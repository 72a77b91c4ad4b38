package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/montecarlo/internal/adapters/notify"
	"github.com/alejandrodnm/montecarlo/internal/adapters/scenario"
	"github.com/alejandrodnm/montecarlo/internal/application/simulator"
	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// runSingle arma un request desde flags + config y corre un activo.
func (a *app) runSingle(ctx context.Context) error {
	req, err := a.buildRequest(ctx)
	if err != nil {
		return err
	}

	if a.opts.saveScenario != "" {
		f := scenario.FromRequest(req)
		f.Ticker = a.opts.ticker
		if err := scenario.Save(a.opts.saveScenario, f); err != nil {
			return err
		}
		slog.Info("scenario saved", "path", a.opts.saveScenario)
	}

	var runOpts []simulator.RunOption
	if a.opts.ticker != "" {
		runOpts = append(runOpts, simulator.WithTickers(a.opts.ticker))
	}
	res, err := a.sim.RunSingle(ctx, req, runOpts...)
	if err != nil {
		return err
	}
	return a.exportRuns([]domain.RunResult{res})
}

// runScenarios carga los archivos de escenario y los corre como batch.
func (a *app) runScenarios(ctx context.Context) error {
	files, err := scenario.LoadAll(a.opts.scenarios)
	if err != nil {
		return err
	}

	reqs := make([]domain.SimulationRequest, len(files))
	for i, f := range files {
		var returns []float64
		if f.Ticker != "" && f.ModelType == domain.LabelBootstrap {
			info, err := a.tickerInfo(ctx, f.Ticker)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", a.opts.scenarios[i], err)
			}
			returns = info.LogReturns
		}
		reqs[i], err = f.ToRequest(returns)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", a.opts.scenarios[i], err)
		}
	}

	results, err := a.sim.RunBatch(ctx, reqs)
	if err != nil {
		return err
	}
	return a.exportRuns(results)
}

// buildRequest combina defaults de config, flags y, si hay -ticker, el histórico.
func (a *app) buildRequest(ctx context.Context) (domain.SimulationRequest, error) {
	o, sim := a.opts, a.cfg.Simulation
	req := domain.SimulationRequest{
		InitialPrice:  o.price,
		Horizon:       override(o.isSet("horizon"), o.horizon, sim.Horizon),
		NumPaths:      override(o.isSet("paths"), o.paths, sim.NumPaths),
		Seed:          override(o.isSet("seed"), o.seed, sim.DefaultSeed),
		UseAntithetic: override(o.isSet("antithetic"), o.antithetic, sim.Antithetic),
		Dt:            sim.Dt,
	}

	var info domain.TickerInfo
	if a.opts.ticker != "" {
		var err error
		info, err = a.tickerInfo(ctx, a.opts.ticker)
		if err != nil {
			return domain.SimulationRequest{}, err
		}
		if !o.isSet("price") {
			req.InitialPrice = info.LastClose
		}
	}

	switch strings.ToLower(a.opts.model) {
	case "gbm":
		m := domain.GBM{Mu: a.opts.mu, Sigma: a.opts.sigma}
		if a.opts.estimate {
			if a.opts.ticker == "" {
				return domain.SimulationRequest{}, fmt.Errorf("-estimate needs -ticker: %w", domain.ErrInvalidRequest)
			}
			mu, sigma, err := domain.EstimateParameters(info.LogReturns)
			if err != nil {
				return domain.SimulationRequest{}, err
			}
			m = domain.GBM{Mu: mu, Sigma: sigma}
			slog.Info("parameters estimated", "ticker", a.opts.ticker, "mu", mu, "sigma", sigma)
		}
		req.Model = m
	case "bootstrap":
		req.Model = domain.Bootstrap{Returns: info.LogReturns}
	default:
		return domain.SimulationRequest{}, fmt.Errorf("model %q not available from flags, use -scenario: %w",
			a.opts.model, domain.ErrInvalidRequest)
	}
	return req, nil
}

// exportRuns escribe el reporte de cada corrida si se pidió -export. Con varias
// corridas agrega el índice al nombre: summary.csv → summary_1.csv, summary_2.csv…
func (a *app) exportRuns(results []domain.RunResult) error {
	if a.opts.export == "" {
		return nil
	}
	for i, res := range results {
		path := a.opts.export
		if len(results) > 1 {
			ext := filepath.Ext(path)
			path = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), i+1, ext)
		}
		if err := notify.ExportSummary(path, notify.NewSummaryReport(res.Record, a.cfg.Report.Decimals)); err != nil {
			return err
		}
		slog.Info("summary exported", "path", path, "run_id", res.Record.ID)
	}
	return nil
}
