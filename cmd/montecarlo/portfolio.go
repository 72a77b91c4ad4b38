package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alejandrodnm/montecarlo/internal/application/simulator"
	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// runPortfolio construye y simula la cartera pedida con -portfolio.
func (a *app) runPortfolio(ctx context.Context) error {
	allocs, err := parseAllocations(a.opts.portfolio)
	if err != nil {
		return err
	}

	h, err := a.loadHistory(ctx)
	if err != nil {
		return err
	}

	o, sim := a.opts, a.cfg.Simulation
	res, err := a.sim.RunPortfolio(ctx, simulator.PortfolioJob{
		Allocations:   allocs,
		TotalCapital:  override(o.isSet("capital"), o.capital, a.cfg.Portfolio.TotalCapital),
		History:       h.Records,
		MinRecords:    a.cfg.Portfolio.MinRecords,
		Horizon:       override(o.isSet("horizon"), o.horizon, sim.Horizon),
		NumPaths:      override(o.isSet("paths"), o.paths, sim.NumPaths),
		Seed:          override(o.isSet("seed"), o.seed, sim.DefaultSeed),
		UseAntithetic: override(o.isSet("antithetic"), o.antithetic, sim.Antithetic),
		Dt:            sim.Dt,
	})
	if err != nil {
		return err
	}
	return a.exportRuns([]domain.RunResult{res})
}

// parseAllocations interpreta "AAA:60,BBB:40" como tickers con peso en %.
// Un ticker sin peso reparte en partes iguales el resto hasta 100.
func parseAllocations(s string) ([]domain.Allocation, error) {
	var (
		allocs   []domain.Allocation
		unsized  []int
		assigned float64
	)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, weight, hasWeight := strings.Cut(part, ":")
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			return nil, fmt.Errorf("allocation %q has no ticker: %w", part, domain.ErrInvalidRequest)
		}

		alloc := domain.Allocation{Ticker: ticker}
		if hasWeight {
			w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
			if err != nil || w <= 0 {
				return nil, fmt.Errorf("allocation %q has invalid weight: %w", part, domain.ErrInvalidRequest)
			}
			alloc.WeightPct = w
			assigned += w
		} else {
			unsized = append(unsized, len(allocs))
		}
		allocs = append(allocs, alloc)
	}

	if len(allocs) == 0 {
		return nil, fmt.Errorf("empty portfolio: %w", domain.ErrInvalidRequest)
	}
	if len(unsized) > 0 {
		rest := 100 - assigned
		if rest <= 0 {
			return nil, fmt.Errorf("weights already sum %.2f%%, nothing left for %d tickers: %w",
				assigned, len(unsized), domain.ErrInvalidRequest)
		}
		for _, i := range unsized {
			allocs[i].WeightPct = rest / float64(len(unsized))
		}
	}
	return allocs, nil
}
