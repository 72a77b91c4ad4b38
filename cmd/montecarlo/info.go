package main

import (
	"context"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// runInfo imprime el resumen histórico de -info.
func (a *app) runInfo(ctx context.Context) error {
	info, err := a.tickerInfo(ctx, a.opts.info)
	if err != nil {
		return err
	}
	a.console.PrintTickerInfo(info)
	return nil
}

// runTickers lista los tickers del archivo de datos.
func (a *app) runTickers(ctx context.Context) error {
	h, err := a.loadHistory(ctx)
	if err != nil {
		return err
	}
	a.console.PrintTickers(h.Tickers)
	return nil
}

// runHistory imprime las últimas corridas guardadas.
func (a *app) runHistory(ctx context.Context) error {
	runs, err := a.sim.History(ctx, a.opts.history)
	if err != nil {
		return err
	}
	a.console.PrintHistory(runs)
	return nil
}

func (a *app) tickerInfo(ctx context.Context, ticker string) (domain.TickerInfo, error) {
	h, err := a.loadHistory(ctx)
	if err != nil {
		return domain.TickerInfo{}, err
	}
	return domain.DescribeTicker(ticker, h.Records[ticker])
}

// loadHistory lee el CSV una sola vez por ejecución.
func (a *app) loadHistory(ctx context.Context) (domain.History, error) {
	if a.loaded != nil {
		return *a.loaded, nil
	}
	h, err := a.history.LoadHistory(ctx)
	if err != nil {
		return domain.History{}, err
	}
	a.loaded = &h
	return h, nil
}
