// Package portfolio construye carteras correlacionadas a partir de histórico:
// estima mu/sigma por activo, arma la matriz de correlación sobre una ventana
// común y la factoriza con Cholesky para mezclar shocks independientes.
package portfolio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// MinRecords es el mínimo de registros históricos por ticker para correlacionar.
const MinRecords = 30

type options struct {
	minRecords int
}

// Option ajusta el builder.
type Option func(*options)

// WithMinRecords sube el mínimo de registros por ticker. Valores por debajo de
// MinRecords se ignoran.
func WithMinRecords(n int) Option {
	return func(o *options) {
		o.minRecords = max(n, MinRecords)
	}
}

// Build convierte asignaciones (ticker, peso %) más el histórico por ticker en
// un PortfolioConfig:
//  1. cada ticker necesita >= MinRecords registros, todos con cierre positivo;
//     se calculan sus log-returns y el largo mínimo L entre todos
//  2. cada serie se recorta a sus L returns más recientes (alineación por cola)
//  3. mu/sigma = media y desviación muestral (n-1); shares = capital·peso/100 / último cierre
//  4. correlación de Pearson por pares sobre las series alineadas
//  5. Cholesky de la matriz; si falla no se devuelve config parcial
func Build(allocs []domain.Allocation, totalCapital float64, history map[string][]domain.StockRecord, opts ...Option) (domain.PortfolioConfig, error) {
	o := options{minRecords: MinRecords}
	for _, opt := range opts {
		opt(&o)
	}

	if len(allocs) == 0 {
		return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: no tickers selected: %w", domain.ErrInvalidRequest)
	}
	if !(totalCapital > 0) || math.IsInf(totalCapital, 1) {
		return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: total capital must be positive: %w", domain.ErrInvalidRequest)
	}

	returns := make([][]float64, len(allocs))
	minLen := math.MaxInt
	seen := make(map[string]bool, len(allocs))

	for i, a := range allocs {
		if seen[a.Ticker] {
			return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: duplicate ticker %s: %w", a.Ticker, domain.ErrInvalidRequest)
		}
		seen[a.Ticker] = true

		if !(a.WeightPct > 0) {
			return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: ticker %s weight must be positive: %w", a.Ticker, domain.ErrInvalidRequest)
		}
		records, ok := history[a.Ticker]
		if !ok {
			return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: ticker %s not found in loaded data: %w", a.Ticker, domain.ErrUnknownTicker)
		}
		if len(records) < o.minRecords {
			return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: ticker %s has %d records, need %d: %w",
				a.Ticker, len(records), o.minRecords, domain.ErrInsufficientData)
		}

		closes := domain.Closes(records)
		for j, c := range closes {
			if !(c > 0) || math.IsInf(c, 1) {
				return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: ticker %s close %v at %s is not a positive finite price: %w",
					a.Ticker, c, records[j].Date.Format("2006-01-02"), domain.ErrInsufficientData)
			}
		}
		returns[i] = domain.LogReturns(closes)
		minLen = min(minLen, len(returns[i]))
	}

	if minLen < 2 {
		return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: aligned history has %d returns: %w", minLen, domain.ErrInsufficientData)
	}

	assets := make([]domain.PortfolioAsset, len(allocs))
	aligned := make([][]float64, len(allocs))
	for i, a := range allocs {
		aligned[i] = returns[i][len(returns[i])-minLen:]

		records := history[a.Ticker]
		lastPrice := records[len(records)-1].Close

		mu, sigma := stat.MeanStdDev(aligned[i], nil)
		allocated := totalCapital * (a.WeightPct / 100)

		assets[i] = domain.PortfolioAsset{
			Ticker:    a.Ticker,
			Shares:    allocated / lastPrice,
			Mu:        mu,
			Sigma:     sigma,
			LastPrice: lastPrice,
		}
	}

	l, err := CholeskyLower(CorrelationMatrix(aligned))
	if err != nil {
		return domain.PortfolioConfig{}, fmt.Errorf("portfolio.Build: %w", err)
	}

	return domain.PortfolioConfig{
		Assets:              assets,
		CorrelationCholesky: l,
		InitValue:           totalCapital,
	}, nil
}
