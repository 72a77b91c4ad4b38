package portfolio_test

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/portfolio"
)

// randomWalk genera n cierres con log-returns normales deterministas por semilla.
func randomWalk(ticker string, n int, start float64, seed uint64) []domain.StockRecord {
	r := rand.New(rand.NewPCG(seed, 7))
	records := make([]domain.StockRecord, n)
	price := start
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range records {
		if i > 0 {
			price *= math.Exp(0.0005 + 0.01*r.NormFloat64())
		}
		records[i] = domain.StockRecord{
			Ticker: ticker,
			Date:   base.AddDate(0, 0, i),
			Open:   price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return records
}

func TestBuild_SingleAsset(t *testing.T) {
	history := map[string][]domain.StockRecord{"AAA": randomWalk("AAA", 40, 50, 1)}

	cfg, err := portfolio.Build([]domain.Allocation{{Ticker: "AAA", WeightPct: 100}}, 10000, history)
	require.NoError(t, err)
	require.Len(t, cfg.Assets, 1)

	r, c := cfg.CorrelationCholesky.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 1.0, cfg.CorrelationCholesky.At(0, 0))
	assert.Equal(t, 10000.0, cfg.InitValue)

	a := cfg.Assets[0]
	last := history["AAA"][39].Close
	assert.Equal(t, last, a.LastPrice)
	assert.InDelta(t, 10000/last, a.Shares, 1e-9)

	wantMu, wantSigma, err := domain.EstimateParameters(domain.LogReturns(domain.Closes(history["AAA"])))
	require.NoError(t, err)
	assert.InDelta(t, wantMu, a.Mu, 1e-15)
	assert.InDelta(t, wantSigma, a.Sigma, 1e-15)
}

func TestBuild_SharesFollowWeights(t *testing.T) {
	history := map[string][]domain.StockRecord{
		"AAA": randomWalk("AAA", 60, 50, 1),
		"BBB": randomWalk("BBB", 60, 200, 2),
	}
	cfg, err := portfolio.Build([]domain.Allocation{
		{Ticker: "AAA", WeightPct: 60},
		{Ticker: "BBB", WeightPct: 40},
	}, 10000, history)
	require.NoError(t, err)

	assert.InDelta(t, 6000, cfg.Assets[0].Shares*cfg.Assets[0].LastPrice, 1e-9)
	assert.InDelta(t, 4000, cfg.Assets[1].Shares*cfg.Assets[1].LastPrice, 1e-9)
	assert.InDelta(t, 10000, cfg.InitialValue(), 1e-9)
	assert.Equal(t, []string{"AAA", "BBB"}, cfg.Tickers())

	// L·Lᵗ reconstruye una matriz de correlación válida
	var llt mat.Dense
	llt.Mul(cfg.CorrelationCholesky, cfg.CorrelationCholesky.T())
	assert.InDelta(t, 1, llt.At(0, 0), 1e-12)
	assert.InDelta(t, 1, llt.At(1, 1), 1e-12)
	assert.InDelta(t, llt.At(0, 1), llt.At(1, 0), 1e-12)
	assert.Less(t, math.Abs(llt.At(0, 1)), 1.0)
}

func TestBuild_TailAlignment(t *testing.T) {
	long := randomWalk("LONG", 80, 50, 3)
	// SHORT replica exactamente los últimos 40 cierres de LONG: con alineación
	// por cola las series son idénticas y la correlación es 1.
	short := make([]domain.StockRecord, 40)
	copy(short, long[40:])
	history := map[string][]domain.StockRecord{"LONG": long, "SHORT": short}

	_, err := portfolio.Build([]domain.Allocation{
		{Ticker: "LONG", WeightPct: 50},
		{Ticker: "SHORT", WeightPct: 50},
	}, 1000, history)
	assert.ErrorIs(t, err, domain.ErrNotPositiveDefinite)
}

// scaled copia los registros con todos los precios multiplicados por k: los
// log-returns son los mismos salvo redondeo.
func scaled(ticker string, src []domain.StockRecord, k float64) []domain.StockRecord {
	out := make([]domain.StockRecord, len(src))
	for i, r := range src {
		out[i] = r
		out[i].Ticker = ticker
		out[i].Open *= k
		out[i].High *= k
		out[i].Low *= k
		out[i].Close *= k
	}
	return out
}

func TestBuild_DuplicateSeriesNotPositiveDefinite(t *testing.T) {
	allocs := []domain.Allocation{
		{Ticker: "AAA", WeightPct: 50},
		{Ticker: "BBB", WeightPct: 50},
	}
	for seed := uint64(1); seed <= 200; seed++ {
		a := randomWalk("AAA", 40, 50, seed)
		for _, k := range []float64{1, 3, 0.37} {
			history := map[string][]domain.StockRecord{"AAA": a, "BBB": scaled("BBB", a, k)}

			cfg, err := portfolio.Build(allocs, 1000, history)
			require.ErrorIs(t, err, domain.ErrNotPositiveDefinite, "seed %d, k %v", seed, k)
			assert.Empty(t, cfg.Assets)
		}
	}
}

func TestBuild_LinearCombinationNotPositiveDefinite(t *testing.T) {
	a := randomWalk("AAA", 40, 50, 11)
	b := randomWalk("BBB", 40, 80, 12)
	// log(C) = log(A) + log(B): los returns de CCC son la suma exacta de los otros dos
	c := make([]domain.StockRecord, len(a))
	for i := range c {
		c[i] = a[i]
		c[i].Ticker = "CCC"
		c[i].Close = a[i].Close * b[i].Close
	}
	history := map[string][]domain.StockRecord{"AAA": a, "BBB": b, "CCC": c}

	_, err := portfolio.Build([]domain.Allocation{
		{Ticker: "AAA", WeightPct: 30},
		{Ticker: "BBB", WeightPct: 30},
		{Ticker: "CCC", WeightPct: 40},
	}, 1000, history)
	assert.ErrorIs(t, err, domain.ErrNotPositiveDefinite)
}

func TestBuild_NonPositiveClose(t *testing.T) {
	for _, bad := range []float64{0, -1} {
		a := randomWalk("AAA", 40, 50, 1)
		b := randomWalk("BBB", 40, 80, 2)
		b[10].Close = bad
		history := map[string][]domain.StockRecord{"AAA": a, "BBB": b}

		_, err := portfolio.Build([]domain.Allocation{
			{Ticker: "AAA", WeightPct: 50},
			{Ticker: "BBB", WeightPct: 50},
		}, 1000, history)
		assert.ErrorIs(t, err, domain.ErrInsufficientData, "close %v", bad)
	}
}

func TestBuild_Errors(t *testing.T) {
	history := map[string][]domain.StockRecord{
		"AAA":   randomWalk("AAA", 40, 50, 1),
		"SHORT": randomWalk("SHORT", 29, 50, 2),
	}

	tests := []struct {
		name    string
		allocs  []domain.Allocation
		capital float64
		wantErr error
	}{
		{"no allocations", nil, 1000, domain.ErrInvalidRequest},
		{"zero capital", []domain.Allocation{{Ticker: "AAA", WeightPct: 100}}, 0, domain.ErrInvalidRequest},
		{"zero weight", []domain.Allocation{{Ticker: "AAA", WeightPct: 0}}, 1000, domain.ErrInvalidRequest},
		{"duplicate ticker", []domain.Allocation{{Ticker: "AAA", WeightPct: 50}, {Ticker: "AAA", WeightPct: 50}}, 1000, domain.ErrInvalidRequest},
		{"unknown ticker", []domain.Allocation{{Ticker: "ZZZ", WeightPct: 100}}, 1000, domain.ErrUnknownTicker},
		{"too few records", []domain.Allocation{{Ticker: "SHORT", WeightPct: 100}}, 1000, domain.ErrInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := portfolio.Build(tt.allocs, tt.capital, history)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuild_WithMinRecords(t *testing.T) {
	allocs := []domain.Allocation{{Ticker: "AAA", WeightPct: 100}}

	// no baja el mínimo
	short := map[string][]domain.StockRecord{"AAA": randomWalk("AAA", 10, 50, 1)}
	_, err := portfolio.Build(allocs, 1000, short, portfolio.WithMinRecords(5))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	// sí lo sube
	history := map[string][]domain.StockRecord{"AAA": randomWalk("AAA", 40, 50, 1)}
	_, err = portfolio.Build(allocs, 1000, history)
	require.NoError(t, err)
	_, err = portfolio.Build(allocs, 1000, history, portfolio.WithMinRecords(50))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
