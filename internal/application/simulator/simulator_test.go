package simulator_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/montecarlo/internal/application/simulator"
	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// --- mocks ---

type mockStorage struct {
	mu    sync.Mutex
	saved []domain.RunRecord
	err   error
}

func (m *mockStorage) SaveRun(_ context.Context, run domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockStorage) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.saved) {
		limit = len(m.saved)
	}
	return m.saved[:limit], m.err
}

func (m *mockStorage) Close() error { return nil }

type mockReporter struct {
	runs       []domain.RunResult
	portfolios []domain.PortfolioConfig
	err        error
}

func (m *mockReporter) ReportRun(_ context.Context, result domain.RunResult) error {
	m.runs = append(m.runs, result)
	return m.err
}

func (m *mockReporter) ReportPortfolio(_ context.Context, cfg domain.PortfolioConfig) error {
	m.portfolios = append(m.portfolios, cfg)
	return m.err
}

// --- helpers ---

func history(ticker string, n int, start, growth float64) []domain.StockRecord {
	records := make([]domain.StockRecord, n)
	price := start
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range records {
		// oscilación determinista para que la varianza no sea cero
		price *= math.Exp(growth + 0.01*math.Sin(float64(i)*1.7+start))
		records[i] = domain.StockRecord{Ticker: ticker, Date: base.AddDate(0, 0, i), Close: price}
	}
	return records
}

func newTestSimulator(st *mockStorage, rep *mockReporter) *simulator.Simulator {
	return simulator.New(simulator.Config{Workers: 2, ProgressInterval: time.Millisecond}, st, rep)
}

// --- tests ---

func TestSimulator_RunSingle(t *testing.T) {
	st := &mockStorage{}
	rep := &mockReporter{}
	sim := newTestSimulator(st, rep)

	res, err := sim.RunSingle(context.Background(), gbmRequest(), simulator.WithTickers("AAA"))
	require.NoError(t, err)

	rec := res.Record
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.RunSingle, rec.Kind)
	assert.Equal(t, uint64(12345), rec.Seed)
	assert.Equal(t, []string{"AAA"}, rec.Tickers)
	assert.Equal(t, "GBM", rec.Stats.ModelLabel)
	assert.Equal(t, 1000, res.Ensemble.Len())

	require.Len(t, st.saved, 1)
	assert.Equal(t, rec, st.saved[0])
	require.Len(t, rep.runs, 1)
	assert.Equal(t, rec.ID, rep.runs[0].Record.ID)

	// mismas estadísticas que el orquestador puro
	ens, err := simulator.SimulateEnsemble(gbmRequest(), 7)
	require.NoError(t, err)
	want, err := ens.Summarize()
	require.NoError(t, err)
	assert.Equal(t, want, rec.Stats)
}

func TestSimulator_RunSingle_StorageErrorNotFatal(t *testing.T) {
	st := &mockStorage{err: errors.New("disk full")}
	rep := &mockReporter{err: errors.New("closed pipe")}
	sim := newTestSimulator(st, rep)

	res, err := sim.RunSingle(context.Background(), gbmRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Record.ID)
	assert.Len(t, rep.runs, 1)
}

func TestSimulator_RunSingle_InvalidRequest(t *testing.T) {
	st := &mockStorage{}
	rep := &mockReporter{}
	sim := newTestSimulator(st, rep)

	req := gbmRequest()
	req.Horizon = 0
	_, err := sim.RunSingle(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, st.saved)
	assert.Empty(t, rep.runs)
}

func TestSimulator_RunSingle_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSimulator(&mockStorage{}, &mockReporter{}).RunSingle(ctx, gbmRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_NilPorts(t *testing.T) {
	sim := simulator.New(simulator.Config{}, nil, nil)
	_, err := sim.RunSingle(context.Background(), gbmRequest())
	require.NoError(t, err)

	runs, err := sim.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSimulator_RunPortfolio(t *testing.T) {
	st := &mockStorage{}
	rep := &mockReporter{}
	sim := newTestSimulator(st, rep)

	job := simulator.PortfolioJob{
		Allocations: []domain.Allocation{
			{Ticker: "AAA", WeightPct: 70},
			{Ticker: "BBB", WeightPct: 30},
		},
		TotalCapital: 10000,
		History: map[string][]domain.StockRecord{
			"AAA": history("AAA", 60, 20, 0.001),
			"BBB": history("BBB", 45, 80, -0.0005),
		},
		Horizon:  10,
		NumPaths: 200,
		Seed:     42,
		Dt:       1,
	}

	res, err := sim.RunPortfolio(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, domain.RunPortfolio, res.Record.Kind)
	assert.Equal(t, []string{"AAA", "BBB"}, res.Record.Tickers)
	assert.Equal(t, simulator.PortfolioLabel, res.Record.Stats.ModelLabel)
	assert.Equal(t, 10000.0, res.Ensemble.Reference)
	assert.InDelta(t, 10000, res.Ensemble.Paths[0][0], 1e-6)

	require.Len(t, rep.portfolios, 1)
	assert.Len(t, rep.portfolios[0].Assets, 2)
	require.Len(t, rep.runs, 1)
	require.Len(t, st.saved, 1)
}

func TestSimulator_RunPortfolio_BuildErrors(t *testing.T) {
	sim := newTestSimulator(&mockStorage{}, &mockReporter{})
	job := simulator.PortfolioJob{
		Allocations:  []domain.Allocation{{Ticker: "AAA", WeightPct: 100}},
		TotalCapital: 1000,
		History:      map[string][]domain.StockRecord{"AAA": history("AAA", 20, 10, 0)},
		Horizon:      5, NumPaths: 5, Dt: 1,
	}

	_, err := sim.RunPortfolio(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	// min_records no puede bajar del mínimo de correlación
	job.MinRecords = 10
	_, err = sim.RunPortfolio(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	job.History = map[string][]domain.StockRecord{"AAA": history("AAA", 40, 10, 0)}
	_, err = sim.RunPortfolio(context.Background(), job)
	assert.NoError(t, err)

	job.MinRecords = 50
	_, err = sim.RunPortfolio(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	job.MinRecords = 0

	job.Allocations = []domain.Allocation{{Ticker: "ZZZ", WeightPct: 100}}
	_, err = sim.RunPortfolio(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrUnknownTicker)
}

func TestSimulator_RunBatch(t *testing.T) {
	st := &mockStorage{}
	rep := &mockReporter{}
	sim := simulator.New(simulator.Config{Workers: 2, BatchConcurrency: 3}, st, rep)

	reqs := make([]domain.SimulationRequest, 4)
	for i := range reqs {
		reqs[i] = gbmRequest()
		reqs[i].NumPaths = 100
		reqs[i].Seed = uint64(i + 1)
	}
	reqs[2].Model = domain.GARCH{Omega: 0.000002, Alpha: 0.1, Beta: 0.85}

	results, err := sim.RunBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, uint64(i+1), res.Record.Seed)
		assert.Equal(t, res.Record.ID, rep.runs[i].Record.ID, "reported in request order")
	}
	assert.Equal(t, "GARCH", results[2].Record.Stats.ModelLabel)
	assert.Len(t, st.saved, 4)
}

func TestSimulator_RunBatch_Error(t *testing.T) {
	rep := &mockReporter{}
	sim := newTestSimulator(&mockStorage{}, rep)

	reqs := []domain.SimulationRequest{gbmRequest(), gbmRequest()}
	reqs[1].Model = domain.GBM{Sigma: -1}

	_, err := sim.RunBatch(context.Background(), reqs)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, rep.runs)
}

func TestSimulator_History(t *testing.T) {
	st := &mockStorage{}
	sim := simulator.New(simulator.Config{Workers: 2, ProgressInterval: time.Millisecond}, st, nil)
	for i := 0; i < 3; i++ {
		_, err := sim.RunSingle(context.Background(), gbmRequest())
		require.NoError(t, err)
	}

	runs, err := sim.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
