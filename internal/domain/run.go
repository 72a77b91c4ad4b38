package domain

import "time"

// RunKind distingue corridas de un activo y de cartera.
type RunKind string

const (
	RunSingle    RunKind = "single"
	RunPortfolio RunKind = "portfolio"
)

// RunRecord es lo que se persiste y se reporta de cada corrida.
type RunRecord struct {
	ID         string
	Kind       RunKind
	StartedAt  time.Time
	Duration   time.Duration
	Seed       uint64
	Antithetic bool
	Tickers    []string // vacío en corridas de un activo sin ticker
	Stats      SummaryStatistics
}

// RunResult es la salida completa de una corrida: el registro y los paths
// para quien quiera graficarlos.
type RunResult struct {
	Record   RunRecord
	Ensemble PathEnsemble
}
