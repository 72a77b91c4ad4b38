package ports

import (
	"context"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// HistoryProvider carga el histórico de precios de todos los tickers disponibles.
type HistoryProvider interface {
	// LoadHistory devuelve los registros agrupados por ticker, ordenados por fecha,
	// junto con la lista ordenada de tickers.
	LoadHistory(ctx context.Context) (domain.History, error)
}
