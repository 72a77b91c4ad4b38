package ports

import (
	"context"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// RunStorage persiste el historial de corridas.
type RunStorage interface {
	// SaveRun persiste una corrida terminada con sus estadísticas.
	SaveRun(ctx context.Context, run domain.RunRecord) error

	// ListRuns devuelve las últimas corridas, la más reciente primero.
	// limit <= 0 devuelve todas.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
