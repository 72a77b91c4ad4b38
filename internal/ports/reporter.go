package ports

import (
	"context"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// Reporter presenta los resultados de las corridas al usuario.
type Reporter interface {
	// ReportRun muestra las estadísticas de una corrida terminada.
	// En la implementación de consola, imprime una tabla formateada.
	ReportRun(ctx context.Context, result domain.RunResult) error

	// ReportPortfolio muestra la composición de una cartera antes de simularla.
	ReportPortfolio(ctx context.Context, cfg domain.PortfolioConfig) error
}
