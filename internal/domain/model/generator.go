// Package model contiene los generadores de paths de precio, uno por variante
// de domain.ModelSpec. Son funciones puras: mismos parámetros y mismo Stream,
// mismo path.
package model

import (
	"fmt"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// Generate produce un path de steps+1 precios con path[0] == initial.
// El espejo antitético lo aplica el Stream (negando sus normales).
//
// El switch es exhaustivo sobre la unión cerrada; cualquier otro tipo
// (por ejemplo un puntero a una variante) se rechaza como request inválido.
func Generate(spec domain.ModelSpec, initial float64, steps int, dt float64, stream *rng.Stream) (domain.PricePath, error) {
	switch m := spec.(type) {
	case domain.GBM:
		return GBMPath(m, initial, steps, dt, stream), nil
	case domain.Bootstrap:
		if len(m.Returns) == 0 {
			return nil, fmt.Errorf("model.Generate: bootstrap without history: %w", domain.ErrInsufficientData)
		}
		return BootstrapPath(m, initial, steps, stream), nil
	case domain.MeanReversion:
		return MeanReversionPath(m, initial, steps, dt, stream), nil
	case domain.JumpDiffusion:
		return JumpDiffusionPath(m, initial, steps, dt, stream), nil
	case domain.GARCH:
		return GARCHPath(m, initial, steps, dt, stream), nil
	default:
		return nil, fmt.Errorf("model.Generate: unsupported model %T: %w", spec, domain.ErrInvalidRequest)
	}
}

// newPath reserva steps+1 y fija el precio inicial.
func newPath(initial float64, steps int) domain.PricePath {
	path := make(domain.PricePath, 1, steps+1)
	path[0] = initial
	return path
}
