package model

import (
	"math"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// BootstrapPath remuestrea con reemplazo los log-returns históricos: en cada paso
// elige un índice uniforme y aplica ese return. m.Returns no puede estar vacío
// (Generate lo rechaza antes).
func BootstrapPath(m domain.Bootstrap, initial float64, steps int, s *rng.Stream) domain.PricePath {
	path := newPath(initial, steps)
	n := len(m.Returns)

	price := initial
	for t := 0; t < steps; t++ {
		price *= math.Exp(m.Returns[s.IntN(n)])
		path = append(path, price)
	}
	return path
}
