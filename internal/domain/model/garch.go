package model

import (
	"math"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// GARCHVarianceFloor es la varianza condicional mínima; evita el colapso a cero.
const GARCHVarianceFloor = 1e-12

// GARCHPath genera un path GARCH(1,1):
//
//	r[t]  = σ[t]·ε[t]·√dt
//	σ²[t+1] = max(ω + α·r[t]² + β·σ²[t], GARCHVarianceFloor)
//
// La varianza inicial es la incondicional ω/(1-α-β).
func GARCHPath(m domain.GARCH, initial float64, steps int, dt float64, s *rng.Stream) domain.PricePath {
	return garchPath(m, initial, steps, dt, s, nil)
}

// garchPath acepta un observer que recibe la varianza usada en cada paso.
func garchPath(m domain.GARCH, initial float64, steps int, dt float64, s *rng.Stream, observe func(variance float64)) domain.PricePath {
	path := newPath(initial, steps)
	sqrtDt := math.Sqrt(dt)
	variance := math.Max(m.UnconditionalVariance(), GARCHVarianceFloor)

	price := initial
	for t := 0; t < steps; t++ {
		if observe != nil {
			observe(variance)
		}
		r := math.Sqrt(variance) * s.Normal() * sqrtDt
		price *= math.Exp(r)
		path = append(path, price)

		variance = math.Max(m.Omega+m.Alpha*r*r+m.Beta*variance, GARCHVarianceFloor)
	}
	return path
}
