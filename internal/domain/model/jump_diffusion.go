package model

import (
	"math"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// JumpDiffusionPath genera un path de Merton. En cada paso:
//   - return difusivo GBM con su propia normal
//   - N ~ Poisson(λ·dt) saltos, cada log-salto ~ Normal(μ_J, σ_J)
//   - price·exp(difusivo + Σ saltos)
//
// Orden de consumo del stream por paso: normal difusiva, Poisson, N normales de salto.
func JumpDiffusionPath(m domain.JumpDiffusion, initial float64, steps int, dt float64, s *rng.Stream) domain.PricePath {
	path := newPath(initial, steps)
	drift, diffusion := GBMCoefficients(m.Mu, m.Sigma, dt)
	lambdaDt := m.Lambda * dt

	price := initial
	for t := 0; t < steps; t++ {
		logReturn := drift + diffusion*s.Normal()

		jumps := s.Poisson(lambdaDt)
		for k := 0; k < jumps; k++ {
			logReturn += s.NormalWith(m.MuJ, m.SigmaJ)
		}

		price *= math.Exp(logReturn)
		path = append(path, price)
	}
	return path
}
