package model

import (
	"math"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// GBMCoefficients devuelve drift = (mu - σ²/2)·dt y diffusion = σ·√dt.
// Lo comparten el generador de un activo y el orquestador de cartera para que
// una cartera de un solo activo reproduzca exactamente el GBM.
func GBMCoefficients(mu, sigma, dt float64) (drift, diffusion float64) {
	return (mu - 0.5*sigma*sigma) * dt, sigma * math.Sqrt(dt)
}

// GBMStep avanza un paso: price·exp(drift + diffusion·z).
func GBMStep(price, drift, diffusion, z float64) float64 {
	return price * math.Exp(drift+diffusion*z)
}

// GBMPath genera un path de movimiento browniano geométrico.
func GBMPath(m domain.GBM, initial float64, steps int, dt float64, s *rng.Stream) domain.PricePath {
	path := newPath(initial, steps)
	drift, diffusion := GBMCoefficients(m.Mu, m.Sigma, dt)

	price := initial
	for t := 0; t < steps; t++ {
		price = GBMStep(price, drift, diffusion, s.Normal())
		path = append(path, price)
	}
	return path
}
