package model

import (
	"math"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// MeanReversionFloor es el precio mínimo del proceso OU: no hay precios negativos.
const MeanReversionFloor = 0.01

// MeanReversionPath genera un path Ornstein-Uhlenbeck:
//
//	p[t+1] = p[t] + θ(μ_lt - p[t])·dt + σ·√dt·z,  acotado abajo por MeanReversionFloor
func MeanReversionPath(m domain.MeanReversion, initial float64, steps int, dt float64, s *rng.Stream) domain.PricePath {
	path := newPath(initial, steps)
	diffusion := m.Sigma * math.Sqrt(dt)

	price := initial
	for t := 0; t < steps; t++ {
		price += m.Theta*(m.MuLongTerm-price)*dt + diffusion*s.Normal()
		price = math.Max(price, MeanReversionFloor)
		path = append(path, price)
	}
	return path
}
