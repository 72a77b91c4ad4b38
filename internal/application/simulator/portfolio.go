package simulator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/model"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// PortfolioLabel es la etiqueta de modelo de las corridas de cartera.
const PortfolioLabel = "Portfolio"

// SimulatePortfolio genera paths del valor total de la cartera. En cada paso
// saca una normal por activo, las correlaciona con c = L·z y avanza cada
// activo con el mismo paso GBM que el generador de un activo.
// path[0] = Σ shares·last_price; la referencia de los returns es InitValue.
func SimulatePortfolio(req domain.PortfolioRequest, workers int) (domain.PathEnsemble, error) {
	return simulatePortfolio(req, poolConfig{workers: workers})
}

func simulatePortfolio(req domain.PortfolioRequest, cfg poolConfig) (domain.PathEnsemble, error) {
	if err := req.Validate(); err != nil {
		return domain.PathEnsemble{}, fmt.Errorf("simulator.SimulatePortfolio: %w", err)
	}
	cfg.label = PortfolioLabel

	assets := req.Config.Assets
	n := len(assets)
	drift := make([]float64, n)
	diffusion := make([]float64, n)
	for j, a := range assets {
		drift[j], diffusion[j] = model.GBMCoefficients(a.Mu, a.Sigma, req.Dt)
	}
	initValue := req.Config.InitialValue()
	l := req.Config.CorrelationCholesky

	paths, err := runPaths(req.NumPaths, cfg, func(i int) (domain.PricePath, error) {
		stream := rng.ForPath(req.Seed, i, req.UseAntithetic)

		prices := make([]float64, n)
		for j, a := range assets {
			prices[j] = a.LastPrice
		}
		z := mat.NewVecDense(n, nil)
		var c mat.VecDense

		path := make(domain.PricePath, 1, req.Horizon+1)
		path[0] = initValue
		for t := 0; t < req.Horizon; t++ {
			for j := 0; j < n; j++ {
				z.SetVec(j, stream.Normal())
			}
			c.MulVec(l, z)

			value := 0.0
			for j, a := range assets {
				prices[j] = model.GBMStep(prices[j], drift[j], diffusion[j], c.AtVec(j))
				value += a.Value(prices[j])
			}
			path = append(path, value)
		}
		return path, nil
	})
	if err != nil {
		return domain.PathEnsemble{}, fmt.Errorf("simulator.SimulatePortfolio: %w", err)
	}

	return domain.PathEnsemble{
		Label:     PortfolioLabel,
		Horizon:   req.Horizon,
		Reference: req.Config.InitValue,
		Paths:     paths,
	}, nil
}
