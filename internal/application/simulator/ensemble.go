package simulator

import (
	"fmt"

	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/domain/model"
	"github.com/alejandrodnm/montecarlo/internal/domain/rng"
)

// SimulateEnsemble genera req.NumPaths paths independientes del modelo pedido.
// El path i usa el stream derivado de (req.Seed, i); el resultado es idéntico
// bit a bit para cualquier valor de workers (workers <= 0 usa NumCPU).
func SimulateEnsemble(req domain.SimulationRequest, workers int) (domain.PathEnsemble, error) {
	return simulateEnsemble(req, poolConfig{workers: workers})
}

func simulateEnsemble(req domain.SimulationRequest, cfg poolConfig) (domain.PathEnsemble, error) {
	if err := req.Validate(); err != nil {
		return domain.PathEnsemble{}, fmt.Errorf("simulator.SimulateEnsemble: %w", err)
	}
	cfg.label = req.Model.Label()

	paths, err := runPaths(req.NumPaths, cfg, func(i int) (domain.PricePath, error) {
		stream := rng.ForPath(req.Seed, i, req.UseAntithetic)
		return model.Generate(req.Model, req.InitialPrice, req.Horizon, req.Dt, stream)
	})
	if err != nil {
		return domain.PathEnsemble{}, fmt.Errorf("simulator.SimulateEnsemble: %w", err)
	}

	return domain.PathEnsemble{
		Label:     req.Model.Label(),
		Horizon:   req.Horizon,
		Reference: req.InitialPrice,
		Paths:     paths,
	}, nil
}
