package domain

import (
	"fmt"
	"math"
)

// SimulationRequest describe una corrida de un solo activo.
// Se construye una vez y no se modifica durante la simulación.
type SimulationRequest struct {
	InitialPrice  float64
	Horizon       int // número de pasos
	NumPaths      int
	Seed          uint64
	UseAntithetic bool
	Dt            float64
	Model         ModelSpec
}

// Validate comprueba rangos antes de que empiece cualquier trabajo.
func (r SimulationRequest) Validate() error {
	if err := validateRun(r.Horizon, r.NumPaths, r.Dt); err != nil {
		return err
	}
	if !(r.InitialPrice > 0) || math.IsInf(r.InitialPrice, 1) {
		return fmt.Errorf("initial price must be positive: %w", ErrInvalidRequest)
	}
	if r.Model == nil {
		return fmt.Errorf("model is required: %w", ErrInvalidRequest)
	}
	return r.Model.Validate()
}

// PortfolioRequest describe una corrida multi-activo sobre un PortfolioConfig ya construido.
type PortfolioRequest struct {
	Config        PortfolioConfig
	Horizon       int
	NumPaths      int
	Seed          uint64
	UseAntithetic bool
	Dt            float64
}

// Validate comprueba los rangos de la corrida y la forma del config.
func (r PortfolioRequest) Validate() error {
	if err := validateRun(r.Horizon, r.NumPaths, r.Dt); err != nil {
		return err
	}
	return r.Config.Validate()
}

func validateRun(horizon, numPaths int, dt float64) error {
	switch {
	case horizon < 1:
		return fmt.Errorf("horizon must be greater than 0: %w", ErrInvalidRequest)
	case numPaths < 1:
		return fmt.Errorf("number of paths must be greater than 0: %w", ErrInvalidRequest)
	case !(dt > 0) || math.IsInf(dt, 1):
		return fmt.Errorf("dt must be positive: %w", ErrInvalidRequest)
	}
	return nil
}
