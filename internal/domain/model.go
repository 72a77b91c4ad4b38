package domain

import (
	"fmt"
	"math"
)

// Etiquetas de modelo, las mismas que usan los archivos de escenario.
const (
	LabelGBM           = "GBM"
	LabelBootstrap     = "Bootstrap"
	LabelMeanReversion = "MeanReversion"
	LabelJumpDiffusion = "JumpDiffusion"
	LabelGARCH         = "GARCH"
)

// ModelSpec es la unión cerrada de modelos estocásticos soportados.
// El método isModel no exportado impide variantes fuera de este paquete,
// así el switch de generación es exhaustivo.
type ModelSpec interface {
	// Label devuelve el nombre del modelo para reportes.
	Label() string
	// Validate comprueba que la variante lleve todos sus parámetros en rango.
	Validate() error
	isModel()
}

// GBM es el movimiento browniano geométrico.
type GBM struct {
	Mu    float64
	Sigma float64
}

// Bootstrap remuestrea log-returns históricos. Returns es el histórico que lo alimenta.
type Bootstrap struct {
	Returns []float64
}

// MeanReversion es un proceso Ornstein-Uhlenbeck aritmético sobre el precio.
type MeanReversion struct {
	Theta      float64 // velocidad de reversión
	MuLongTerm float64 // nivel de largo plazo
	Sigma      float64
}

// JumpDiffusion es el modelo de Merton: GBM + saltos compuestos de Poisson.
type JumpDiffusion struct {
	Mu     float64
	Sigma  float64
	Lambda float64 // intensidad de saltos por unidad de tiempo
	MuJ    float64 // media del log-salto
	SigmaJ float64 // desviación del log-salto
}

// GARCH es un GARCH(1,1) sobre los log-returns de cada paso.
type GARCH struct {
	Omega float64
	Alpha float64
	Beta  float64
}

func (GBM) isModel()           {}
func (Bootstrap) isModel()     {}
func (MeanReversion) isModel() {}
func (JumpDiffusion) isModel() {}
func (GARCH) isModel()         {}

func (GBM) Label() string           { return LabelGBM }
func (Bootstrap) Label() string     { return LabelBootstrap }
func (MeanReversion) Label() string { return LabelMeanReversion }
func (JumpDiffusion) Label() string { return LabelJumpDiffusion }
func (GARCH) Label() string         { return LabelGARCH }

// Validate implementa ModelSpec.
func (m GBM) Validate() error {
	if err := finite(LabelGBM, m.Mu, m.Sigma); err != nil {
		return err
	}
	if m.Sigma < 0 {
		return fmt.Errorf("GBM sigma must be non-negative: %w", ErrInvalidRequest)
	}
	return nil
}

// Validate implementa ModelSpec. Un histórico vacío no se simula: antes
// devolvía un path plano silencioso, ahora es un error explícito.
func (m Bootstrap) Validate() error {
	if len(m.Returns) == 0 {
		return fmt.Errorf("Bootstrap requires a non-empty return history: %w", ErrInsufficientData)
	}
	if err := finite(LabelBootstrap, m.Returns...); err != nil {
		return err
	}
	return nil
}

// Validate implementa ModelSpec.
func (m MeanReversion) Validate() error {
	if err := finite(LabelMeanReversion, m.Theta, m.MuLongTerm, m.Sigma); err != nil {
		return err
	}
	if m.Theta <= 0 {
		return fmt.Errorf("MeanReversion theta must be positive: %w", ErrInvalidRequest)
	}
	if m.Sigma < 0 {
		return fmt.Errorf("MeanReversion sigma must be non-negative: %w", ErrInvalidRequest)
	}
	return nil
}

// Validate implementa ModelSpec.
func (m JumpDiffusion) Validate() error {
	if err := finite(LabelJumpDiffusion, m.Mu, m.Sigma, m.Lambda, m.MuJ, m.SigmaJ); err != nil {
		return err
	}
	switch {
	case m.Lambda < 0:
		return fmt.Errorf("JumpDiffusion lambda must be non-negative: %w", ErrInvalidRequest)
	case m.Sigma < 0:
		return fmt.Errorf("JumpDiffusion sigma must be non-negative: %w", ErrInvalidRequest)
	case m.SigmaJ < 0:
		return fmt.Errorf("JumpDiffusion sigma_j must be non-negative: %w", ErrInvalidRequest)
	}
	return nil
}

// Validate implementa ModelSpec. Exige estacionariedad (alpha+beta < 1)
// para que la varianza incondicional inicial exista.
func (m GARCH) Validate() error {
	if err := finite(LabelGARCH, m.Omega, m.Alpha, m.Beta); err != nil {
		return err
	}
	switch {
	case m.Omega <= 0:
		return fmt.Errorf("GARCH omega must be positive: %w", ErrInvalidRequest)
	case m.Alpha < 0:
		return fmt.Errorf("GARCH alpha must be non-negative: %w", ErrInvalidRequest)
	case m.Beta < 0:
		return fmt.Errorf("GARCH beta must be non-negative: %w", ErrInvalidRequest)
	case m.Alpha+m.Beta >= 1:
		return fmt.Errorf("GARCH stationarity condition failed, alpha + beta must be < 1: %w", ErrInvalidRequest)
	}
	return nil
}

// UnconditionalVariance devuelve omega / (1 - alpha - beta).
func (m GARCH) UnconditionalVariance() float64 {
	return m.Omega / (1 - m.Alpha - m.Beta)
}

func finite(label string, vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s parameters must be finite: %w", label, ErrInvalidRequest)
		}
	}
	return nil
}
