package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Allocation es una selección (ticker, peso en %) hecha por el usuario.
type Allocation struct {
	Ticker    string
	WeightPct float64
}

// PortfolioAsset es un activo de la cartera con sus parámetros estimados.
type PortfolioAsset struct {
	Ticker    string
	Shares    float64 // capital asignado / último precio
	Mu        float64 // media muestral de log-returns alineados
	Sigma     float64 // desviación muestral de log-returns alineados
	LastPrice float64
}

// Value devuelve shares × precio.
func (a PortfolioAsset) Value(price float64) float64 {
	return a.Shares * price
}

// PortfolioConfig es la cartera lista para simular. Solo existe si la matriz de
// correlación admitió factorización de Cholesky.
type PortfolioConfig struct {
	Assets              []PortfolioAsset
	CorrelationCholesky *mat.TriDense // triangular inferior N×N, L·Lᵗ = correlación
	InitValue           float64       // capital total: referencia para los returns
}

// InitialValue devuelve Σ shares·last_price, el valor en t=0 del path de cartera.
func (c PortfolioConfig) InitialValue() float64 {
	total := 0.0
	for _, a := range c.Assets {
		total += a.Value(a.LastPrice)
	}
	return total
}

// Tickers devuelve los tickers en orden.
func (c PortfolioConfig) Tickers() []string {
	out := make([]string, len(c.Assets))
	for i, a := range c.Assets {
		out[i] = a.Ticker
	}
	return out
}

// Validate comprueba la forma del config: activos, factor N×N y valor inicial.
func (c PortfolioConfig) Validate() error {
	n := len(c.Assets)
	if n == 0 {
		return fmt.Errorf("portfolio has no assets: %w", ErrInvalidRequest)
	}
	if c.CorrelationCholesky == nil {
		return fmt.Errorf("portfolio has no cholesky factor: %w", ErrInvalidRequest)
	}
	if r, cols := c.CorrelationCholesky.Dims(); r != n || cols != n {
		return fmt.Errorf("cholesky factor is %dx%d, want %dx%d: %w", r, cols, n, n, ErrInvalidRequest)
	}
	if !(c.InitValue > 0) {
		return fmt.Errorf("portfolio initial value must be positive: %w", ErrInvalidRequest)
	}
	for _, a := range c.Assets {
		if a.Sigma < 0 || !(a.LastPrice > 0) {
			return fmt.Errorf("asset %s has invalid parameters: %w", a.Ticker, ErrInvalidRequest)
		}
	}
	return nil
}
