package portfolio

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// MinPivot es el menor elemento diagonal aceptado en L. Por debajo la matriz es
// numéricamente singular: un activo es combinación lineal de los demás.
const MinPivot = 1e-6

// CholeskyLower factoriza una matriz simétrica definida positiva y devuelve L
// triangular inferior con L·Lᵗ = m. Falla con ErrNotPositiveDefinite si la
// matriz no lo es o si algún pivote queda por debajo de MinPivot (activos
// duplicados, series degeneradas).
func CholeskyLower(m *mat.SymDense) (*mat.TriDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(m); !ok {
		return nil, fmt.Errorf("portfolio.CholeskyLower: check for duplicate assets or insufficient data: %w",
			domain.ErrNotPositiveDefinite)
	}
	var l mat.TriDense
	chol.LTo(&l)

	n, _ := l.Dims()
	for i := 0; i < n; i++ {
		if d := l.At(i, i); d < MinPivot {
			return nil, fmt.Errorf("portfolio.CholeskyLower: pivot %d is %g, asset is degenerate: %w",
				i, d, domain.ErrNotPositiveDefinite)
		}
	}
	return &l, nil
}
