package portfolio

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// unitTolerance es la distancia a ±1 desde la que una correlación se toma como
// perfecta. Dos series proporcionales dan 0.9999999999999998 según el redondeo.
const unitTolerance = 1e-12

// Correlation devuelve el coeficiente de Pearson de dos series de igual largo,
// acotado a [-1, 1] y redondeado a ±1 cuando está a menos de unitTolerance.
// Si alguna serie tiene varianza cero (o el resultado no es finito) devuelve 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	if 1-math.Abs(c) < unitTolerance {
		return math.Copysign(1, c)
	}
	return c
}

// CorrelationMatrix arma la matriz simétrica N×N con diagonal 1 a partir de
// series alineadas (mismo largo, mismo período).
func CorrelationMatrix(series [][]float64) *mat.SymDense {
	n := len(series)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			m.SetSym(i, j, Correlation(series[i], series[j]))
		}
	}
	return m
}
