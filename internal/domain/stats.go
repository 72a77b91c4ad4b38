package domain

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// SummaryStatistics resume la distribución de precios terminales de una corrida.
// Es un valor derivado: se recalcula en cada corrida, nunca se modifica.
type SummaryStatistics struct {
	ModelLabel string
	PathCount  int
	Horizon    int
	Mean       float64
	StdDev     float64
	Median     float64
	P5         float64
	P25        float64
	P75        float64
	P95        float64
	VaR95      float64 // pérdida al 95% como magnitud positiva (fracción del precio de referencia)
}

// Summarize calcula media, desviación muestral, mediana y percentiles de los
// precios terminales, y el VaR95 sobre los returns simples respecto a reference.
//
// Percentiles: interpolación lineal de la CDF empírica (stat.LinInterp) sobre
// los datos ordenados. VaR95 = -P5(returns); como el return es una función
// afín creciente del precio, VaR95 es consistente con P5 del precio.
//
// terminals no se modifica.
func Summarize(label string, horizon int, terminals []float64, reference float64) (SummaryStatistics, error) {
	if len(terminals) == 0 {
		return SummaryStatistics{}, fmt.Errorf("domain.Summarize: no terminal prices to analyze: %w", ErrEmptyEnsemble)
	}
	if !(reference > 0) {
		return SummaryStatistics{}, fmt.Errorf("domain.Summarize: reference price must be positive: %w", ErrInvalidRequest)
	}

	sorted := slices.Clone(terminals)
	slices.Sort(sorted)

	mean := stat.Mean(sorted, nil)
	stdDev := 0.0
	if len(sorted) > 1 {
		stdDev = stat.StdDev(sorted, nil)
	}

	returns := make([]float64, len(sorted))
	for i, tp := range sorted {
		returns[i] = (tp - reference) / reference
	}

	return SummaryStatistics{
		ModelLabel: label,
		PathCount:  len(sorted),
		Horizon:    horizon,
		Mean:       mean,
		StdDev:     stdDev,
		Median:     median(sorted),
		P5:         Percentile(sorted, 5),
		P25:        Percentile(sorted, 25),
		P75:        Percentile(sorted, 75),
		P95:        Percentile(sorted, 95),
		VaR95:      -Percentile(returns, 5),
	}, nil
}

// Percentile devuelve el percentil pct (0-100) de datos YA ordenados.
func Percentile(sorted []float64, pct float64) float64 {
	return stat.Quantile(pct/100, stat.LinInterp, sorted, nil)
}

// median sobre datos ordenados: promedio de los dos centrales si n es par.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
