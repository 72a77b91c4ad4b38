package domain

// PricePath es una trayectoria de horizon+1 precios; path[0] es el precio inicial.
type PricePath []float64

// Terminal devuelve el último precio del path (0 si está vacío).
func (p PricePath) Terminal() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// PathEnsemble es el conjunto de paths de una corrida, ordenado por índice de path.
// El índice determina la semilla y el emparejamiento antitético.
type PathEnsemble struct {
	Label     string
	Horizon   int
	Reference float64 // precio (o valor de cartera) contra el que se miden los returns
	Paths     []PricePath
}

// Len devuelve la cantidad de paths.
func (e PathEnsemble) Len() int {
	return len(e.Paths)
}

// Terminals extrae el precio final de cada path, en orden de índice.
func (e PathEnsemble) Terminals() []float64 {
	out := make([]float64, len(e.Paths))
	for i, p := range e.Paths {
		out[i] = p.Terminal()
	}
	return out
}

// Summarize reduce el ensemble a estadísticas usando su precio de referencia.
func (e PathEnsemble) Summarize() (SummaryStatistics, error) {
	return Summarize(e.Label, e.Horizon, e.Terminals(), e.Reference)
}
