// Package rng provee streams pseudoaleatorios deterministas por semilla.
//
// Cada path de la simulación construye su propio Stream a partir de una
// semilla derivada (DeriveSeed), sin estado compartido entre goroutines.
// Dos streams con la misma semilla producen secuencias idénticas bit a bit.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// pcgIncrement fija el segundo word del PCG; solo la semilla distingue streams.
const pcgIncrement = 0x9e3779b97f4a7c15

// Stream es un generador autocontenido: normal estándar, índice uniforme y Poisson.
// No es seguro para uso concurrente; cada path tiene el suyo.
type Stream struct {
	src        *rand.PCG
	rnd        *rand.Rand
	normal     distuv.Normal
	antithetic bool
}

// New crea un Stream. Si antithetic es true, cada normal estándar sale negada
// (el miembro impar de un par antitético).
func New(seed uint64, antithetic bool) *Stream {
	src := rand.NewPCG(seed, pcgIncrement)
	return &Stream{
		src:        src,
		rnd:        rand.New(src),
		normal:     distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		antithetic: antithetic,
	}
}

// Normal devuelve una N(0,1), negada si el stream es antitético.
func (s *Stream) Normal() float64 {
	z := s.normal.Rand()
	if s.antithetic {
		return -z
	}
	return z
}

// NormalWith devuelve mu + sigma·Z usando Normal(), así hereda el espejo antitético.
func (s *Stream) NormalWith(mu, sigma float64) float64 {
	return mu + sigma*s.Normal()
}

// IntN devuelve un índice uniforme en [0, n). n debe ser > 0.
func (s *Stream) IntN(n int) int {
	return s.rnd.IntN(n)
}

// Poisson devuelve un conteo ~ Poisson(lambda). lambda <= 0 devuelve 0 sin consumir el stream.
func (s *Stream) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: s.src}.Rand())
}

// DeriveSeed calcula la semilla del path index a partir de la semilla base.
// Sin antitéticas: base+index. Con antitéticas: base+index/2, compartida por el par (2k, 2k+1).
// La aritmética es modular (wrapping) sobre uint64.
func DeriveSeed(base uint64, index int, antithetic bool) uint64 {
	if antithetic {
		return base + uint64(index/2)
	}
	return base + uint64(index)
}

// IsMirror indica si el path index es el miembro negado de su par antitético.
func IsMirror(index int, antithetic bool) bool {
	return antithetic && index%2 == 1
}

// ForPath construye el Stream del path index según el contrato de semillas.
func ForPath(base uint64, index int, antithetic bool) *Stream {
	return New(DeriveSeed(base, index, antithetic), IsMirror(index, antithetic))
}
