package domain

import "errors"

// Errores tipados del motor de simulación. Se envuelven con contexto usando
// fmt.Errorf("...: %w") y se comprueban con errors.Is.
var (
	// ErrInvalidRequest: modelo desconocido, parámetros ausentes o fuera de rango.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientData: histórico demasiado corto para estimar o simular.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotPositiveDefinite: la matriz de correlación no admite Cholesky.
	ErrNotPositiveDefinite = errors.New("correlation matrix is not positive definite")

	// ErrEmptyEnsemble: estadísticas pedidas sobre cero paths.
	ErrEmptyEnsemble = errors.New("empty ensemble")

	// ErrUnknownTicker: el ticker pedido no está en el histórico cargado.
	ErrUnknownTicker = errors.New("unknown ticker")
)
