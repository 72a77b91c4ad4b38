package simulator

// pool.go: worker pool por índice de path.
//
// Cada tarea es un índice; el worker escribe su resultado en paths[i], así el
// orden de salida no depende de cuántos workers haya ni de quién termine antes.

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// DefaultProgressInterval es cada cuánto se loguea el avance de un pool.
const DefaultProgressInterval = time.Second

// pathFunc genera el path del índice dado. Debe construir su propio stream.
type pathFunc func(index int) (domain.PricePath, error)

type poolConfig struct {
	workers          int
	progressInterval time.Duration
	label            string
}

// runPaths ejecuta fn para cada índice en [0, n) con un worker pool.
// Si varios paths fallan devuelve el error del índice más bajo, para que el
// resultado sea el mismo con cualquier cantidad de workers.
func runPaths(n int, cfg poolConfig, fn pathFunc) ([]domain.PricePath, error) {
	workers := cfg.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)

	interval := cfg.progressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	progress := &rate.Sometimes{Interval: interval}

	paths := make([]domain.PricePath, n)
	errs := make([]error, n)
	var done atomic.Int64

	workCh := make(chan int, n)
	for i := 0; i < n; i++ {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				paths[i], errs[i] = fn(i)
				completed := done.Add(1)
				progress.Do(func() {
					slog.Debug("simulation progress",
						"model", cfg.label,
						"completed", completed,
						"total", n,
					)
				})
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("simulation pool complete",
		"model", cfg.label,
		"paths", n,
		"workers", workers,
	)
	return paths, nil
}
