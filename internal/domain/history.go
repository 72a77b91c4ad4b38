package domain

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// StockRecord es una vela diaria tal como la entrega el colaborador de ingesta.
type StockRecord struct {
	Ticker string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// History agrupa los registros históricos por ticker, ordenados por fecha.
type History struct {
	Records map[string][]StockRecord
	Tickers []string // ordenados alfabéticamente
}

// TickerInfo resume el histórico disponible de un ticker.
type TickerInfo struct {
	Ticker      string
	From        time.Time
	To          time.Time
	RecordCount int
	LastClose   float64
	LogReturns  []float64
}

// Closes extrae los cierres en orden.
func Closes(records []StockRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Close
	}
	return out
}

// LogReturns calcula ln(p[t]/p[t-1]). Los pares con algún precio no positivo se omiten.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev > 0 && cur > 0 {
			out = append(out, math.Log(cur/prev))
		}
	}
	return out
}

// DescribeTicker resume el histórico de un ticker. records debe venir ordenado por fecha.
func DescribeTicker(ticker string, records []StockRecord) (TickerInfo, error) {
	if len(records) == 0 {
		return TickerInfo{}, fmt.Errorf("domain.DescribeTicker: %q: %w", ticker, ErrUnknownTicker)
	}
	last := records[len(records)-1]
	return TickerInfo{
		Ticker:      ticker,
		From:        records[0].Date,
		To:          last.Date,
		RecordCount: len(records),
		LastClose:   last.Close,
		LogReturns:  LogReturns(Closes(records)),
	}, nil
}

// EstimateParameters devuelve media y desviación muestral (n-1) de los log-returns.
// Es la única calibración que hace el sistema: estimación por momentos.
func EstimateParameters(logReturns []float64) (mu, sigma float64, err error) {
	if len(logReturns) < 2 {
		return 0, 0, fmt.Errorf("domain.EstimateParameters: need at least 2 log returns, got %d: %w",
			len(logReturns), ErrInsufficientData)
	}
	mu, sigma = stat.MeanStdDev(logReturns, nil)
	return mu, sigma, nil
}
