// Package marketdata carga histórico de precios diarios desde archivos CSV.
package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// Columnas del formato de exportación (MetaStock ASCII).
const (
	colTicker = "<Ticker>"
	colDate   = "<DTYYYYMMDD>"
	colOpen   = "<Open>"
	colHigh   = "<High>"
	colLow    = "<Low>"
	colClose  = "<Close>"
	colVolume = "<Volume>"

	dateLayout = "20060102"
)

var requiredColumns = []string{colTicker, colDate, colOpen, colHigh, colLow, colClose, colVolume}

// ErrMalformedCSV indica un archivo que no respeta el formato esperado.
var ErrMalformedCSV = errors.New("malformed csv")

// CSVLoader implementa ports.HistoryProvider leyendo un archivo del disco.
type CSVLoader struct {
	path string
}

// NewCSVLoader crea un loader para el archivo dado.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// LoadHistory lee el archivo completo y agrupa los registros por ticker.
func (l *CSVLoader) LoadHistory(ctx context.Context) (domain.History, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.History{}, fmt.Errorf("marketdata.LoadHistory: open %q: %w", l.path, err)
	}
	defer f.Close()

	start := time.Now()
	h, err := Parse(ctx, f)
	if err != nil {
		return domain.History{}, fmt.Errorf("marketdata.LoadHistory: %s: %w", l.path, err)
	}

	slog.Info("history loaded",
		"path", l.path,
		"tickers", len(h.Tickers),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return h, nil
}

// Parse lee registros con cabecera <Ticker>,<DTYYYYMMDD>,<Open>,<High>,<Low>,<Close>,<Volume>
// (en cualquier orden). Los registros de cada ticker quedan ordenados por fecha
// (orden estable ante fechas repetidas) y la lista de tickers alfabéticamente.
func Parse(ctx context.Context, r io.Reader) (domain.History, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.History{}, fmt.Errorf("empty file: %w", ErrMalformedCSV)
		}
		return domain.History{}, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return domain.History{}, err
	}

	records := make(map[string][]domain.StockRecord)
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.History{}, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.History{}, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return domain.History{}, fmt.Errorf("line %d: %w", line, err)
		}
		records[rec.Ticker] = append(records[rec.Ticker], rec)
	}

	tickers := make([]string, 0, len(records))
	for ticker, recs := range records {
		slices.SortStableFunc(recs, func(a, b domain.StockRecord) int {
			return a.Date.Compare(b.Date)
		})
		tickers = append(tickers, ticker)
	}
	slices.Sort(tickers)

	return domain.History{Records: records, Tickers: tickers}, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %s: %w", col, ErrMalformedCSV)
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (domain.StockRecord, error) {
	field := func(col string) string {
		return strings.TrimSpace(row[idx[col]])
	}

	ticker := field(colTicker)
	if ticker == "" {
		return domain.StockRecord{}, fmt.Errorf("empty ticker: %w", ErrMalformedCSV)
	}
	date, err := time.Parse(dateLayout, field(colDate))
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("date %q: %w", field(colDate), ErrMalformedCSV)
	}

	rec := domain.StockRecord{Ticker: ticker, Date: date}
	prices := []struct {
		col string
		dst *float64
	}{
		{colOpen, &rec.Open},
		{colHigh, &rec.High},
		{colLow, &rec.Low},
		{colClose, &rec.Close},
	}
	for _, p := range prices {
		v, err := strconv.ParseFloat(field(p.col), 64)
		if err != nil {
			return domain.StockRecord{}, fmt.Errorf("%s %q: %w", p.col, field(p.col), ErrMalformedCSV)
		}
		*p.dst = v
	}

	rec.Volume, err = parseVolume(field(colVolume))
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("%s %q: %w", colVolume, field(colVolume), ErrMalformedCSV)
	}
	return rec, nil
}

// parseVolume acepta enteros y también "12345.0", que algunos exportadores escriben.
func parseVolume(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
