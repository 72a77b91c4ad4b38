package notify

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// DefaultDecimals son los decimales del reporte exportado.
const DefaultDecimals = 4

// SummaryReport es lo que se vuelca al exportar una corrida.
type SummaryReport struct {
	ExecTime time.Duration
	Stats    domain.SummaryStatistics
	Decimals int // 0 = DefaultDecimals
}

// NewSummaryReport arma el reporte a partir del registro de una corrida.
func NewSummaryReport(run domain.RunRecord, decimals int) SummaryReport {
	return SummaryReport{ExecTime: run.Duration, Stats: run.Stats, Decimals: decimals}
}

// WriteSummary escribe el reporte plano "Metric,Value", una métrica por línea.
// Los valores numéricos se redondean a Decimals con decimal.StringFixed.
func WriteSummary(w io.Writer, r SummaryReport) error {
	places := int32(r.Decimals)
	if places <= 0 {
		places = DefaultDecimals
	}
	fixed := func(v float64) string {
		return decimal.NewFromFloat(v).StringFixed(places)
	}

	st := r.Stats
	rows := [][2]string{
		{"ExecTime", r.ExecTime.Round(time.Millisecond).String()},
		{"Model", st.ModelLabel},
		{"Horizon", strconv.Itoa(st.Horizon)},
		{"Paths", strconv.Itoa(st.PathCount)},
		{"Mean", fixed(st.Mean)},
		{"StdDev", fixed(st.StdDev)},
		{"Median", fixed(st.Median)},
		{"P5", fixed(st.P5)},
		{"P25", fixed(st.P25)},
		{"P75", fixed(st.P75)},
		{"P95", fixed(st.P95)},
		{"VaR95", fixed(st.VaR95)},
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Metric,Value")
	for _, row := range rows {
		fmt.Fprintf(bw, "%s,%s\n", row[0], row[1])
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("notify.WriteSummary: %w", err)
	}
	return nil
}

// ExportSummary escribe el reporte en path, creando o truncando el archivo.
func ExportSummary(path string, r SummaryReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("notify.ExportSummary: create %q: %w", path, err)
	}
	if err := WriteSummary(f, r); err != nil {
		f.Close()
		return fmt.Errorf("notify.ExportSummary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("notify.ExportSummary: close %q: %w", path, err)
	}
	return nil
}
