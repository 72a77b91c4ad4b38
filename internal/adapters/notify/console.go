package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// Console implementa ports.Reporter.
type Console struct {
	out      io.Writer
	decimals int32
	table    bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(decimals int, table bool) *Console {
	return NewConsoleWriter(os.Stdout, decimals, table)
}

// NewConsoleWriter crea un reporter sobre cualquier writer (tests, archivos).
func NewConsoleWriter(w io.Writer, decimals int, table bool) *Console {
	if decimals <= 0 {
		decimals = DefaultDecimals
	}
	return &Console{out: w, decimals: int32(decimals), table: table}
}

// ReportRun imprime las estadísticas de la corrida en el modo configurado.
func (c *Console) ReportRun(_ context.Context, result domain.RunResult) error {
	if c.table {
		c.printStats(result.Record)
	} else {
		c.printCompact(result.Record)
	}
	return nil
}

// ReportPortfolio imprime la composición de la cartera y sus parámetros estimados.
func (c *Console) ReportPortfolio(_ context.Context, cfg domain.PortfolioConfig) error {
	fmt.Fprintf(c.out, "\nPortfolio — %d assets, capital %s\n",
		len(cfg.Assets), money(cfg.InitValue))

	table := tablewriter.NewWriter(c.out)
	table.Header("Ticker", "Last", "Shares", "Allocated", "Weight", "Mu", "Sigma")

	total := cfg.InitialValue()
	for _, a := range cfg.Assets {
		allocated := a.Value(a.LastPrice)
		weight := 0.0
		if total > 0 {
			weight = allocated / total * 100
		}
		table.Append(
			a.Ticker,
			c.fixed(a.LastPrice),
			decimal.NewFromFloat(a.Shares).StringFixed(4),
			money(allocated),
			decimal.NewFromFloat(weight).StringFixed(2)+"%",
			decimal.NewFromFloat(a.Mu).StringFixed(6),
			decimal.NewFromFloat(a.Sigma).StringFixed(6),
		)
	}
	table.Render()
	return nil
}

// PrintHistory imprime las corridas persistidas, la más reciente primero.
func (c *Console) PrintHistory(runs []domain.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No runs recorded yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Started", "Kind", "Model", "Tickers", "Paths", "Horizon", "Seed", "Mean", "VaR95", "Time")
	for i, r := range runs {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			string(r.Kind),
			r.Stats.ModelLabel,
			tickersLabel(r.Tickers),
			fmt.Sprintf("%d", r.Stats.PathCount),
			fmt.Sprintf("%d", r.Stats.Horizon),
			fmt.Sprintf("%d", r.Seed),
			c.fixed(r.Stats.Mean),
			percent(r.Stats.VaR95),
			r.Duration.Round(time.Millisecond).String(),
		)
	}
	table.Render()
}

// PrintTickerInfo imprime el resumen histórico de un ticker.
func (c *Console) PrintTickerInfo(info domain.TickerInfo) {
	fmt.Fprintf(c.out, "\n%s\n", info.Ticker)
	fmt.Fprintf(c.out, "  From:       %s\n", info.From.Format("2006-01-02"))
	fmt.Fprintf(c.out, "  To:         %s\n", info.To.Format("2006-01-02"))
	fmt.Fprintf(c.out, "  Records:    %d\n", info.RecordCount)
	fmt.Fprintf(c.out, "  Last close: %s\n", c.fixed(info.LastClose))

	mu, sigma, err := domain.EstimateParameters(info.LogReturns)
	if err != nil {
		fmt.Fprintf(c.out, "  Not enough data to estimate mu/sigma\n\n")
		return
	}
	fmt.Fprintf(c.out, "  Mu:         %s\n", decimal.NewFromFloat(mu).StringFixed(6))
	fmt.Fprintf(c.out, "  Sigma:      %s\n\n", decimal.NewFromFloat(sigma).StringFixed(6))
}

// PrintTickers imprime la lista de tickers disponibles.
func (c *Console) PrintTickers(tickers []string) {
	fmt.Fprintf(c.out, "%d tickers: %s\n", len(tickers), strings.Join(tickers, ", "))
}

// printStats imprime la tabla de estadísticas de una corrida.
func (c *Console) printStats(r domain.RunRecord) {
	st := r.Stats
	fmt.Fprintf(c.out, "\n[%s] %s — %d paths × %d steps, seed %d%s (%s)\n",
		r.StartedAt.Local().Format("15:04:05"), st.ModelLabel, st.PathCount, st.Horizon,
		r.Seed, antitheticLabel(r.Antithetic), r.Duration.Round(time.Millisecond))
	if len(r.Tickers) > 0 {
		fmt.Fprintf(c.out, "  Tickers: %s\n", tickersLabel(r.Tickers))
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	table.Append("Mean", c.fixed(st.Mean))
	table.Append("Std Dev", c.fixed(st.StdDev))
	table.Append("Median", c.fixed(st.Median))
	table.Append("P5", c.fixed(st.P5))
	table.Append("P25", c.fixed(st.P25))
	table.Append("P75", c.fixed(st.P75))
	table.Append("P95", c.fixed(st.P95))
	table.Append("VaR 95%", percent(st.VaR95))
	table.Render()
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.RunRecord) {
	st := r.Stats
	fmt.Fprintf(c.out, "[%s] %s %dx%d mean=%s sd=%s p5=%s p95=%s var95=%s\n",
		r.StartedAt.Local().Format("15:04:05"), st.ModelLabel, st.PathCount, st.Horizon,
		c.fixed(st.Mean), c.fixed(st.StdDev), c.fixed(st.P5), c.fixed(st.P95), percent(st.VaR95))
}

// --- helpers ---

func (c *Console) fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(c.decimals)
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func percent(fraction float64) string {
	return decimal.NewFromFloat(fraction*100).StringFixed(2) + "%"
}

func antitheticLabel(on bool) string {
	if on {
		return ", antithetic"
	}
	return ""
}

func tickersLabel(tickers []string) string {
	if len(tickers) == 0 {
		return "-"
	}
	return strings.Join(tickers, ",")
}
