package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alejandrodnm/montecarlo/config"
	"github.com/alejandrodnm/montecarlo/internal/adapters/marketdata"
	"github.com/alejandrodnm/montecarlo/internal/adapters/notify"
	"github.com/alejandrodnm/montecarlo/internal/adapters/storage"
	"github.com/alejandrodnm/montecarlo/internal/application/simulator"
	"github.com/alejandrodnm/montecarlo/internal/domain"
	"github.com/alejandrodnm/montecarlo/internal/ports"
)

// options agrupa los flags de la corrida.
type options struct {
	scenarios    []string
	saveScenario string
	ticker       string
	estimate     bool
	model        string
	price        float64
	mu           float64
	sigma        float64
	paths        int
	horizon      int
	seed         uint64
	antithetic   bool
	portfolio    string
	capital      float64
	info         string
	tickers      bool
	history      int
	export       string
	table        bool
	// flags pasados explícitamente; el resto cae al valor de config
	set map[string]bool
}

// isSet indica si el flag vino en la línea de comandos.
func (o options) isSet(name string) bool {
	return o.set[name]
}

// override devuelve el valor del flag si se pasó explícitamente, si no el de config.
func override[T any](set bool, flagValue, fallback T) T {
	if set {
		return flagValue
	}
	return fallback
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file (built-in defaults if the default path is missing)")
	scenarios := flag.String("scenario", "", "comma-separated scenario files (.json, .yaml) run as a batch")
	saveScenario := flag.String("save-scenario", "", "write the single-run request to this scenario file")
	ticker := flag.String("ticker", "", "ticker whose history feeds the run (initial price, bootstrap returns)")
	estimate := flag.Bool("estimate", false, "estimate GBM mu/sigma from the ticker history")
	model := flag.String("model", "GBM", "model for flag-driven runs: GBM|Bootstrap")
	price := flag.Float64("price", 0, "initial price (default: last close of -ticker)")
	mu := flag.Float64("mu", 0, "GBM drift per step")
	sigma := flag.Float64("sigma", 0, "GBM volatility per step")
	paths := flag.Int("paths", 0, "number of paths (overrides config)")
	horizon := flag.Int("horizon", 0, "steps per path (overrides config)")
	seed := flag.Uint64("seed", 0, "base seed (overrides config)")
	antithetic := flag.Bool("antithetic", false, "use antithetic pairs (-antithetic=false overrides config)")
	portfolioFlag := flag.String("portfolio", "", `correlated portfolio run, e.g. "AAA:60,BBB:40"`)
	capital := flag.Float64("capital", 0, "portfolio capital (overrides config)")
	info := flag.String("info", "", "print history summary for a ticker and exit")
	listTickers := flag.Bool("tickers", false, "list available tickers and exit")
	history := flag.Int("history", 0, "print the last N recorded runs and exit")
	export := flag.String("export", "", "write the summary report (Metric,Value) to this file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full statistics tables (default: from config)")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) && !set["config"] {
		cfg, err = config.Default()
	}
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	opts := options{
		scenarios:    splitList(*scenarios),
		saveScenario: *saveScenario,
		ticker:       *ticker,
		estimate:     *estimate,
		model:        *model,
		price:        *price,
		mu:           *mu,
		sigma:        *sigma,
		paths:        *paths,
		horizon:      *horizon,
		seed:         *seed,
		antithetic:   *antithetic,
		portfolio:    *portfolioFlag,
		capital:      *capital,
		info:         *info,
		tickers:      *listTickers,
		history:      *history,
		export:       *export,
		table:        *table,
		set:          set,
	}

	slog.Info("montecarlo starting",
		"config", *configPath,
		"workers", cfg.Simulation.Workers,
		"scenarios", len(opts.scenarios),
		"ticker", opts.ticker,
		"portfolio", opts.portfolio,
	)

	var store ports.RunStorage
	if cfg.Storage.Enabled() {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	console := notify.NewConsole(cfg.Report.Decimals, override(opts.isSet("table"), opts.table, cfg.Report.Table))
	loader := marketdata.NewCSVLoader(cfg.Data.CSVPath)

	sim := simulator.New(simulator.Config{
		Workers:          cfg.Simulation.Workers,
		ProgressInterval: cfg.ProgressInterval(),
		BatchConcurrency: cfg.Simulation.BatchConcurrency,
	}, store, console)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &app{cfg: cfg, opts: opts, sim: sim, console: console, history: loader}
	if err := app.run(ctx); err != nil {
		slog.Error("montecarlo exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("montecarlo finished")
}

// app reúne lo que necesitan los distintos modos del CLI.
type app struct {
	cfg     *config.Config
	opts    options
	sim     *simulator.Simulator
	console *notify.Console
	history ports.HistoryProvider
	loaded  *domain.History
}

// run despacha al modo pedido por los flags.
func (a *app) run(ctx context.Context) error {
	switch {
	case a.opts.history > 0:
		return a.runHistory(ctx)
	case a.opts.tickers:
		return a.runTickers(ctx)
	case a.opts.info != "":
		return a.runInfo(ctx)
	case a.opts.portfolio != "":
		return a.runPortfolio(ctx)
	case len(a.opts.scenarios) > 0:
		return a.runScenarios(ctx)
	default:
		return a.runSingle(ctx)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
