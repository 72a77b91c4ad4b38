package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSeed = 12345
	// piso de portfolio.min_records; el builder aplica el mismo
	minPortfolioRecords = 30
)

// Config es la configuración completa del simulador.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Portfolio  PortfolioConfig  `yaml:"portfolio"`
	Data       DataConfig       `yaml:"data"`
	Storage    StorageConfig    `yaml:"storage"`
	Report     ReportConfig     `yaml:"report"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controla el pool de workers y los valores por defecto de
// las corridas que no vienen de un archivo de escenario.
type SimulationConfig struct {
	Workers            int     `yaml:"workers"` // 0 = NumCPU
	ProgressIntervalMs int     `yaml:"progress_interval_ms"`
	BatchConcurrency   int     `yaml:"batch_concurrency"` // escenarios simultáneos con -scenario a,b,c
	DefaultSeed        uint64  `yaml:"default_seed"`
	Horizon            int     `yaml:"horizon"`
	NumPaths           int     `yaml:"num_paths"`
	Dt                 float64 `yaml:"dt"`
	Antithetic         bool    `yaml:"antithetic"`
}

// PortfolioConfig controla la construcción de carteras.
type PortfolioConfig struct {
	TotalCapital float64 `yaml:"total_capital"`
	MinRecords   int     `yaml:"min_records"` // mínimo de registros por ticker, nunca menos de 30
}

// DataConfig indica de dónde sale el histórico.
type DataConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o "none" para no persistir
}

// StorageDisabled es el DSN que desactiva el historial de corridas.
const StorageDisabled = "none"

// Enabled indica si hay que abrir el storage.
func (s StorageConfig) Enabled() bool {
	return s.DSN != StorageDisabled
}

// ReportConfig controla la salida por consola y el export.
type ReportConfig struct {
	Decimals int  `yaml:"decimals"`
	Table    bool `yaml:"table"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg := newConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración por defecto (sin archivo), con los
// overrides de entorno aplicados. El CLI la usa cuando no hay config.yaml.
func Default() (*Config, error) {
	_ = godotenv.Load()

	cfg := newConfig()
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Default: %w", err)
	}
	setDefaults(&cfg)
	return &cfg, nil
}

// newConfig precarga los valores donde el cero es válido y no puede
// distinguirse de "no configurado" después del unmarshal.
func newConfig() Config {
	return Config{
		Simulation: SimulationConfig{DefaultSeed: defaultSeed},
	}
}

// ProgressInterval devuelve el intervalo de log de progreso como time.Duration.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Simulation.ProgressIntervalMs) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MC_WORKERS %q: %w", v, err)
		}
		cfg.Simulation.Workers = n
	}
	if v := os.Getenv("MC_DATA_CSV"); v != "" {
		cfg.Data.CSVPath = v
	}
	if v := os.Getenv("MC_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Simulation.Workers < 0 {
		cfg.Simulation.Workers = 0
	}
	if cfg.Simulation.ProgressIntervalMs <= 0 {
		cfg.Simulation.ProgressIntervalMs = 1000
	}
	if cfg.Simulation.BatchConcurrency <= 0 {
		cfg.Simulation.BatchConcurrency = 2
	}
	if cfg.Simulation.Horizon <= 0 {
		cfg.Simulation.Horizon = 252 // un año bursátil
	}
	if cfg.Simulation.NumPaths <= 0 {
		cfg.Simulation.NumPaths = 10000
	}
	if cfg.Simulation.Dt <= 0 {
		cfg.Simulation.Dt = 1
	}
	if cfg.Portfolio.TotalCapital <= 0 {
		cfg.Portfolio.TotalCapital = 10000
	}
	if cfg.Portfolio.MinRecords < minPortfolioRecords {
		cfg.Portfolio.MinRecords = minPortfolioRecords
	}
	if cfg.Data.CSVPath == "" {
		cfg.Data.CSVPath = "data/prices.csv"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "montecarlo.db"
	}
	if cfg.Report.Decimals <= 0 {
		cfg.Report.Decimals = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
