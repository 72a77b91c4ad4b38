package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/montecarlo/internal/adapters/scenario"
	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// JSON tal como lo guardaba la aplicación original.
const legacyJSON = `{
  "initial_price": 100.0,
  "horizon": 30,
  "num_paths": 1000,
  "seed": 12345,
  "use_antithetic": false,
  "dt": 1.0,
  "model_type": "GBM",
  "gbm_params": {
    "mu": 0.0002,
    "sigma": 0.015
  }
}`

const garchYAML = `
ticker: AAA
initial_price: 50
horizon: 10
num_paths: 200
seed: 7
use_antithetic: true
dt: 1
model_type: GARCH
garch_params:
  omega: 0.000002
  alpha: 0.1
  beta: 0.85
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_LegacyJSON(t *testing.T) {
	f, err := scenario.Load(writeFile(t, "sim.json", legacyJSON))
	require.NoError(t, err)

	req, err := f.ToRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SimulationRequest{
		InitialPrice: 100,
		Horizon:      30,
		NumPaths:     1000,
		Seed:         12345,
		Dt:           1,
		Model:        domain.GBM{Mu: 0.0002, Sigma: 0.015},
	}, req)
}

func TestLoad_YAML(t *testing.T) {
	f, err := scenario.Load(writeFile(t, "sim.yaml", garchYAML))
	require.NoError(t, err)
	assert.Equal(t, "AAA", f.Ticker)

	req, err := f.ToRequest(nil)
	require.NoError(t, err)
	assert.True(t, req.UseAntithetic)
	assert.Equal(t, domain.GARCH{Omega: 0.000002, Alpha: 0.1, Beta: 0.85}, req.Model)
}

func TestLoad_Errors(t *testing.T) {
	_, err := scenario.Load(writeFile(t, "sim.toml", "x = 1"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = scenario.Load(writeFile(t, "broken.json", "{"))
	assert.Error(t, err)

	_, err = scenario.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yml")
	require.NoError(t, os.WriteFile(a, []byte(legacyJSON), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(garchYAML), 0o644))

	files, err := scenario.LoadAll([]string{a, b})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "GBM", files[0].ModelType)
	assert.Equal(t, "GARCH", files[1].ModelType)
}

func TestToRequest_Errors(t *testing.T) {
	base := scenario.File{InitialPrice: 100, Horizon: 10, NumPaths: 10, Dt: 1}

	tests := []struct {
		name    string
		mutate  func(f *scenario.File)
		wantErr error
	}{
		{"missing gbm block", func(f *scenario.File) { f.ModelType = "GBM" }, domain.ErrInvalidRequest},
		{"missing mr block", func(f *scenario.File) { f.ModelType = "MeanReversion" }, domain.ErrInvalidRequest},
		{"missing jd block", func(f *scenario.File) { f.ModelType = "JumpDiffusion" }, domain.ErrInvalidRequest},
		{"missing garch block", func(f *scenario.File) { f.ModelType = "GARCH" }, domain.ErrInvalidRequest},
		{"unknown model", func(f *scenario.File) { f.ModelType = "Heston" }, domain.ErrInvalidRequest},
		{"bootstrap without history", func(f *scenario.File) { f.ModelType = "Bootstrap" }, domain.ErrInsufficientData},
		{"non stationary garch", func(f *scenario.File) {
			f.ModelType = "GARCH"
			f.GARCHParams = &scenario.GARCHParams{Omega: 1, Alpha: 0.6, Beta: 0.5}
		}, domain.ErrInvalidRequest},
		{"zero horizon", func(f *scenario.File) {
			f.ModelType = "GBM"
			f.GBMParams = &scenario.GBMParams{Sigma: 0.1}
			f.Horizon = 0
		}, domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			_, err := f.ToRequest(nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestToRequest_Bootstrap(t *testing.T) {
	f := scenario.File{InitialPrice: 10, Horizon: 5, NumPaths: 3, Dt: 1, ModelType: "Bootstrap"}
	req, err := f.ToRequest([]float64{0.01, -0.02})
	require.NoError(t, err)
	assert.Equal(t, domain.Bootstrap{Returns: []float64{0.01, -0.02}}, req.Model)
}

func TestSaveAndLoad(t *testing.T) {
	models := []domain.ModelSpec{
		domain.GBM{Mu: 0.001, Sigma: 0.02},
		domain.MeanReversion{Theta: 0.2, MuLongTerm: 95, Sigma: 1.1},
		domain.JumpDiffusion{Mu: 0.0001, Sigma: 0.01, Lambda: 0.3, MuJ: -0.04, SigmaJ: 0.08},
		domain.GARCH{Omega: 0.00001, Alpha: 0.05, Beta: 0.9},
	}
	for _, ext := range []string{".json", ".yaml"} {
		for _, m := range models {
			t.Run(m.Label()+ext, func(t *testing.T) {
				req := domain.SimulationRequest{
					InitialPrice: 42, Horizon: 12, NumPaths: 64, Seed: 1 << 63,
					UseAntithetic: true, Dt: 0.5, Model: m,
				}
				path := filepath.Join(t.TempDir(), "scenario"+ext)
				require.NoError(t, scenario.Save(path, scenario.FromRequest(req)))

				f, err := scenario.Load(path)
				require.NoError(t, err)
				got, err := f.ToRequest(nil)
				require.NoError(t, err)
				assert.Equal(t, req, got)
			})
		}
	}
}

func TestSave_UnsupportedExtension(t *testing.T) {
	err := scenario.Save(filepath.Join(t.TempDir(), "x.txt"), scenario.File{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
