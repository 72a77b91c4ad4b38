// Package scenario lee y escribe escenarios de simulación en JSON o YAML.
//
// El formato JSON es el mismo que guardaba la aplicación de escritorio:
// parámetros de la corrida, model_type y un bloque de parámetros por modelo.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

// GBMParams son los parámetros del bloque gbm_params.
type GBMParams struct {
	Mu    float64 `json:"mu" yaml:"mu"`
	Sigma float64 `json:"sigma" yaml:"sigma"`
}

// MeanReversionParams son los parámetros del bloque mean_reversion_params.
type MeanReversionParams struct {
	Theta      float64 `json:"theta" yaml:"theta"`
	MuLongTerm float64 `json:"mu_long_term" yaml:"mu_long_term"`
	Sigma      float64 `json:"sigma" yaml:"sigma"`
}

// JumpDiffusionParams son los parámetros del bloque jump_diffusion_params.
type JumpDiffusionParams struct {
	Mu     float64 `json:"mu" yaml:"mu"`
	Sigma  float64 `json:"sigma" yaml:"sigma"`
	Lambda float64 `json:"lambda" yaml:"lambda"`
	MuJ    float64 `json:"mu_j" yaml:"mu_j"`
	SigmaJ float64 `json:"sigma_j" yaml:"sigma_j"`
}

// GARCHParams son los parámetros del bloque garch_params.
type GARCHParams struct {
	Omega float64 `json:"omega" yaml:"omega"`
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
}

// File es un escenario serializado. Solo el bloque del model_type elegido es
// obligatorio; Bootstrap no tiene bloque y toma los returns del ticker.
type File struct {
	Ticker        string  `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	InitialPrice  float64 `json:"initial_price" yaml:"initial_price"`
	Horizon       int     `json:"horizon" yaml:"horizon"`
	NumPaths      int     `json:"num_paths" yaml:"num_paths"`
	Seed          uint64  `json:"seed" yaml:"seed"`
	UseAntithetic bool    `json:"use_antithetic" yaml:"use_antithetic"`
	Dt            float64 `json:"dt" yaml:"dt"`
	ModelType     string  `json:"model_type" yaml:"model_type"`

	GBMParams           *GBMParams           `json:"gbm_params,omitempty" yaml:"gbm_params,omitempty"`
	MeanReversionParams *MeanReversionParams `json:"mean_reversion_params,omitempty" yaml:"mean_reversion_params,omitempty"`
	JumpDiffusionParams *JumpDiffusionParams `json:"jump_diffusion_params,omitempty" yaml:"jump_diffusion_params,omitempty"`
	GARCHParams         *GARCHParams         `json:"garch_params,omitempty" yaml:"garch_params,omitempty"`
}

// Load lee un escenario eligiendo el formato por la extensión (.json, .yaml, .yml).
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("scenario.Load: read %q: %w", path, err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return File{}, fmt.Errorf("scenario.Load: unsupported extension %q: %w", ext, domain.ErrInvalidRequest)
	}
	if err != nil {
		return File{}, fmt.Errorf("scenario.Load: parse %q: %w", path, err)
	}
	return f, nil
}

// LoadAll carga varios escenarios en orden; falla en el primero inválido.
func LoadAll(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Save escribe el escenario en JSON indentado o YAML según la extensión.
func Save(path string, f File) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	default:
		return fmt.Errorf("scenario.Save: unsupported extension %q: %w", ext, domain.ErrInvalidRequest)
	}
	if err != nil {
		return fmt.Errorf("scenario.Save: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scenario.Save: write %q: %w", path, err)
	}
	return nil
}

// ModelSpec arma la variante de modelo pedida por model_type. history son los
// log-returns del ticker y solo se usan para Bootstrap.
func (f File) ModelSpec(history []float64) (domain.ModelSpec, error) {
	missing := func() error {
		return fmt.Errorf("%s parameters not found: %w", f.ModelType, domain.ErrInvalidRequest)
	}

	switch f.ModelType {
	case domain.LabelGBM:
		if f.GBMParams == nil {
			return nil, missing()
		}
		return domain.GBM{Mu: f.GBMParams.Mu, Sigma: f.GBMParams.Sigma}, nil
	case domain.LabelBootstrap:
		return domain.Bootstrap{Returns: history}, nil
	case domain.LabelMeanReversion:
		p := f.MeanReversionParams
		if p == nil {
			return nil, missing()
		}
		return domain.MeanReversion{Theta: p.Theta, MuLongTerm: p.MuLongTerm, Sigma: p.Sigma}, nil
	case domain.LabelJumpDiffusion:
		p := f.JumpDiffusionParams
		if p == nil {
			return nil, missing()
		}
		return domain.JumpDiffusion{Mu: p.Mu, Sigma: p.Sigma, Lambda: p.Lambda, MuJ: p.MuJ, SigmaJ: p.SigmaJ}, nil
	case domain.LabelGARCH:
		p := f.GARCHParams
		if p == nil {
			return nil, missing()
		}
		return domain.GARCH{Omega: p.Omega, Alpha: p.Alpha, Beta: p.Beta}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q: %w", f.ModelType, domain.ErrInvalidRequest)
	}
}

// ToRequest convierte el escenario en un SimulationRequest validado.
func (f File) ToRequest(history []float64) (domain.SimulationRequest, error) {
	spec, err := f.ModelSpec(history)
	if err != nil {
		return domain.SimulationRequest{}, fmt.Errorf("scenario.ToRequest: %w", err)
	}
	req := domain.SimulationRequest{
		InitialPrice:  f.InitialPrice,
		Horizon:       f.Horizon,
		NumPaths:      f.NumPaths,
		Seed:          f.Seed,
		UseAntithetic: f.UseAntithetic,
		Dt:            f.Dt,
		Model:         spec,
	}
	if err := req.Validate(); err != nil {
		return domain.SimulationRequest{}, fmt.Errorf("scenario.ToRequest: %w", err)
	}
	return req, nil
}

// FromRequest es la inversa de ToRequest. Los returns de Bootstrap no se
// guardan: se recalculan del ticker al cargar.
func FromRequest(req domain.SimulationRequest) File {
	f := File{
		InitialPrice:  req.InitialPrice,
		Horizon:       req.Horizon,
		NumPaths:      req.NumPaths,
		Seed:          req.Seed,
		UseAntithetic: req.UseAntithetic,
		Dt:            req.Dt,
	}
	if req.Model == nil {
		return f
	}
	f.ModelType = req.Model.Label()

	switch m := req.Model.(type) {
	case domain.GBM:
		f.GBMParams = &GBMParams{Mu: m.Mu, Sigma: m.Sigma}
	case domain.MeanReversion:
		f.MeanReversionParams = &MeanReversionParams{Theta: m.Theta, MuLongTerm: m.MuLongTerm, Sigma: m.Sigma}
	case domain.JumpDiffusion:
		f.JumpDiffusionParams = &JumpDiffusionParams{Mu: m.Mu, Sigma: m.Sigma, Lambda: m.Lambda, MuJ: m.MuJ, SigmaJ: m.SigmaJ}
	case domain.GARCH:
		f.GARCHParams = &GARCHParams{Omega: m.Omega, Alpha: m.Alpha, Beta: m.Beta}
	}
	return f
}
