// Package config aggregates the options of every pipeline stage into one
// document that can be loaded from YAML (or JSON) and overridden from the
// environment.
//
// Priority: environment > file > defaults. Unknown YAML keys are rejected.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/katalvlaran/subclone/ccf"
	"github.com/katalvlaran/subclone/clonetree"
	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/mixture"
	"github.com/katalvlaran/subclone/peaks"
	"github.com/katalvlaran/subclone/selection"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every load or validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Grid modes.
const (
	ModeReduced = "reduced"
	ModeFull    = "full"
	ModeCustom  = "custom"
)

// Environment overrides.
const (
	EnvWorkers  = "SUBCLONE_WORKERS"
	EnvMode     = "SUBCLONE_MODE"
	EnvLogLevel = "SUBCLONE_LOG_LEVEL"
	EnvFeature  = "SUBCLONE_FEATURE"
	EnvDensity  = "SUBCLONE_DENSITY"
)

// configValidate checks struct tags of the whole document, including the
// "karyotype" tag on mixture.Options.Karyotypes.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New(validator.WithRequiredStructEnabled())
	_ = configValidate.RegisterValidation("karyotype", validateKaryotype)
}

// validateKaryotype accepts "major:minor" strings.
func validateKaryotype(fl validator.FieldLevel) bool {
	_, err := genome.ParseKaryotype(fl.Field().String())
	return err == nil
}

// Config is the full run configuration.
type Config struct {
	Genome    genome.Options    `json:"genome" yaml:"genome"`
	Peaks     peaks.Options     `json:"peaks" yaml:"peaks"`
	CCF       ccf.Options       `json:"ccf" yaml:"ccf"`
	Mixture   mixture.Options   `json:"mixture" yaml:"mixture"`
	Selection selection.Options `json:"selection" yaml:"selection"`
	CloneTree clonetree.Options `json:"clone_tree" yaml:"clone_tree"`

	// Mode picks the (k, seed) grid: reduced, full, or custom (Grid).
	Mode string       `json:"mode" yaml:"mode" validate:"oneof=reduced full custom"`
	Grid mixture.Grid `json:"grid" yaml:"grid"`

	// Workers bounds concurrent fits; 0 means one per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`

	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// ObservabilityConfig controls logging, metrics and tracing.
type ObservabilityConfig struct {
	LogLevel       string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string `json:"log_format" yaml:"log_format" validate:"oneof=text json"`
	MetricsEnabled bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
	TracingEnabled bool   `json:"tracing_enabled" yaml:"tracing_enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Genome:    genome.DefaultOptions(),
		Peaks:     peaks.DefaultOptions(),
		CCF:       ccf.DefaultOptions(),
		Mixture:   mixture.DefaultOptions(),
		Selection: selection.DefaultOptions(),
		CloneTree: clonetree.DefaultOptions(),
		Mode:      ModeReduced,
		Workers:   0,
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "text",
			MetricsEnabled: true,
			TracingEnabled: true,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes YAML (or JSON for a .json extension) with unknown keys
// rejected.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides selected fields from the environment.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvWorkers, v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv(EnvMode); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Observability.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvFeature); v != "" {
		cfg.Mixture.Feature = mixture.Feature(strings.ToLower(v))
	}
	if v := os.Getenv(EnvDensity); v != "" {
		cfg.Mixture.Density = mixture.Density(strings.ToLower(v))
	}
	return nil
}

// Validate checks every struct tag and the grid of custom mode.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Mode == ModeCustom {
		if len(c.Grid.Ks) == 0 || len(c.Grid.Seeds) == 0 {
			return fmt.Errorf("%w: custom mode needs grid.ks and grid.seeds", ErrInvalidConfig)
		}
		for _, k := range c.Grid.Ks {
			if k < 1 {
				return fmt.Errorf("%w: grid k=%d", ErrInvalidConfig, k)
			}
		}
	}
	return nil
}

// FitGrid returns the grid selected by Mode.
func (c Config) FitGrid() mixture.Grid {
	switch c.Mode {
	case ModeFull:
		return mixture.FullGrid()
	case ModeCustom:
		return c.Grid
	default:
		return mixture.ReducedGrid()
	}
}

// EffectiveWorkers resolves Workers = 0 to the CPU count.
func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Level maps LogLevel to a slog level (info when unknown).
func (o ObservabilityConfig) Level() slog.Level {
	switch o.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
