package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ipcli/internal/canny"
	"ipcli/internal/logger"
	"ipcli/internal/pipeline"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Flag names shared by the command line and config resolution.
const (
	FlagConfig       = "config"
	FlagLogLevel     = "log-level"
	FlagPreview      = "preview"
	FlagSigma        = "sigma"
	FlagLow          = "low"
	FlagHigh         = "high"
	FlagConnectivity = "connectivity"
	FlagWorkers      = "workers"
	FlagQuality      = "quality"
)

const EnvLogLevel = "LOG_LEVEL"

type CannyConfig struct {
	Sigma         float64 `yaml:"sigma" toml:"sigma"`
	LowThreshold  float64 `yaml:"low_threshold" toml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold" toml:"high_threshold"`
	Connectivity  string  `yaml:"connectivity" toml:"connectivity"`
	Workers       int     `yaml:"workers" toml:"workers"`
}

type Config struct {
	LogLevel    string      `yaml:"log_level" toml:"log_level"`
	JPEGQuality int         `yaml:"jpeg_quality" toml:"jpeg_quality"`
	Preview     bool        `yaml:"preview" toml:"preview"`
	Canny       CannyConfig `yaml:"canny" toml:"canny"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		JPEGQuality: pipeline.DefaultJPEGQuality,
		Canny: CannyConfig{
			Sigma:         canny.DefaultSigma,
			LowThreshold:  canny.DefaultLowThreshold,
			HighThreshold: canny.DefaultHighThreshold,
			Connectivity:  canny.ConnectivityRaster.String(),
		},
	}
}

// LoadConfigFile decodes path over base. Keys missing from the file keep
// their value in base.
func LoadConfigFile(path string, base Config) (Config, error) {
	cfg := base

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}

	return cfg, nil
}

// RegisterFlags adds the configuration flags to fs. Their defaults only
// document the built-in values; ResolveConfig applies a flag only when
// it was set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.String(FlagConfig, "", "read settings from a .yaml, .yml or .toml file")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error or off (env "+EnvLogLevel+")")
	fs.Bool(FlagPreview, d.Preview, "show the input and result in a window after processing")
	fs.Int(FlagQuality, d.JPEGQuality, "JPEG quality for .jpg outputs (1-100)")
	fs.Float64(FlagSigma, d.Canny.Sigma, "canny: gaussian blur sigma")
	fs.Float64(FlagLow, d.Canny.LowThreshold, "canny: low threshold; magnitudes at or below it are dropped")
	fs.Float64(FlagHigh, d.Canny.HighThreshold, "canny: strong threshold; strengths at or above it are edges")
	fs.String(FlagConnectivity, d.Canny.Connectivity, "canny: hysteresis mode, raster or full")
	fs.Int(FlagWorkers, d.Canny.Workers, "canny: suppression workers (0 uses all CPUs)")
}

// ResolveConfig builds the effective configuration. Explicitly set flags
// win over the environment, which wins over the config file, which wins
// over the defaults. The environment only carries the log level.
func ResolveConfig(flags *pflag.FlagSet, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	if path, err := flags.GetString(FlagConfig); err == nil && path != "" {
		cfg, err = LoadConfigFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	if level := getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := applyFlags(&cfg, flags); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	var errs []error

	stringFlag := func(name string, dst *string) {
		if flags.Changed(name) {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	floatFlag := func(name string, dst *float64) {
		if flags.Changed(name) {
			v, err := flags.GetFloat64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	intFlag := func(name string, dst *int) {
		if flags.Changed(name) {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	stringFlag(FlagLogLevel, &cfg.LogLevel)
	intFlag(FlagQuality, &cfg.JPEGQuality)
	floatFlag(FlagSigma, &cfg.Canny.Sigma)
	floatFlag(FlagLow, &cfg.Canny.LowThreshold)
	floatFlag(FlagHigh, &cfg.Canny.HighThreshold)
	stringFlag(FlagConnectivity, &cfg.Canny.Connectivity)
	intFlag(FlagWorkers, &cfg.Canny.Workers)

	if flags.Changed(FlagPreview) {
		v, err := flags.GetBool(FlagPreview)
		errs = append(errs, err)
		cfg.Preview = v
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid flag value: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}

	connectivity, err := canny.ParseConnectivity(c.Canny.Connectivity)
	if err != nil {
		return err
	}

	// Thresholds are not checked; odd values give degenerate masks.
	return canny.Config{
		Sigma:         c.Canny.Sigma,
		LowThreshold:  c.Canny.LowThreshold,
		HighThreshold: c.Canny.HighThreshold,
		Connectivity:  connectivity,
		Workers:       c.Canny.Workers,
	}.Validate()
}
