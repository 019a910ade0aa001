// Package config loads engine and server configuration from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddr is the host:port the server binds to.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" validate:"required"`
	// MaxUploadBytes caps the size of uploaded CSV files.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes" validate:"gt=0"`
}

// BacktestConfig configures metric annualization.
type BacktestConfig struct {
	// PeriodsPerYear annualizes per-bar metrics. 252 fits daily bars.
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year" validate:"gt=0"`
	// RiskFreeRate is the per-period risk-free rate used by Sharpe and
	// Sortino.
	RiskFreeRate float64 `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" validate:"required"`
	Backtest BacktestConfig `yaml:"backtest" json:"backtest" validate:"required"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			MaxUploadBytes: 32 << 20,
		},
		Backtest: BacktestConfig{
			PeriodsPerYear: 252,
			RiskFreeRate:   0,
		},
	}
}

// LoadConfig reads a YAML configuration file at path. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
