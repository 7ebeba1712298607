/*
Package config loads pipeline and server configuration.

PURPOSE:
  One configuration surface for both the batch CLI and the server:
  a YAML file, overridable by DEMAND_* environment variables, with
  sensible defaults for everything. Mirrors how model hyperparameters
  and pipeline knobs were historically kept in a config file rather
  than code.

EXAMPLE (config.yaml):
  horizon: 7
  test_fraction: 0.2
  models:
    enabled: [linear, knn, seasonal_naive, moving_average]
    knn_neighbors: 5
    ridge: 0.000001
  inputs:
    data: data/transactions.csv
    holidays: data/holidays.csv
  output: data/output/forecasted_demand.csv
  database: forecasts.db
  server:
    port: 8080
    schedule: "0 3 * * *"
  log_level: info
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full configuration for a pipeline run or server.
type Config struct {
	Horizon      int     `mapstructure:"horizon"`
	TestFraction float64 `mapstructure:"test_fraction"`

	Models struct {
		Enabled      []string `mapstructure:"enabled"`
		KNNNeighbors int      `mapstructure:"knn_neighbors"`
		Ridge        float64  `mapstructure:"ridge"`
	} `mapstructure:"models"`

	Inputs struct {
		Data     string `mapstructure:"data"`
		Holidays string `mapstructure:"holidays"`
	} `mapstructure:"inputs"`

	Output   string `mapstructure:"output"`
	Database string `mapstructure:"database"`

	Server struct {
		Port int `mapstructure:"port"`
		// Schedule is a cron expression for automatic re-forecasting;
		// empty disables the scheduler.
		Schedule string `mapstructure:"schedule"`
	} `mapstructure:"server"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file (optional - empty path uses
// defaults and environment only). Environment variables use the DEMAND_
// prefix with underscores, e.g. DEMAND_SERVER_PORT=9090.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEMAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("horizon", 7)
	v.SetDefault("test_fraction", 0.2)
	v.SetDefault("models.enabled", []string{"linear", "knn", "seasonal_naive", "moving_average"})
	v.SetDefault("models.knn_neighbors", 5)
	v.SetDefault("models.ridge", 1e-6)
	v.SetDefault("output", "data/output/forecasted_demand.csv")
	v.SetDefault("database", "forecasts.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.schedule", "")
	v.SetDefault("log_level", "info")
}

func (c *Config) validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0, 1), got %v", c.TestFraction)
	}
	return nil
}
