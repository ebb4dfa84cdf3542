// Package config loads runtime configuration: environment variables for
// backend endpoints and directories, and the project file declaring source
// extracts and their freshness thresholds. Precedence is CLI flags over
// environment over project-file defaults; the CLI layer applies it.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-level configuration.
type Config struct {
	// PostgresDSN connects the dimension, fact, watermark, and quality
	// result stores. Empty selects the in-memory backend together with
	// ClickHouseDSN.
	PostgresDSN string `env:"WAREHOUSE_POSTGRES_DSN"`

	// ClickHouseDSN connects the staging table stores.
	ClickHouseDSN string `env:"WAREHOUSE_CLICKHOUSE_DSN"`

	DataDir     string `env:"WAREHOUSE_DATA_DIR" envDefault:"data"`
	ReportDir   string `env:"WAREHOUSE_REPORT_DIR" envDefault:"reports"`
	MetricsAddr string `env:"WAREHOUSE_METRICS_ADDR"`
}

// FromEnv parses the environment into a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
