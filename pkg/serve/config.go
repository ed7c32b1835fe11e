// Package serve wires the report engine, dataset store, cache and HTTP
// surfaces into one long-running application.
package serve

import (
	"errors"
	"fmt"

	"github.com/finstmt/fsg/pkg/api"
	"github.com/finstmt/fsg/pkg/cache"
	"github.com/finstmt/fsg/pkg/frontend"
	"github.com/finstmt/fsg/pkg/report"
)

var (
	// ErrDataDirRequired is returned when no dataset directory is configured
	ErrDataDirRequired = errors.New("data directory is required")
)

// Config represents the complete server configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9090"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`
	PProfAddr       string `yaml:"pprofAddr"`

	// Inputs
	Data    DataConfig    `yaml:"data"`
	Reports report.Config `yaml:"reports"`

	// Surfaces
	API      api.Config      `yaml:"api"`
	Frontend frontend.Config `yaml:"frontend"`
	Cache    cache.Config    `yaml:"cache"`
}

// DataConfig configures the dataset directory and its optional reload
// schedule (a cron expression, e.g. "@every 5m").
type DataConfig struct {
	Dir    string `yaml:"dir" default:"data"`
	Reload string `yaml:"reload"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return ErrDataDirRequired
	}

	if err := c.Reports.Validate(); err != nil {
		return fmt.Errorf("invalid reports config: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("invalid api config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("invalid cache config: %w", err)
	}

	return nil
}
