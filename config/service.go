package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/scod/logger"
	"github.com/kbukum/scod/observability"
)

// ServiceConfig is the process-level configuration of a service that hosts
// an application: identity, logging and telemetry. Component configuration
// is loaded separately with Load.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    HTTP server.Config   `mapstructure:"http"`
//	}
type ServiceConfig struct {
	Name          string               `yaml:"name" mapstructure:"name"`
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Version       string               `yaml:"version" mapstructure:"version"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()

	tracer, meter := &c.Observability.Tracer, &c.Observability.Meter
	defTracer, defMeter := observability.DefaultTracerConfig(c.Name), observability.DefaultMeterConfig(c.Name)
	if tracer.ServiceName == "" {
		tracer.ServiceName = c.Name
	}
	if tracer.Endpoint == "" {
		tracer.Endpoint = defTracer.Endpoint
	}
	if meter.ServiceName == "" {
		meter.ServiceName = c.Name
	}
	if meter.Endpoint == "" {
		meter.Endpoint = defMeter.Endpoint
	}
	if meter.Interval == 0 {
		meter.Interval = defMeter.Interval
	}
	tracer.Environment, meter.Environment = c.Environment, c.Environment
	if c.Version != "" {
		tracer.ServiceVersion, meter.ServiceVersion = c.Version, c.Version
	}
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
