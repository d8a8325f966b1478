package bootstrap

import (
	"fmt"

	"github.com/kbukum/scod/config"
	"github.com/kbukum/scod/server"
	"github.com/kbukum/scod/version"
)

// ComponentsKey is the config file section holding the component blob.
const ComponentsKey = "components"

// Config is the configuration of a service hosting one application.
//
//	name: orders
//	http:
//	  port: 8080
//	resolution:
//	  lazy: true
//	components:
//	  db:
//	    dsn: postgres://localhost/orders
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	HTTP                 server.Config    `yaml:"http" mapstructure:"http"`
	Resolution           ResolutionConfig `yaml:"resolution" mapstructure:"resolution"`
	// Components maps component name to that component's configuration.
	Components map[string]any `yaml:"components" mapstructure:"components"`
}

// ResolutionConfig selects how operations are resolved at startup.
type ResolutionConfig struct {
	// Lazy defers component construction to the first invocation.
	Lazy bool `yaml:"lazy" mapstructure:"lazy"`
	// ParallelDependencies resolves sibling dependencies concurrently.
	ParallelDependencies bool `yaml:"parallel_dependencies" mapstructure:"parallel_dependencies"`
}

// ApplyDefaults fills unset fields, taking the version from the build when
// none is configured.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	if c.Components == nil {
		c.Components = map[string]any{}
	}
}

// Validate checks the process-level settings. Component slices are checked
// against their shapes during resolution.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	return nil
}

// LoadConfig reads the service configuration. Environment overrides of the
// form <PREFIX>_<COMPONENT>__<FIELD> land under the components section.
func LoadConfig(serviceName string, opts ...config.LoaderOption) (*Config, error) {
	cfg := &Config{}
	opts = append([]config.LoaderOption{config.WithRoot(ComponentsKey)}, opts...)
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	return cfg, nil
}
