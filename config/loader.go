package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/kbukum/scod/logger"
)

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// EnvPrefix selects override variables. Defaults to the upper-cased
	// service name with dashes as underscores.
	EnvPrefix string
	// Root is the key of the sub-tree Load returns. Empty means the whole file.
	Root string
}

// LoaderOption is a functional option for Load and LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the prefix of override variables.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(prefix, "_") }
}

// WithRoot makes Load return the sub-tree under key, e.g. "components".
func WithRoot(key string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Root = strings.ToLower(key) }
}

// Load reads the configuration blob for a service: component name -> that
// component's fields. File values are overridden by environment variables
// named <PREFIX>_<COMPONENT>__<FIELD>, where a double underscore separates
// path segments (APP_DB__POOL__SIZE -> db.pool.size). Keys are lower-cased.
func Load(serviceName string, opts ...LoaderOption) (map[string]any, error) {
	v, lc, err := newViper(serviceName, opts)
	if err != nil {
		return nil, err
	}

	settings := v.AllSettings()
	if lc.Root == "" {
		return settings, nil
	}
	sub, ok := settings[lc.Root].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return sub, nil
}

// LoadConfig loads configuration for a service into the provided cfg struct
// using its mapstructure tags. It resolves files and overrides like Load.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	v, _, err := newViper(serviceName, opts)
	if err != nil {
		return err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func newViper(serviceName string, opts []LoaderOption) (*viper.Viper, LoaderConfig, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = DefaultEnvPrefix(serviceName)
	}

	resolver := &FileResolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)
	log := logger.Get("config")

	v := viper.New()

	// 1. YAML config is the base
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, lc, fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
		log.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}

	// 2. .env populates the process environment
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	// 3. Environment overrides win
	for key, value := range envOverrides(lc.EnvPrefix, os.Environ()) {
		if lc.Root != "" {
			key = lc.Root + "." + key
		}
		v.Set(key, value)
	}

	return v, lc, nil
}

// DefaultEnvPrefix derives the override prefix from a service name:
// "order-api" -> "ORDER_API".
func DefaultEnvPrefix(serviceName string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(serviceName))
}

// envOverrides maps PREFIX_A__B=v entries to "a.b" -> v.
func envOverrides(prefix string, environ []string) map[string]string {
	out := make(map[string]string)
	if prefix == "" {
		return out
	}
	head := strings.ToUpper(prefix) + "_"
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, head) {
			continue
		}
		path := strings.TrimPrefix(key, head)
		if path == "" {
			continue
		}
		segments := strings.Split(strings.ToLower(path), "__")
		if slices.Contains(segments, "") {
			continue
		}
		out[strings.Join(segments, ".")] = value
	}
	return out
}
