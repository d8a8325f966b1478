package observability

import (
	"context"
	stderrors "errors"
)

// Config switches tracing and metrics on for a process.
type Config struct {
	Enabled bool         `mapstructure:"enabled"`
	Tracer  TracerConfig `mapstructure:"tracer"`
	Meter   MeterConfig  `mapstructure:"meter"`
}

// DefaultConfig returns a disabled configuration with development defaults.
func DefaultConfig(serviceName string) Config {
	return Config{
		Tracer: DefaultTracerConfig(serviceName),
		Meter:  DefaultMeterConfig(serviceName),
	}
}

// ShutdownFunc flushes and stops the providers started by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup starts the tracer and meter providers when cfg.Enabled is set and
// returns engine metrics bound to the global meter. With tracing disabled the
// global no-op providers stay in place and the returned Metrics is nil.
func Setup(ctx context.Context, cfg Config) (*Metrics, ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}

	tp, err := InitTracer(ctx, cfg.Tracer)
	if err != nil {
		return nil, noop, err
	}
	mp, err := InitMeter(ctx, &cfg.Meter)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, err
	}
	metrics, err := NewMetrics(Meter(defaultTracerName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, noop, err
	}

	return metrics, func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
