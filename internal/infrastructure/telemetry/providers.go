package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InstrumentationName is the tracer and meter name used by the engine.
const InstrumentationName = "github.com/alduraibi1/smart-fleet-oasis-sub010"

// Providers bundles the trace and metric providers of one process.
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
}

// Setup creates both providers from cfg. When cfg.Enabled is false the
// returned providers hand out no-op tracers and meters.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	tp, err := NewTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	mp, err := NewMeterProvider(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}

	return &Providers{Tracer: tp, Meter: mp}, nil
}

// EngineTracer returns the engine's tracer.
func (p *Providers) EngineTracer() trace.Tracer {
	return p.Tracer.Tracer(InstrumentationName)
}

// EngineMeter returns the engine's meter.
func (p *Providers) EngineMeter() metric.Meter {
	return p.Meter.Meter(InstrumentationName)
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Meter.Shutdown(ctx), p.Tracer.Shutdown(ctx))
}
