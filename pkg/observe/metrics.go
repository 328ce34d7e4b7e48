// Package observe provides the game's observability primitives:
// OpenTelemetry metrics for the frame loop and NPC subsystem, a tracer for
// asset loading, and the SDK provider setup that bridges metrics to a
// Prometheus /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is backed by
// the global meter provider; tests should use [NewMetrics] with their own
// provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the scope name used for all metrics and spans.
const instrumentationName = "github.com/decker502/blockworld"

// Load status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics 游戏循环使用的指标集合
type Metrics struct {
	// FrameDuration tracks the simulated delta time per tick.
	FrameDuration metric.Float64Histogram

	// ModelLoadDuration tracks how long model assets take to load.
	ModelLoadDuration metric.Float64Histogram

	// ModelLoads counts model load completions. Use with attribute
	// attribute.String("status", ...).
	ModelLoads metric.Int64Counter

	// StateTransitions counts Free-look/Engaged switches. Use with attribute
	// attribute.String("to", ...).
	StateTransitions metric.Int64Counter

	// ActiveNPCs tracks the number of NPCs in the registry.
	ActiveNPCs metric.Int64UpDownCounter
}

// frameBuckets covers 240Hz up to the clamped worst case (seconds).
var frameBuckets = []float64{
	0.004, 0.008, 0.0167, 0.025, 0.033, 0.05, 0.075, 0.1,
}

var loadBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5,
}

// NewMetrics creates all instruments from the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(instrumentationName)
	var err error
	met := &Metrics{}

	if met.FrameDuration, err = m.Float64Histogram("blockworld.frame.duration",
		metric.WithDescription("Delta time of simulated frames."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModelLoadDuration, err = m.Float64Histogram("blockworld.model.load.duration",
		metric.WithDescription("Latency of model asset loads."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(loadBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModelLoads, err = m.Int64Counter("blockworld.model.loads",
		metric.WithDescription("Model load completions by status."),
	); err != nil {
		return nil, err
	}
	if met.StateTransitions, err = m.Int64Counter("blockworld.state.transitions",
		metric.WithDescription("Simulation state transitions by target state."),
	); err != nil {
		return nil, err
	}
	if met.ActiveNPCs, err = m.Int64UpDownCounter("blockworld.npc.active",
		metric.WithDescription("Number of NPCs currently simulated."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance, created on first use
// from [otel.GetMeterProvider]. Call [InitProvider] before the first use if
// the metrics should be exported.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Tracer returns the tracer used for asset loading spans.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// RecordModelLoad records a load completion and its latency.
func (m *Metrics) RecordModelLoad(ctx context.Context, path, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status),
	)
	m.ModelLoads.Add(ctx, 1, attrs)
	m.ModelLoadDuration.Record(ctx, seconds, attrs)
}

// RecordTransition records a simulation state change.
func (m *Metrics) RecordTransition(ctx context.Context, to string) {
	m.StateTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to)))
}
