package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records operation counts and durations through an otel meter
// exported on the default prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	opCounter     otelmetric.Int64Counter
	opDuration    otelmetric.Float64Histogram
}

// New creates a meter for serviceName. If the exporter cannot be built the
// returned value records into a no-op meter.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return newWithMeter(noop.NewMeterProvider().Meter(serviceName), nil), err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	return newWithMeter(provider.Meter(serviceName), provider), nil
}

// NewNoop returns an Observability that discards everything.
func NewNoop() *Observability {
	return newWithMeter(noop.NewMeterProvider().Meter("noop"), nil)
}

func newWithMeter(meter otelmetric.Meter, provider *metric.MeterProvider) *Observability {
	opCounter, _ := meter.Int64Counter(
		"pi.operations",
		otelmetric.WithDescription("Number of builder operations"),
	)

	opDuration, _ := meter.Float64Histogram(
		"pi.operation.duration",
		otelmetric.WithDescription("Builder operation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		opCounter:     opCounter,
		opDuration:    opDuration,
	}
}

// RecordOperation counts one operation and its duration.
func (o *Observability) RecordOperation(ctx context.Context, op string, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	)
	if o.opCounter != nil {
		o.opCounter.Add(ctx, 1, attrs)
	}
	if o.opDuration != nil {
		o.opDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
