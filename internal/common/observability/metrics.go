package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	intakeCounter  otelmetric.Int64Counter
	intakeDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	intakeCounter, _ := meter.Int64Counter(
		"intake.requests",
		otelmetric.WithDescription("Number of intake requests processed"),
	)

	intakeDuration, _ := meter.Float64Histogram(
		"intake.duration",
		otelmetric.WithDescription("Intake request processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		intakeCounter:  intakeCounter,
		intakeDuration: intakeDuration,
	}
}

func (o *Observability) RecordIntake(ctx context.Context, status string) {
	if o != nil && o.intakeCounter != nil {
		o.intakeCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordIntakeDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.intakeDuration != nil {
		o.intakeDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
