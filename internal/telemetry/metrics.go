// Package telemetry bridges OpenTelemetry metrics into the Prometheus
// registry served on /metrics.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// ShutdownFunc stops the meter provider.
type ShutdownFunc func(ctx context.Context) error

// InitMeterProvider registers a global MeterProvider whose instruments are
// exported through reg. Instrumentation such as otelhttp records into it.
func InitMeterProvider(reg prometheus.Registerer, serviceName string) (ShutdownFunc, error) {
	exporter, err := prometheusexporter.New(
		prometheusexporter.WithRegisterer(reg),
		prometheusexporter.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName))),
	)
	otel.SetMeterProvider(mp)
	log.Debug().Str("service", serviceName).Msg("OpenTelemetry MeterProvider initialized with Prometheus exporter")

	return func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error shutting down OpenTelemetry MeterProvider")
			return err
		}
		return nil
	}, nil
}
