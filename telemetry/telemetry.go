// Package telemetry installs an OpenTelemetry MeterProvider for the gridnav
// binaries.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ErrUnknownExporter is returned for an exporter name Init does not know.
var ErrUnknownExporter = errors.New("telemetry: unknown metric exporter")

// Config selects how metrics leave the process.
type Config struct {
	ServiceName string
	// MetricExporter is "prometheus", "stdout" or "none".
	MetricExporter string
	// Writer receives stdout exports; nil means os.Stdout.
	Writer io.Writer
}

// Telemetry owns the installed provider.
type Telemetry struct {
	Provider *metric.MeterProvider
	handler  http.Handler
}

// Init builds a MeterProvider for cfg and installs it globally. With "none"
// it returns a nil Telemetry and leaves the global no-op provider alone.
func Init(cfg Config) (*Telemetry, error) {
	if cfg.MetricExporter == "" || cfg.MetricExporter == "none" {
		return nil, nil
	}
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	t := &Telemetry{}
	switch cfg.MetricExporter {
	case "prometheus":
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		t.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		t.Provider = metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		)

	case "stdout":
		opts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
		if cfg.Writer != nil {
			opts = append(opts, stdoutmetric.WithWriter(cfg.Writer))
		}
		exporter, err := stdoutmetric.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		t.Provider = metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(exporter)),
		)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}

	otel.SetMeterProvider(t.Provider)
	return t, nil
}

// Handler serves the Prometheus scrape endpoint, or nil for other exporters.
func (t *Telemetry) Handler() http.Handler {
	if t == nil {
		return nil
	}
	return t.handler
}

// Shutdown flushes and stops the provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.Provider == nil {
		return nil
	}
	return t.Provider.Shutdown(ctx)
}
