package pathfinding

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "gridnav.pathfinding"

type searchMetrics struct {
	duration metric.Float64Histogram
	visited  metric.Int64Histogram
	ticks    metric.Int64Histogram
	total    metric.Int64Counter
}

// newSearchMetrics creates the search instruments, falling back to no-op
// instruments when the provider rejects one.
func newSearchMetrics(mp metric.MeterProvider) *searchMetrics {
	m, err := createSearchMetrics(mp.Meter(meterName))
	if err != nil {
		m, _ = createSearchMetrics(noop.NewMeterProvider().Meter(meterName))
	}
	return m
}

func createSearchMetrics(meter metric.Meter) (*searchMetrics, error) {
	var (
		m   searchMetrics
		err error
	)

	m.duration, err = meter.Float64Histogram(
		"pathfinding_search_duration_seconds",
		metric.WithDescription("Wall-clock time from Start to a final state"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.visited, err = meter.Int64Histogram(
		"pathfinding_nodes_visited",
		metric.WithDescription("Nodes popped from the open queue per search"),
	)
	if err != nil {
		return nil, err
	}

	m.ticks, err = meter.Int64Histogram(
		"pathfinding_search_ticks",
		metric.WithDescription("Time slices needed to finish a search"),
	)
	if err != nil {
		return nil, err
	}

	m.total, err = meter.Int64Counter(
		"pathfinding_search_total",
		metric.WithDescription("Searches that reached a final state"),
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// record reports one finished search.
func (m *searchMetrics) record(ctx context.Context, mode Mode, state State, elapsed time.Duration, visited, ticks int) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("outcome", state.String()),
	)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	m.visited.Record(ctx, int64(visited), attrs)
	m.ticks.Record(ctx, int64(ticks), attrs)
	m.total.Add(ctx, 1, attrs)
}
