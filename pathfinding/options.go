package pathfinding

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DefaultSliceBudget is the wall-clock time one Tick may spend expanding nodes.
const DefaultSliceBudget = time.Millisecond

// Options tunes a Finder.
type Options struct {
	// SliceBudget bounds the wall-clock work of one Tick.
	SliceBudget time.Duration
	// ExpansionLimit caps node expansions per Tick; 0 means no cap.
	ExpansionLimit int
	// Now is the clock checked against the slice deadline.
	Now           func() time.Time
	Logger        *slog.Logger
	QueueCapacity int
	MeterProvider metric.MeterProvider
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithSliceBudget sets the per-Tick time budget.
func WithSliceBudget(d time.Duration) Option {
	return func(o *Options) { o.SliceBudget = d }
}

// WithExpansionLimit caps how many nodes one Tick may expand.
func WithExpansionLimit(n int) Option {
	return func(o *Options) { o.ExpansionLimit = n }
}

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithLogger sets the logger used for search lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithQueueCapacity presizes the open queue.
func WithQueueCapacity(n int) Option {
	return func(o *Options) { o.QueueCapacity = n }
}

// WithMeterProvider sets where search metrics are reported.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) { o.MeterProvider = mp }
}

func buildOptions(options []Option) Options {
	opts := Options{
		SliceBudget:   DefaultSliceBudget,
		QueueCapacity: defaultQueueCapacity,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}
	return opts
}
