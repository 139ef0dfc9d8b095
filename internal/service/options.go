package service

import (
	"time"

	"inventory-api/internal/metrics"
)

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a KeyStore or Catalog.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp is the instant stored on records: UTC at millisecond precision,
// the resolution every storage backend round-trips.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Millisecond)
}
