package app

import (
	"time"

	"github.com/okian/pipeaudit/pkg/logger"
	"github.com/okian/pipeaudit/pkg/metrics"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics sets a custom metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.met = m
		}
	}
}

// WithReferenceTime pins the dead-deal staleness reference instant.
// Without it the latest updated-at in the dataset is used.
func WithReferenceTime(t time.Time) Option {
	return func(o *Orchestrator) {
		o.reference = &t
	}
}

// WithWindow restricts funnel analysis to deals created in [start, end].
// Either bound may be the zero time to leave that side open.
func WithWindow(start, end time.Time) Option {
	return func(o *Orchestrator) {
		o.windowStart = start
		o.windowEnd = end
	}
}

// WithQualityRequiredFields sets the canonical fields the data-quality
// module checks for completeness.
func WithQualityRequiredFields(fields []string) Option {
	return func(o *Orchestrator) {
		o.qualityFields = fields
	}
}

// WithLeadSourceNormalization toggles lead-source bucketing for the rep
// comparison.
func WithLeadSourceNormalization(enabled bool) Option {
	return func(o *Orchestrator) {
		o.normalizeByLS = enabled
	}
}
