// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and environment layers override them.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/pipeaudit/internal/domain/schema"
)

// Config contains process configuration for one audit invocation.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for serve mode.
	Addr string `koanf:"addr"`

	// MetricsEnabled toggles Prometheus collection.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// Columns maps canonical field names to source export columns.
	// Unlisted fields use the built-in identity mapping.
	Columns map[string]string `koanf:"columns"`

	// Stages is the ordered funnel stage list.
	Stages []string `koanf:"stages"`

	// Thresholds carries the numeric knobs for the analyzer modules.
	Thresholds schema.Thresholds `koanf:"thresholds"`

	// Calendar configures business-time response measurement.
	Calendar schema.Calendar `koanf:"calendar"`

	// QualityRequiredFields are the canonical fields checked for
	// completeness.
	QualityRequiredFields []string `koanf:"quality_required_fields"`

	// NormalizeByLeadSource buckets rep comparison by lead source.
	NormalizeByLeadSource bool `koanf:"normalize_by_lead_source"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9090",
		MetricsEnabled: true,
		Stages: []string{
			"Lead", "Qualified", "Demo", "Proposal", "Negotiation", "Closed Won",
		},
		Thresholds: schema.Thresholds{
			StaleDays:        schema.DefaultStaleDays,
			SpeedTargetHours: schema.DefaultSpeedTargetHours,
			MinQualityScore:  schema.DefaultMinQualityScore,
			MinSampleSize:    schema.DefaultMinSampleSize,
			Dropoff:          schema.DefaultDropoff,
		},
		Calendar: schema.Calendar{
			WorkdayStartHour: schema.DefaultWorkdayStart,
			WorkdayEndHour:   schema.DefaultWorkdayEnd,
		},
		QualityRequiredFields: []string{
			schema.FieldName, schema.FieldOwner, schema.FieldAmount, schema.FieldEmail,
		},
		NormalizeByLeadSource: true,
	}
}

// Resolve freezes the run configuration. Resolution failures are fatal to
// the whole run.
func (c *Config) Resolve() (*schema.Resolved, error) {
	return schema.Resolve(c.Columns, c.Stages, c.Thresholds, c.Calendar)
}
