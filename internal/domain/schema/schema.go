// Package schema resolves user-supplied field mappings, thresholds, and the
// ordered stage list into a single immutable configuration used by the rest
// of a run. Resolution happens once; downstream packages only ever see
// canonical field names.
package schema

import (
	"fmt"
	"strings"
)

// Canonical deal field names.
const (
	FieldDealID     = "deal_id"
	FieldName       = "name"
	FieldStage      = "stage"
	FieldAmount     = "amount"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
	FieldClosedAt   = "closed_at"
	FieldOwner      = "owner"
	FieldStatus     = "status"
	FieldLeadSource = "lead_source"
	FieldEmail      = "email"
	FieldPhone      = "phone"
)

// Canonical activity field names.
const (
	FieldActivityID   = "activity_id"
	FieldActivityDeal = "activity_deal_id"
	FieldActivityTS   = "activity_ts"
	FieldActivityType = "activity_type"
	FieldQualifying   = "qualifying"
)

// requiredDealFields must resolve to a source column for a run to start.
var requiredDealFields = []string{
	FieldDealID, FieldStage, FieldAmount, FieldCreatedAt,
	FieldUpdatedAt, FieldOwner, FieldStatus,
}

// requiredActivityFields must resolve when activities are supplied.
var requiredActivityFields = []string{FieldActivityDeal, FieldActivityTS}

// defaultSourceColumns is the identity-style mapping used when the caller
// does not override a canonical field. Activity fields drop their prefix so
// a plain activities export ("deal_id,ts,type,qualifying") works untouched.
var defaultSourceColumns = map[string]string{
	FieldDealID:       "deal_id",
	FieldName:         "name",
	FieldStage:        "stage",
	FieldAmount:       "amount",
	FieldCreatedAt:    "created_at",
	FieldUpdatedAt:    "updated_at",
	FieldClosedAt:     "closed_at",
	FieldOwner:        "owner",
	FieldStatus:       "status",
	FieldLeadSource:   "lead_source",
	FieldEmail:        "email",
	FieldPhone:        "phone",
	FieldActivityID:   "activity_id",
	FieldActivityDeal: "deal_id",
	FieldActivityTS:   "ts",
	FieldActivityType: "type",
	FieldQualifying:   "qualifying",
}

// Range is an inclusive numeric interval.
type Range struct {
	Low  float64 `koanf:"low"`
	High float64 `koanf:"high"`
}

// Thresholds carries the named numeric knobs consumed by the analyzer
// modules. Zero values are replaced by defaults during resolution.
type Thresholds struct {
	// StaleDays is the dead-deal inactivity threshold in days.
	StaleDays int `koanf:"stale_days"`

	// MinDeadAmount filters dead-deal detection to deals at or above it.
	MinDeadAmount float64 `koanf:"min_dead_amount"`

	// SpeedTargetHours is the speed-to-lead response target.
	SpeedTargetHours float64 `koanf:"speed_target_hours"`

	// MinQualityScore is the data-quality score below which the report
	// marks the dataset unhealthy.
	MinQualityScore int `koanf:"min_quality_score"`

	// MinSampleSize excludes owners with fewer deals from ranking.
	MinSampleSize int `koanf:"min_sample_size"`

	// Dropoff is the expected drop-off range applied to every funnel
	// transition unless overridden per from-stage in DropoffByStage.
	Dropoff Range `koanf:"dropoff"`

	// DropoffByStage overrides Dropoff for the transition leaving the
	// named stage.
	DropoffByStage map[string]Range `koanf:"dropoff_by_stage"`
}

// Calendar configures business-time arithmetic.
type Calendar struct {
	BusinessHoursOnly bool `koanf:"business_hours_only"`
	ExcludeWeekends   bool `koanf:"exclude_weekends"`
	WorkdayStartHour  int  `koanf:"workday_start_hour"`
	WorkdayEndHour    int  `koanf:"workday_end_hour"`
}

// Default threshold values, mirroring the knobs a first audit run needs.
const (
	DefaultStaleDays        = 30
	DefaultSpeedTargetHours = 24.0
	DefaultMinQualityScore  = 70
	DefaultMinSampleSize    = 5
	DefaultWorkdayStart     = 9
	DefaultWorkdayEnd       = 17
)

// DefaultDropoff is the expected drop-off range used when the caller
// configures none.
var DefaultDropoff = Range{Low: 0.10, High: 0.60}

// Resolved is the immutable configuration for one audit run.
type Resolved struct {
	columns    map[string]string
	stages     []string
	stageIndex map[string]int
	thresholds Thresholds
	calendar   Calendar
}

// Resolve validates and freezes the run configuration. mapping may be
// partial or nil; unspecified canonical fields fall back to the defaults.
func Resolve(mapping map[string]string, stages []string, th Thresholds, cal Calendar) (*Resolved, error) {
	columns := make(map[string]string, len(defaultSourceColumns))
	for canonical, source := range defaultSourceColumns {
		columns[canonical] = source
	}
	for canonical, source := range mapping {
		if _, known := defaultSourceColumns[canonical]; !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, canonical)
		}
		columns[canonical] = strings.TrimSpace(source)
	}
	for _, canonical := range requiredDealFields {
		if columns[canonical] == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedField, canonical)
		}
	}
	for _, canonical := range requiredActivityFields {
		if columns[canonical] == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedField, canonical)
		}
	}

	if len(stages) == 0 {
		return nil, ErrEmptyStages
	}
	index := make(map[string]int, len(stages))
	ordered := make([]string, 0, len(stages))
	for i, s := range stages {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: stage %d is blank", ErrEmptyStages, i)
		}
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStage, s)
		}
		index[s] = i
		ordered = append(ordered, s)
	}

	applyThresholdDefaults(&th)
	applyCalendarDefaults(&cal)
	if cal.WorkdayStartHour >= cal.WorkdayEndHour {
		return nil, fmt.Errorf("%w: workday %d..%d", ErrInvalidCalendar, cal.WorkdayStartHour, cal.WorkdayEndHour)
	}

	return &Resolved{
		columns:    columns,
		stages:     ordered,
		stageIndex: index,
		thresholds: th,
		calendar:   cal,
	}, nil
}

func applyThresholdDefaults(th *Thresholds) {
	if th.StaleDays <= 0 {
		th.StaleDays = DefaultStaleDays
	}
	if th.SpeedTargetHours <= 0 {
		th.SpeedTargetHours = DefaultSpeedTargetHours
	}
	if th.MinQualityScore <= 0 {
		th.MinQualityScore = DefaultMinQualityScore
	}
	if th.MinSampleSize <= 0 {
		th.MinSampleSize = DefaultMinSampleSize
	}
	if th.Dropoff == (Range{}) {
		th.Dropoff = DefaultDropoff
	}
}

func applyCalendarDefaults(cal *Calendar) {
	if cal.WorkdayStartHour == 0 && cal.WorkdayEndHour == 0 {
		cal.WorkdayStartHour = DefaultWorkdayStart
		cal.WorkdayEndHour = DefaultWorkdayEnd
	}
}

// Column returns the source column for a canonical field.
func (r *Resolved) Column(canonical string) string {
	return r.columns[canonical]
}

// Stages returns a copy of the ordered stage list.
func (r *Resolved) Stages() []string {
	out := make([]string, len(r.stages))
	copy(out, r.stages)
	return out
}

// StageIndex returns the funnel position of a stage name.
func (r *Resolved) StageIndex(stage string) (int, bool) {
	i, ok := r.stageIndex[stage]
	return i, ok
}

// StageCount returns the number of configured stages.
func (r *Resolved) StageCount() int { return len(r.stages) }

// Thresholds returns the resolved threshold set.
func (r *Resolved) Thresholds() Thresholds {
	th := r.thresholds
	if th.DropoffByStage != nil {
		byStage := make(map[string]Range, len(th.DropoffByStage))
		for k, v := range th.DropoffByStage {
			byStage[k] = v
		}
		th.DropoffByStage = byStage
	}
	return th
}

// DropoffRange returns the expected drop-off range for the transition
// leaving fromStage.
func (r *Resolved) DropoffRange(fromStage string) Range {
	if rg, ok := r.thresholds.DropoffByStage[fromStage]; ok {
		return rg
	}
	return r.thresholds.Dropoff
}

// Calendar returns the resolved business-calendar policy.
func (r *Resolved) Calendar() Calendar { return r.calendar }
