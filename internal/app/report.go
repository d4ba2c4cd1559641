// Package app runs the audit: it normalizes raw rows once, fans the
// analyzer modules out over the read-only canonical dataset, and merges
// their results into a single report aggregate.
package app

import (
	"time"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/modules/deaddeal"
	"github.com/okian/pipeaudit/internal/modules/funnel"
	"github.com/okian/pipeaudit/internal/modules/quality"
	"github.com/okian/pipeaudit/internal/modules/repperf"
	"github.com/okian/pipeaudit/internal/modules/speedtolead"
)

// Module names as they appear in ModuleStatus and metrics labels.
const (
	ModuleDeadDeals      = "dead_deals"
	ModuleSpeedToLead    = "speed_to_lead"
	ModuleFunnel         = "funnel"
	ModuleRepPerformance = "rep_performance"
	ModuleDataQuality    = "data_quality"
)

// ModuleStatus records the outcome of one module run. A failed module
// leaves its result pointer nil and carries the reason here; other modules
// are unaffected.
type ModuleStatus struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the aggregate handed to rendering. It is built once per run
// and never mutated afterwards.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	DealCount     int     `json:"deal_count"`
	ActivityCount int     `json:"activity_count"`
	TotalValue    float64 `json:"total_value"`
	OpenValue     float64 `json:"open_value"`

	// Quarantine surfaces every rejected row; nothing is silently dropped.
	Quarantine []model.QuarantinedRecord `json:"quarantine"`

	// Modules follows the orchestrator's fixed module table order.
	Modules []ModuleStatus `json:"modules"`

	DeadDeals      *deaddeal.Result    `json:"dead_deals,omitempty"`
	SpeedToLead    *speedtolead.Result `json:"speed_to_lead,omitempty"`
	Funnel         *funnel.Result      `json:"funnel,omitempty"`
	RepPerformance *repperf.Result     `json:"rep_performance,omitempty"`
	DataQuality    *quality.Result     `json:"data_quality,omitempty"`

	// MinQualityScore echoes the configured health bar for rendering.
	MinQualityScore int `json:"min_quality_score"`
}

// Status returns the status entry for a module name.
func (r *Report) Status(name string) (ModuleStatus, bool) {
	for _, st := range r.Modules {
		if st.Name == name {
			return st, true
		}
	}
	return ModuleStatus{}, false
}
