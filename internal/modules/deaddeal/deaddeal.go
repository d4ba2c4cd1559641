// Package deaddeal flags open deals whose inactivity exceeds a staleness
// threshold.
package deaddeal

import (
	"sort"
	"time"

	"github.com/okian/pipeaudit/internal/domain/model"
)

// Default detection thresholds.
const (
	defaultStaleDays = 30
	hoursPerDay      = 24
)

// Result is the immutable outcome of one detection pass.
type Result struct {
	// DealIDs lists dead deals, most stale first, ties by id.
	DealIDs []string

	// DaysStale maps each dead deal id to its staleness in whole days.
	DaysStale map[string]int

	// TotalAmount is the summed amount of dead deals (revenue at risk).
	TotalAmount float64

	// PctOfOpenPipeline is TotalAmount as a percentage of the total open
	// pipeline value. Nil when there is no open pipeline value.
	PctOfOpenPipeline *float64

	// AvgDaysStale is nil when no deal is dead.
	AvgDaysStale *float64

	// ReferenceTime is the instant staleness was measured from.
	ReferenceTime time.Time
}

// Detector finds stale open deals.
type Detector struct {
	staleDays int
	minAmount float64
	reference *time.Time
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithStaleDays sets the inactivity threshold in days.
func WithStaleDays(days int) Option {
	return func(d *Detector) {
		if days > 0 {
			d.staleDays = days
		}
	}
}

// WithMinAmount filters detection to deals at or above the amount.
func WithMinAmount(amount float64) Option {
	return func(d *Detector) {
		if amount > 0 {
			d.minAmount = amount
		}
	}
}

// WithReferenceTime pins the staleness reference instant. Without it the
// latest updated-at across the dataset is used, which keeps repeated runs
// over the same export deterministic.
func WithReferenceTime(t time.Time) Option {
	return func(d *Detector) {
		d.reference = &t
	}
}

// New creates a Detector with the given options.
func New(opts ...Option) *Detector {
	d := &Detector{staleDays: defaultStaleDays}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect scans deals for dead opportunities. A deal is dead iff it is open,
// its inactivity strictly exceeds the stale threshold, and its amount is at
// or above the minimum. Empty input yields a zero-valued result.
func (d *Detector) Detect(deals []model.Deal) Result {
	ref := d.referenceTime(deals)
	threshold := time.Duration(d.staleDays) * hoursPerDay * time.Hour

	res := Result{
		DealIDs:       make([]string, 0),
		DaysStale:     make(map[string]int),
		ReferenceTime: ref,
	}

	var openValue float64
	for _, deal := range deals {
		if deal.Closed() {
			continue
		}
		openValue += deal.Amount
		idle := ref.Sub(deal.UpdatedAt)
		if idle > threshold && deal.Amount >= d.minAmount {
			res.DealIDs = append(res.DealIDs, deal.ID)
			res.DaysStale[deal.ID] = int(idle.Hours() / hoursPerDay)
			res.TotalAmount += deal.Amount
		}
	}

	sort.Slice(res.DealIDs, func(i, j int) bool {
		a, b := res.DealIDs[i], res.DealIDs[j]
		if res.DaysStale[a] != res.DaysStale[b] {
			return res.DaysStale[a] > res.DaysStale[b]
		}
		return a < b
	})

	if openValue > 0 {
		pct := res.TotalAmount / openValue * 100
		res.PctOfOpenPipeline = &pct
	}
	if n := len(res.DealIDs); n > 0 {
		var sum int
		for _, days := range res.DaysStale {
			sum += days
		}
		avg := float64(sum) / float64(n)
		res.AvgDaysStale = &avg
	}

	return res
}

func (d *Detector) referenceTime(deals []model.Deal) time.Time {
	if d.reference != nil {
		return *d.reference
	}
	var latest time.Time
	for _, deal := range deals {
		if deal.UpdatedAt.After(latest) {
			latest = deal.UpdatedAt
		}
	}
	return latest
}
