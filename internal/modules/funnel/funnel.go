// Package funnel computes ordered stage-to-stage conversion rates and flags
// abnormal drop-offs against configured expected ranges.
package funnel

import (
	"time"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/domain/schema"
)

// StageCount reports how many deals reached a stage.
type StageCount struct {
	Stage    string
	Index    int
	Reaching int
	DealIDs  []string // contributing deal ids, input order
}

// Transition describes one stage-to-stage conversion.
type Transition struct {
	From string
	To   string

	// Conversion is reaching(to)/reaching(from). Nil when no deal reached
	// the from stage.
	Conversion *float64

	// Dropoff is 1 - Conversion; nil alongside it.
	Dropoff *float64

	// Expected is the configured acceptable drop-off range.
	Expected schema.Range

	// Bottleneck is set iff Dropoff strictly exceeds Expected.High.
	Bottleneck bool
}

// Result is the immutable outcome of one funnel pass.
type Result struct {
	// Stages follows configured funnel order; counts are non-increasing.
	Stages []StageCount

	// Transitions has len(Stages)-1 entries in stage order. Multiple
	// bottlenecks keep stage order, which makes output deterministic.
	Transitions []Transition

	// Biggest indexes the transition with the largest margin over its
	// expected high bound, ties to the earliest stage. Nil when no
	// transition is a bottleneck.
	Biggest *int

	// StageDurations are not computable from exports without per-stage
	// timestamps; the flag makes the degradation explicit instead of
	// estimating.
	StageDurationsComputable bool

	// WindowStart/WindowEnd echo an applied created-at filter.
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// Analyzer computes funnel conversion metrics.
type Analyzer struct {
	cfg         *schema.Resolved
	windowStart *time.Time
	windowEnd   *time.Time
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithWindow keeps only deals created in [start, end]. Either bound may be
// the zero time to leave that side open.
func WithWindow(start, end time.Time) Option {
	return func(a *Analyzer) {
		if !start.IsZero() {
			a.windowStart = &start
		}
		if !end.IsZero() {
			a.windowEnd = &end
		}
	}
}

// New creates an Analyzer over the resolved stage configuration.
func New(cfg *schema.Resolved, opts ...Option) *Analyzer {
	a := &Analyzer{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze counts, per stage, the deals that advanced to or past it. A won
// deal counts as having passed every stage regardless of its recorded
// stage.
func (a *Analyzer) Analyze(deals []model.Deal) Result {
	stages := a.cfg.Stages()
	res := Result{
		Stages:      make([]StageCount, len(stages)),
		Transitions: make([]Transition, 0, max(len(stages)-1, 0)),
		WindowStart: a.windowStart,
		WindowEnd:   a.windowEnd,
	}
	for i, s := range stages {
		res.Stages[i] = StageCount{Stage: s, Index: i, DealIDs: make([]string, 0)}
	}

	lastIdx := len(stages) - 1
	for _, deal := range deals {
		if !a.inWindow(deal.CreatedAt) {
			continue
		}
		reached, ok := a.cfg.StageIndex(deal.Stage)
		if !ok {
			continue
		}
		if deal.Won() {
			reached = lastIdx
		}
		for i := 0; i <= reached; i++ {
			res.Stages[i].Reaching++
			res.Stages[i].DealIDs = append(res.Stages[i].DealIDs, deal.ID)
		}
	}

	var bestMargin float64
	for i := 0; i+1 < len(stages); i++ {
		tr := Transition{
			From:     stages[i],
			To:       stages[i+1],
			Expected: a.cfg.DropoffRange(stages[i]),
		}
		if from := res.Stages[i].Reaching; from > 0 {
			conv := float64(res.Stages[i+1].Reaching) / float64(from)
			drop := 1 - conv
			tr.Conversion = &conv
			tr.Dropoff = &drop
			// Strict inequality: a drop-off exactly at the bound is
			// within expectation.
			if drop > tr.Expected.High {
				tr.Bottleneck = true
				margin := drop - tr.Expected.High
				if res.Biggest == nil || margin > bestMargin {
					idx := i
					res.Biggest = &idx
					bestMargin = margin
				}
			}
		}
		res.Transitions = append(res.Transitions, tr)
	}

	return res
}

func (a *Analyzer) inWindow(created time.Time) bool {
	if a.windowStart != nil && created.Before(*a.windowStart) {
		return false
	}
	if a.windowEnd != nil && created.After(*a.windowEnd) {
		return false
	}
	return true
}
