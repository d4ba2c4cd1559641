// Package speedtolead measures how quickly reps make first meaningful
// contact on new deals, optionally on a business calendar.
package speedtolead

import (
	"sort"
	"time"

	"github.com/okian/pipeaudit/internal/domain/calendar"
	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/pkg/stats"
)

const defaultTargetHours = 24.0

// OwnerStats aggregates response behavior for one rep.
type OwnerStats struct {
	Owner       string
	Responded   int
	NoResponse  int
	MeanHours   *float64 // nil when the rep has no responded deal
	MedianHours *float64
}

// Result is the immutable outcome of one analysis pass.
type Result struct {
	// MeanHours and MedianHours cover all responded deals. Nil when no
	// deal has a qualifying activity.
	MeanHours   *float64
	MedianHours *float64

	// ByOwner is sorted by owner name.
	ByOwner []OwnerStats

	// BestOwner and WorstOwner are the reps with the lowest and highest
	// mean response hours. Empty when fewer than one (best) or two
	// (worst) reps responded.
	BestOwner  string
	WorstOwner string

	// Correlation is the Pearson coefficient between response hours and
	// the binary won indicator over responded deals. Nil when fewer than
	// two samples exist or either series has zero variance.
	Correlation *float64

	// RespondedIDs and NoResponseIDs partition the analyzed deals.
	RespondedIDs  []string
	NoResponseIDs []string

	// LostOverTargetIDs counts lost deals whose response time exceeded
	// the target. This is a heuristic bound on conversions lost to slow
	// response, not a causal estimate.
	LostOverTargetIDs []string
}

// Analyzer computes speed-to-lead metrics.
type Analyzer struct {
	cal         *calendar.Calendar
	targetHours float64
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithCalendar measures response time on a business calendar instead of
// wall clock.
func WithCalendar(cal *calendar.Calendar) Option {
	return func(a *Analyzer) {
		if cal != nil {
			a.cal = cal
		}
	}
}

// WithTargetHours sets the response-time target used for the lost
// conversion heuristic.
func WithTargetHours(hours float64) Option {
	return func(a *Analyzer) {
		if hours > 0 {
			a.targetHours = hours
		}
	}
}

// New creates an Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		cal:         calendar.New(),
		targetHours: defaultTargetHours,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes per-deal response time as the calendar duration between
// deal creation and its earliest qualifying activity. Deals with no
// qualifying activity are excluded from averages and counted as no
// response.
func (a *Analyzer) Analyze(deals []model.Deal, activities []model.Activity) Result {
	firstTouch := earliestQualifying(activities)

	res := Result{
		ByOwner:           make([]OwnerStats, 0),
		RespondedIDs:      make([]string, 0, len(deals)),
		NoResponseIDs:     make([]string, 0),
		LostOverTargetIDs: make([]string, 0),
	}

	var allHours, wonFlags []float64
	hoursByOwner := make(map[string][]float64)
	noRespByOwner := make(map[string]int)

	for _, deal := range deals {
		touch, ok := firstTouch[deal.ID]
		if !ok {
			res.NoResponseIDs = append(res.NoResponseIDs, deal.ID)
			noRespByOwner[deal.Owner]++
			continue
		}
		hours := a.cal.Between(deal.CreatedAt, touch).Hours()

		res.RespondedIDs = append(res.RespondedIDs, deal.ID)
		allHours = append(allHours, hours)
		if deal.Won() {
			wonFlags = append(wonFlags, 1)
		} else {
			wonFlags = append(wonFlags, 0)
		}
		hoursByOwner[deal.Owner] = append(hoursByOwner[deal.Owner], hours)

		if deal.Status == model.StatusLost && hours > a.targetHours {
			res.LostOverTargetIDs = append(res.LostOverTargetIDs, deal.ID)
		}
	}

	if mean, ok := stats.Mean(allHours); ok {
		res.MeanHours = &mean
	}
	if median, ok := stats.Median(allHours); ok {
		res.MedianHours = &median
	}
	if r, ok := stats.Pearson(allHours, wonFlags); ok {
		res.Correlation = &r
	}

	res.ByOwner = ownerStats(hoursByOwner, noRespByOwner)
	res.BestOwner, res.WorstOwner = bestWorst(res.ByOwner)

	return res
}

// earliestQualifying indexes the first qualifying activity per deal.
func earliestQualifying(activities []model.Activity) map[string]time.Time {
	first := make(map[string]time.Time)
	for _, act := range activities {
		if !act.Qualifying {
			continue
		}
		if ts, ok := first[act.DealID]; !ok || act.TS.Before(ts) {
			first[act.DealID] = act.TS
		}
	}
	return first
}

func ownerStats(hoursByOwner map[string][]float64, noRespByOwner map[string]int) []OwnerStats {
	owners := make(map[string]struct{}, len(hoursByOwner))
	for o := range hoursByOwner {
		owners[o] = struct{}{}
	}
	for o := range noRespByOwner {
		owners[o] = struct{}{}
	}

	out := make([]OwnerStats, 0, len(owners))
	for owner := range owners {
		st := OwnerStats{
			Owner:      owner,
			Responded:  len(hoursByOwner[owner]),
			NoResponse: noRespByOwner[owner],
		}
		if mean, ok := stats.Mean(hoursByOwner[owner]); ok {
			st.MeanHours = &mean
		}
		if median, ok := stats.Median(hoursByOwner[owner]); ok {
			st.MedianHours = &median
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

func bestWorst(byOwner []OwnerStats) (best, worst string) {
	var bestMean, worstMean float64
	responded := 0
	for _, st := range byOwner {
		if st.MeanHours == nil {
			continue
		}
		responded++
		if best == "" || *st.MeanHours < bestMean {
			best, bestMean = st.Owner, *st.MeanHours
		}
		if worst == "" || *st.MeanHours > worstMean {
			worst, worstMean = st.Owner, *st.MeanHours
		}
	}
	// A single responding rep is "best" but calling it also worst would
	// just be noise in the report.
	if responded < 2 {
		worst = ""
	}
	return best, worst
}
