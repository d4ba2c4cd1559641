// Package repperf aggregates per-owner pipeline metrics and ranks owners by
// a baseline-adjusted relative score, so reps working different lead pools
// are compared fairly.
package repperf

import (
	"sort"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/pkg/stats"
)

// Metric names an owner-level measurement.
type Metric string

// Supported metrics.
const (
	MetricConversionRate Metric = "conversion_rate"
	MetricAvgDealSize    Metric = "avg_deal_size"
	MetricCycleTime      Metric = "cycle_time"
	MetricActivityCount  Metric = "activity_count"
)

// DefaultMetrics is the full metric set.
var DefaultMetrics = []Metric{
	MetricConversionRate, MetricAvgDealSize, MetricCycleTime, MetricActivityCount,
}

const (
	defaultMinSampleSize = 5
	hoursPerDay          = 24
)

// OwnerMetrics holds the raw per-owner aggregates. Values that cannot be
// computed (no closed deals, no won deals) are nil.
type OwnerMetrics struct {
	Owner              string
	Deals              int
	DealIDs            []string
	ConversionRate     *float64 // won / closed
	AvgDealSize        *float64 // mean amount over won deals
	TotalRevenue       float64  // summed amount over won deals
	AvgCycleDays       *float64 // mean created->closed days over closed deals
	ActivitiesPerDeal  *float64
	InsufficientSample bool // below the ranking minimum; kept out of Ranking
}

// RankedOwner is one row of the comparative ranking.
type RankedOwner struct {
	Rank  int
	Owner string
	// Score is the mean across requested metrics of the owner's relative
	// score within each normalization bucket.
	Score float64
}

// Recommendation is one rule firing for one owner.
type Recommendation struct {
	Owner   string
	Rule    string
	Message string
}

// Rule documents one entry of the coaching rule table.
type Rule struct {
	Name      string
	Condition string
	Advice    string
}

// Factors used by the coaching rules, relative to the team mean.
const (
	LowConversionFactor = 0.8
	HighActivityFactor  = 1.2
	SlowCycleFactor     = 1.3
	LowCoverageFactor   = 0.5
)

// Rules is the complete coaching rule table. Recommendations come only
// from these rules.
var Rules = []Rule{
	{
		Name:      "deal_qualification",
		Condition: "conversion rate below 80% of team mean while activities per deal exceed 120% of team mean",
		Advice:    "High effort with low conversion: review deal qualification criteria.",
	},
	{
		Name:      "slow_cycle",
		Condition: "average cycle time above 130% of team mean",
		Advice:    "Deals close slowly: check for stalled stages and follow-up cadence.",
	},
	{
		Name:      "low_coverage",
		Condition: "activities per deal below 50% of team mean",
		Advice:    "Deals see little activity: increase touch frequency on open pipeline.",
	},
}

// Result is the immutable outcome of one comparison pass.
type Result struct {
	// Owners carries raw metrics for every owner, sorted by name, including
	// owners excluded from ranking for insufficient sample.
	Owners []OwnerMetrics

	// Ranking is sorted by score descending, ties by owner name.
	Ranking []RankedOwner

	// Recommendations are sorted by owner, then rule-table order.
	Recommendations []Recommendation

	// NormalizedBy names the bucketing dimension, empty for none.
	NormalizedBy string
}

// Comparator computes owner comparisons.
type Comparator struct {
	metrics       []Metric
	minSampleSize int
	normalizeByLS bool
}

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithMetrics restricts the requested metric set.
func WithMetrics(metrics []Metric) Option {
	return func(c *Comparator) {
		if len(metrics) > 0 {
			c.metrics = metrics
		}
	}
}

// WithMinSampleSize excludes owners with fewer deals from ranking.
func WithMinSampleSize(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.minSampleSize = n
		}
	}
}

// WithLeadSourceNormalization buckets comparisons by deal lead source, so
// owners fed different-quality pools are scored against their own baseline.
func WithLeadSourceNormalization() Option {
	return func(c *Comparator) {
		c.normalizeByLS = true
	}
}

// New creates a Comparator with the given options.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		metrics:       DefaultMetrics,
		minSampleSize: defaultMinSampleSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare aggregates metrics per owner and ranks owners by relative score.
// The result is independent of input row order.
func (c *Comparator) Compare(deals []model.Deal, activities []model.Activity) Result {
	actsByDeal := make(map[string]int, len(activities))
	for _, act := range activities {
		actsByDeal[act.DealID]++
	}

	byOwner := make(map[string][]model.Deal)
	for _, deal := range deals {
		byOwner[deal.Owner] = append(byOwner[deal.Owner], deal)
	}

	res := Result{
		Owners:          make([]OwnerMetrics, 0, len(byOwner)),
		Ranking:         make([]RankedOwner, 0, len(byOwner)),
		Recommendations: make([]Recommendation, 0),
	}
	if c.normalizeByLS {
		res.NormalizedBy = "lead_source"
	}

	for owner, ownerDeals := range byOwner {
		om := computeOwnerMetrics(owner, ownerDeals, actsByDeal)
		om.InsufficientSample = om.Deals < c.minSampleSize
		res.Owners = append(res.Owners, om)
	}
	sort.Slice(res.Owners, func(i, j int) bool { return res.Owners[i].Owner < res.Owners[j].Owner })

	res.Ranking = c.rank(byOwner, actsByDeal)
	res.Recommendations = recommend(res.Owners)

	return res
}

// computeOwnerMetrics aggregates one owner's deals. A nil actsByDeal-backed
// count still yields zero activities per deal, not nil, since an empty
// activity stream is a real observation for an owner with deals.
func computeOwnerMetrics(owner string, ownerDeals []model.Deal, actsByDeal map[string]int) OwnerMetrics {
	om := OwnerMetrics{Owner: owner, Deals: len(ownerDeals)}
	om.DealIDs = make([]string, 0, len(ownerDeals))

	var won, closed, acts int
	var wonAmounts, cycleDays []float64
	for _, d := range ownerDeals {
		om.DealIDs = append(om.DealIDs, d.ID)
		acts += actsByDeal[d.ID]
		if d.Closed() {
			closed++
		}
		if d.Won() {
			won++
			wonAmounts = append(wonAmounts, d.Amount)
			om.TotalRevenue += d.Amount
		}
		if d.Closed() && d.ClosedAt != nil {
			cycleDays = append(cycleDays, d.ClosedAt.Sub(d.CreatedAt).Hours()/hoursPerDay)
		}
	}
	sort.Strings(om.DealIDs)

	if closed > 0 {
		rate := float64(won) / float64(closed)
		om.ConversionRate = &rate
	}
	if mean, ok := stats.Mean(wonAmounts); ok {
		om.AvgDealSize = &mean
	}
	if mean, ok := stats.Mean(cycleDays); ok {
		om.AvgCycleDays = &mean
	}
	if len(ownerDeals) > 0 {
		perDeal := float64(acts) / float64(len(ownerDeals))
		om.ActivitiesPerDeal = &perDeal
	}
	return om
}

// rank produces the normalized ranking. For every requested metric and
// every normalization bucket, each owner's bucket value is turned into a
// z-like score against the bucket mean; an owner's metric score is the mean
// over buckets, and the final score the mean over metrics. Zero bucket
// deviation scores zero. Lower-is-better metrics contribute negated.
func (c *Comparator) rank(byOwner map[string][]model.Deal, actsByDeal map[string]int) []RankedOwner {
	// bucket -> owner -> deals
	buckets := make(map[string]map[string][]model.Deal)
	for owner, ownerDeals := range byOwner {
		for _, d := range ownerDeals {
			key := ""
			if c.normalizeByLS {
				key = d.LeadSource
			}
			if buckets[key] == nil {
				buckets[key] = make(map[string][]model.Deal)
			}
			buckets[key][owner] = append(buckets[key][owner], d)
		}
	}

	// Float sums must happen in a fixed order or scores can drift at the
	// last ULP between runs, so bucket and owner maps are walked sorted.
	bucketKeys := make([]string, 0, len(buckets))
	for key := range buckets {
		bucketKeys = append(bucketKeys, key)
	}
	sort.Strings(bucketKeys)

	scoreSum := make(map[string]float64)
	scoreCnt := make(map[string]int)

	for _, metric := range c.metrics {
		// owner -> mean relative score across buckets for this metric
		perOwnerSum := make(map[string]float64)
		perOwnerCnt := make(map[string]int)

		for _, key := range bucketKeys {
			owners := buckets[key]
			sorted := make([]string, 0, len(owners))
			for owner := range owners {
				sorted = append(sorted, owner)
			}
			sort.Strings(sorted)

			var names []string
			var values []float64
			for _, owner := range sorted {
				if v, ok := metricValue(metric, owners[owner], actsByDeal); ok {
					names = append(names, owner)
					values = append(values, v)
				}
			}
			mean, ok := stats.Mean(values)
			if !ok {
				continue
			}
			sd, _ := stats.StdDev(values)
			for i, owner := range names {
				var z float64
				if sd > 0 {
					z = (values[i] - mean) / sd
				}
				if metric == MetricCycleTime {
					z = -z // faster cycles rank higher
				}
				perOwnerSum[owner] += z
				perOwnerCnt[owner]++
			}
		}

		for owner, sum := range perOwnerSum {
			scoreSum[owner] += sum / float64(perOwnerCnt[owner])
			scoreCnt[owner]++
		}
	}

	ranking := make([]RankedOwner, 0, len(byOwner))
	for owner, ownerDeals := range byOwner {
		if len(ownerDeals) < c.minSampleSize {
			continue
		}
		var score float64
		if scoreCnt[owner] > 0 {
			score = scoreSum[owner] / float64(scoreCnt[owner])
		}
		ranking = append(ranking, RankedOwner{Owner: owner, Score: score})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].Owner < ranking[j].Owner
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	return ranking
}

// metricValue computes one metric over one owner's deals within a bucket.
func metricValue(metric Metric, bucketDeals []model.Deal, actsByDeal map[string]int) (float64, bool) {
	switch metric {
	case MetricConversionRate:
		var won, closed int
		for _, d := range bucketDeals {
			if d.Closed() {
				closed++
			}
			if d.Won() {
				won++
			}
		}
		if closed == 0 {
			return 0, false
		}
		return float64(won) / float64(closed), true
	case MetricAvgDealSize:
		var amounts []float64
		for _, d := range bucketDeals {
			if d.Won() {
				amounts = append(amounts, d.Amount)
			}
		}
		return stats.Mean(amounts)
	case MetricCycleTime:
		var days []float64
		for _, d := range bucketDeals {
			if d.Closed() && d.ClosedAt != nil {
				days = append(days, d.ClosedAt.Sub(d.CreatedAt).Hours()/hoursPerDay)
			}
		}
		return stats.Mean(days)
	case MetricActivityCount:
		if len(bucketDeals) == 0 {
			return 0, false
		}
		var acts int
		for _, d := range bucketDeals {
			acts += actsByDeal[d.ID]
		}
		return float64(acts) / float64(len(bucketDeals)), true
	default:
		return 0, false
	}
}

// recommend applies the rule table against team means over raw owner
// metrics. owners must be sorted by name so output order is stable.
func recommend(owners []OwnerMetrics) []Recommendation {
	var convs, cycles, acts []float64
	for _, om := range owners {
		if om.ConversionRate != nil {
			convs = append(convs, *om.ConversionRate)
		}
		if om.AvgCycleDays != nil {
			cycles = append(cycles, *om.AvgCycleDays)
		}
		if om.ActivitiesPerDeal != nil {
			acts = append(acts, *om.ActivitiesPerDeal)
		}
	}
	convMean, hasConv := stats.Mean(convs)
	cycleMean, hasCycle := stats.Mean(cycles)
	actMean, hasActs := stats.Mean(acts)

	recs := make([]Recommendation, 0)
	for _, om := range owners {
		if hasConv && hasActs && om.ConversionRate != nil && om.ActivitiesPerDeal != nil &&
			*om.ConversionRate < convMean*LowConversionFactor &&
			*om.ActivitiesPerDeal > actMean*HighActivityFactor {
			recs = append(recs, Recommendation{Owner: om.Owner, Rule: Rules[0].Name, Message: Rules[0].Advice})
		}
		if hasCycle && om.AvgCycleDays != nil && *om.AvgCycleDays > cycleMean*SlowCycleFactor {
			recs = append(recs, Recommendation{Owner: om.Owner, Rule: Rules[1].Name, Message: Rules[1].Advice})
		}
		if hasActs && om.ActivitiesPerDeal != nil && *om.ActivitiesPerDeal < actMean*LowCoverageFactor {
			recs = append(recs, Recommendation{Owner: om.Owner, Rule: Rules[2].Name, Message: Rules[2].Advice})
		}
	}
	return recs
}
