package repperf_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/modules/repperf"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func closedDeal(id, owner string, status model.Status, amount float64, cycleDays int) model.Deal {
	closed := start.AddDate(0, 0, cycleDays)
	return model.Deal{
		ID: id, Owner: owner, Status: status, Amount: amount,
		CreatedAt: start, UpdatedAt: closed, ClosedAt: &closed,
		LeadSource: "inbound",
	}
}

func acts(dealID string, n int) []model.Activity {
	out := make([]model.Activity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Activity{
			ID:     fmt.Sprintf("%s-a%d", dealID, i),
			DealID: dealID,
			TS:     start.Add(time.Duration(i) * time.Hour),
			Type:   model.ActivityCall,
		})
	}
	return out
}

// team builds a strong owner (alice), a weak one (ben), and one owner below
// any reasonable sample minimum (carol).
func team() ([]model.Deal, []model.Activity) {
	deals := []model.Deal{
		closedDeal("A1", "alice", model.StatusWon, 10000, 10),
		closedDeal("A2", "alice", model.StatusWon, 20000, 10),
		closedDeal("A3", "alice", model.StatusLost, 8000, 10),
		closedDeal("B1", "ben", model.StatusWon, 5000, 30),
		closedDeal("B2", "ben", model.StatusLost, 4000, 30),
		closedDeal("B3", "ben", model.StatusLost, 3000, 30),
		{ID: "C1", Owner: "carol", Status: model.StatusOpen, Amount: 1000,
			CreatedAt: start, UpdatedAt: start, LeadSource: "inbound"},
	}
	var activities []model.Activity
	for _, id := range []string{"A1", "A2", "A3"} {
		activities = append(activities, acts(id, 4)...)
	}
	activities = append(activities, acts("B1", 1)...)
	return deals, activities
}

func TestCompare(t *testing.T) {
	Convey("Given a strong rep, a weak rep, and an under-sampled rep", t, func() {
		deals, activities := team()
		comparator := repperf.New(repperf.WithMinSampleSize(2))

		Convey("When compared", func() {
			res := comparator.Compare(deals, activities)

			Convey("Then raw metrics cover every owner, sorted by name", func() {
				So(res.Owners, ShouldHaveLength, 3)
				So(res.Owners[0].Owner, ShouldEqual, "alice")
				So(res.Owners[1].Owner, ShouldEqual, "ben")
				So(res.Owners[2].Owner, ShouldEqual, "carol")
			})

			Convey("And alice's aggregates are correct", func() {
				alice := res.Owners[0]
				So(alice.Deals, ShouldEqual, 3)
				So(*alice.ConversionRate, ShouldAlmostEqual, 2.0/3.0)
				So(*alice.AvgDealSize, ShouldAlmostEqual, 15000)
				So(alice.TotalRevenue, ShouldAlmostEqual, 30000)
				So(*alice.AvgCycleDays, ShouldAlmostEqual, 10)
				So(*alice.ActivitiesPerDeal, ShouldAlmostEqual, 4)
			})

			Convey("And the open-only owner has no conversion or cycle metrics", func() {
				carol := res.Owners[2]
				So(carol.ConversionRate, ShouldBeNil)
				So(carol.AvgCycleDays, ShouldBeNil)
				So(carol.InsufficientSample, ShouldBeTrue)
			})

			Convey("And ranking excludes the under-sampled owner", func() {
				So(res.Ranking, ShouldHaveLength, 2)
				So(res.Ranking[0].Owner, ShouldEqual, "alice")
				So(res.Ranking[0].Rank, ShouldEqual, 1)
				So(res.Ranking[1].Owner, ShouldEqual, "ben")
				So(res.Ranking[1].Rank, ShouldEqual, 2)
			})

			Convey("And coaching recommendations come from the rule table only", func() {
				So(res.Recommendations, ShouldHaveLength, 3)
				So(res.Recommendations[0].Owner, ShouldEqual, "ben")
				So(res.Recommendations[0].Rule, ShouldEqual, "slow_cycle")
				So(res.Recommendations[1].Owner, ShouldEqual, "ben")
				So(res.Recommendations[1].Rule, ShouldEqual, "low_coverage")
				So(res.Recommendations[2].Owner, ShouldEqual, "carol")
				So(res.Recommendations[2].Rule, ShouldEqual, "low_coverage")
			})
		})

		Convey("When input row order is reversed", func() {
			res := comparator.Compare(deals, activities)

			reversed := make([]model.Deal, len(deals))
			for i, d := range deals {
				reversed[len(deals)-1-i] = d
			}
			again := comparator.Compare(reversed, activities)

			Convey("Then the result is identical", func() {
				So(cmp.Diff(res, again), ShouldBeEmpty)
			})
		})
	})

	Convey("Given lead-source normalization with single-owner pools", t, func() {
		easy := closedDeal("A1", "alice", model.StatusWon, 10000, 5)
		easy.LeadSource = "inbound"
		hard := closedDeal("B1", "ben", model.StatusLost, 10000, 40)
		hard.LeadSource = "outbound"

		res := repperf.New(
			repperf.WithMinSampleSize(1),
			repperf.WithLeadSourceNormalization(),
		).Compare([]model.Deal{easy, hard}, nil)

		Convey("Then the bucketing dimension is reported", func() {
			So(res.NormalizedBy, ShouldEqual, "lead_source")
		})

		Convey("And a one-owner pool scores zero rather than dominating", func() {
			So(res.Ranking, ShouldHaveLength, 2)
			So(res.Ranking[0].Score, ShouldAlmostEqual, 0)
			So(res.Ranking[1].Score, ShouldAlmostEqual, 0)
			So(res.Ranking[0].Owner, ShouldEqual, "alice")
		})
	})

	Convey("Given multiple normalization buckets shared by multiple owners", t, func() {
		var deals []model.Deal
		n := 0
		for _, source := range []string{"inbound", "outbound", "referral"} {
			for _, owner := range []string{"alice", "ben"} {
				n++
				won := closedDeal(fmt.Sprintf("D%d", n), owner, model.StatusWon, float64(1000*n), 5+n)
				won.LeadSource = source
				n++
				lost := closedDeal(fmt.Sprintf("D%d", n), owner, model.StatusLost, float64(900*n), 10+n)
				lost.LeadSource = source
				deals = append(deals, won, lost)
			}
		}
		comparator := repperf.New(
			repperf.WithMinSampleSize(1),
			repperf.WithLeadSourceNormalization(),
		)

		Convey("Then repeated runs score identically", func() {
			first := comparator.Compare(deals, nil)
			for i := 0; i < 5; i++ {
				So(cmp.Diff(first, comparator.Compare(deals, nil)), ShouldBeEmpty)
			}
		})
	})

	Convey("Given a restricted metric set", t, func() {
		deals, activities := team()
		res := repperf.New(
			repperf.WithMinSampleSize(2),
			repperf.WithMetrics([]repperf.Metric{repperf.MetricCycleTime}),
		).Compare(deals, activities)

		Convey("Then faster cycles rank higher", func() {
			So(res.Ranking[0].Owner, ShouldEqual, "alice")
			So(res.Ranking[0].Score, ShouldBeGreaterThan, res.Ranking[1].Score)
		})
	})

	Convey("Given no deals", t, func() {
		res := repperf.New().Compare(nil, nil)

		Convey("Then the result is empty but non-nil", func() {
			So(res.Owners, ShouldBeEmpty)
			So(res.Ranking, ShouldBeEmpty)
			So(res.Recommendations, ShouldBeEmpty)
		})
	})
}
