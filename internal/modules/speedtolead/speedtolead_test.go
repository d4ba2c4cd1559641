package speedtolead_test

import (
	"testing"
	"time"

	"github.com/okian/pipeaudit/internal/domain/calendar"
	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/modules/speedtolead"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) // a Monday

func deal(id, owner string, status model.Status) model.Deal {
	return model.Deal{
		ID:        id,
		Owner:     owner,
		Status:    status,
		CreatedAt: base,
		UpdatedAt: base,
	}
}

func call(id, dealID string, after time.Duration) model.Activity {
	return model.Activity{
		ID:         id,
		DealID:     dealID,
		TS:         base.Add(after),
		Type:       model.ActivityCall,
		Qualifying: true,
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given deals with first-touch activities at 2h and 6h", t, func() {
		deals := []model.Deal{
			deal("D1", "alice", model.StatusWon),
			deal("D2", "ben", model.StatusLost),
			deal("D3", "ben", model.StatusOpen),
		}
		activities := []model.Activity{
			call("A1", "D1", 2*time.Hour),
			call("A2", "D2", 6*time.Hour),
			// later touches on the same deal must not shadow the first
			call("A3", "D1", 48*time.Hour),
		}

		Convey("When analyzed on the wall clock", func() {
			res := speedtolead.New().Analyze(deals, activities)

			Convey("Then mean and median cover responded deals only", func() {
				So(res.MeanHours, ShouldNotBeNil)
				So(*res.MeanHours, ShouldAlmostEqual, 4.0)
				So(res.MedianHours, ShouldNotBeNil)
				So(*res.MedianHours, ShouldAlmostEqual, 4.0)
			})

			Convey("And deals partition into responded and no-response", func() {
				So(res.RespondedIDs, ShouldResemble, []string{"D1", "D2"})
				So(res.NoResponseIDs, ShouldResemble, []string{"D3"})
			})

			Convey("And the won deal responded faster, so correlation is -1", func() {
				So(res.Correlation, ShouldNotBeNil)
				So(*res.Correlation, ShouldAlmostEqual, -1.0, 0.0001)
			})

			Convey("And per-owner stats are sorted by owner", func() {
				So(res.ByOwner, ShouldHaveLength, 2)
				So(res.ByOwner[0].Owner, ShouldEqual, "alice")
				So(res.ByOwner[0].Responded, ShouldEqual, 1)
				So(res.ByOwner[1].Owner, ShouldEqual, "ben")
				So(res.ByOwner[1].Responded, ShouldEqual, 1)
				So(res.ByOwner[1].NoResponse, ShouldEqual, 1)
			})

			Convey("And best and worst owners come from mean hours", func() {
				So(res.BestOwner, ShouldEqual, "alice")
				So(res.WorstOwner, ShouldEqual, "ben")
			})
		})

		Convey("When the target is tighter than the lost deal's response", func() {
			res := speedtolead.New(speedtolead.WithTargetHours(4)).Analyze(deals, activities)

			Convey("Then the lost deal over target is flagged", func() {
				So(res.LostOverTargetIDs, ShouldResemble, []string{"D2"})
			})
		})
	})

	Convey("Given a single responding rep", t, func() {
		deals := []model.Deal{deal("D1", "alice", model.StatusOpen)}
		activities := []model.Activity{call("A1", "D1", time.Hour)}
		res := speedtolead.New().Analyze(deals, activities)

		Convey("Then a worst owner is not reported", func() {
			So(res.BestOwner, ShouldEqual, "alice")
			So(res.WorstOwner, ShouldBeEmpty)
		})

		Convey("And correlation needs at least two samples", func() {
			So(res.Correlation, ShouldBeNil)
		})
	})

	Convey("Given only non-qualifying activities", t, func() {
		deals := []model.Deal{deal("D1", "alice", model.StatusOpen)}
		activities := []model.Activity{{
			ID: "A1", DealID: "D1", TS: base.Add(time.Hour),
			Type: model.ActivityNote, Qualifying: false,
		}}
		res := speedtolead.New().Analyze(deals, activities)

		Convey("Then the deal counts as no response", func() {
			So(res.NoResponseIDs, ShouldResemble, []string{"D1"})
			So(res.MeanHours, ShouldBeNil)
			So(res.MedianHours, ShouldBeNil)
		})
	})

	Convey("Given a business calendar excluding the weekend", t, func() {
		cal := calendar.New(
			calendar.WithBusinessHours(9, 17),
			calendar.WithWeekendsExcluded(),
		)
		// Created Friday 16:00, touched Monday 10:00: 1h Friday + 1h Monday.
		friday := time.Date(2024, 5, 3, 16, 0, 0, 0, time.UTC)
		deals := []model.Deal{{
			ID: "D1", Owner: "alice", Status: model.StatusOpen,
			CreatedAt: friday, UpdatedAt: friday,
		}}
		activities := []model.Activity{{
			ID: "A1", DealID: "D1",
			TS:   time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
			Type: model.ActivityCall, Qualifying: true,
		}}
		res := speedtolead.New(speedtolead.WithCalendar(cal)).Analyze(deals, activities)

		Convey("Then only business hours count toward response time", func() {
			So(res.MeanHours, ShouldNotBeNil)
			So(*res.MeanHours, ShouldAlmostEqual, 2.0)
		})
	})

	Convey("Given empty input", t, func() {
		res := speedtolead.New().Analyze(nil, nil)

		Convey("Then collections are empty but non-nil", func() {
			So(res.RespondedIDs, ShouldBeEmpty)
			So(res.NoResponseIDs, ShouldBeEmpty)
			So(res.ByOwner, ShouldBeEmpty)
			So(res.MeanHours, ShouldBeNil)
		})
	})
}
