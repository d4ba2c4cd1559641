package model_test

import (
	"testing"
	"time"

	"github.com/okian/pipeaudit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStatus(t *testing.T) {
	Convey("Given raw status values from real exports", t, func() {
		cases := []struct {
			raw  string
			want model.Status
			ok   bool
		}{
			{"open", model.StatusOpen, true},
			{"Open", model.StatusOpen, true},
			{"won", model.StatusWon, true},
			{"WON", model.StatusWon, true},
			{"Closed Won", model.StatusWon, true},
			{"lost", model.StatusLost, true},
			{"closed lost", model.StatusLost, true},
			{"  won  ", model.StatusWon, true},
			{"", model.StatusOpen, false},
			{"pending", model.StatusOpen, false},
		}

		Convey("Then each normalizes to its canonical status", func() {
			for _, c := range cases {
				got, ok := model.ParseStatus(c.raw)
				So(got, ShouldEqual, c.want)
				So(ok, ShouldEqual, c.ok)
			}
		})
	})
}

func TestStatusTerminal(t *testing.T) {
	Convey("Given the lifecycle states", t, func() {
		Convey("Then won and lost are terminal, open is not", func() {
			So(model.StatusWon.Terminal(), ShouldBeTrue)
			So(model.StatusLost.Terminal(), ShouldBeTrue)
			So(model.StatusOpen.Terminal(), ShouldBeFalse)
		})
	})
}

func TestDealPredicates(t *testing.T) {
	Convey("Given deals in each lifecycle state", t, func() {
		closed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		won := model.Deal{ID: "D1", Status: model.StatusWon, ClosedAt: &closed}
		lost := model.Deal{ID: "D2", Status: model.StatusLost, ClosedAt: &closed}
		open := model.Deal{ID: "D3", Status: model.StatusOpen}

		Convey("Then Won and Closed follow the status", func() {
			So(won.Won(), ShouldBeTrue)
			So(won.Closed(), ShouldBeTrue)
			So(lost.Won(), ShouldBeFalse)
			So(lost.Closed(), ShouldBeTrue)
			So(open.Won(), ShouldBeFalse)
			So(open.Closed(), ShouldBeFalse)
		})
	})
}

func TestParseActivityType(t *testing.T) {
	Convey("Given raw activity type values", t, func() {
		Convey("Then known types normalize and unknown ones become other", func() {
			So(model.ParseActivityType("call"), ShouldEqual, model.ActivityCall)
			So(model.ParseActivityType("Email"), ShouldEqual, model.ActivityEmail)
			So(model.ParseActivityType(" MEETING "), ShouldEqual, model.ActivityMeeting)
			So(model.ParseActivityType("note"), ShouldEqual, model.ActivityNote)
			So(model.ParseActivityType("fax"), ShouldEqual, model.ActivityOther)
			So(model.ParseActivityType(""), ShouldEqual, model.ActivityOther)
		})
	})
}
