package calendar_test

import (
	"testing"
	"time"

	"github.com/okian/pipeaudit/internal/domain/calendar"
	. "github.com/smartystreets/goconvey/convey"
)

// 2024-01-08 is a Monday.
func mon(hour, minute int) time.Time {
	return time.Date(2024, 1, 8, hour, minute, 0, 0, time.UTC)
}

func TestBetween(t *testing.T) {
	Convey("Given a wall-clock calendar", t, func() {
		cal := calendar.New()

		Convey("Then a zero-length interval is zero", func() {
			So(cal.Between(mon(10, 0), mon(10, 0)), ShouldEqual, 0)
		})

		Convey("Then an inverted interval is zero, not negative", func() {
			So(cal.Between(mon(12, 0), mon(10, 0)), ShouldEqual, 0)
		})

		Convey("Then plain elapsed time is returned", func() {
			So(cal.Between(mon(10, 0), mon(12, 30)), ShouldEqual, 2*time.Hour+30*time.Minute)
		})
	})

	Convey("Given a business-hours calendar (9-17)", t, func() {
		cal := calendar.New(calendar.WithBusinessHours(9, 17))

		Convey("Then time outside the window contributes nothing", func() {
			So(cal.Between(mon(18, 0), mon(22, 0)), ShouldEqual, 0)
		})

		Convey("Then boundary days contribute only their overlap", func() {
			// Mon 10:00 -> Tue 12:00: Mon 10-17 (7h) + Tue 9-12 (3h)
			end := mon(12, 0).AddDate(0, 0, 1)
			So(cal.Between(mon(10, 0), end), ShouldEqual, 10*time.Hour)
		})

		Convey("Then the computation is exact to the minute", func() {
			// Mon 08:45 -> Mon 09:30 counts only 09:00-09:30
			So(cal.Between(mon(8, 45), mon(9, 30)), ShouldEqual, 30*time.Minute)
		})

		Convey("Then duration is monotonic in the end timestamp", func() {
			start := mon(10, 0)
			prev := time.Duration(0)
			for i := 1; i <= 60; i++ {
				d := cal.Between(start, start.Add(time.Duration(i)*time.Hour))
				So(d, ShouldBeGreaterThanOrEqualTo, prev)
				prev = d
			}
		})
	})

	Convey("Given a weekends-excluded calendar", t, func() {
		cal := calendar.New(calendar.WithWeekendsExcluded())

		Convey("Then a full weekend contributes zero extra time", func() {
			// Fri 2024-01-05 17:00 -> Mon 2024-01-08 09:00:
			// Fri 17-24 (7h) + Mon 0-9 (9h), Sat/Sun skipped entirely.
			fri := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
			So(cal.Between(fri, mon(9, 0)), ShouldEqual, 16*time.Hour)
		})

		Convey("Then an interval fully inside a weekend is zero", func() {
			sat := time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)
			sun := time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC)
			So(cal.Between(sat, sun), ShouldEqual, 0)
		})
	})

	Convey("Given both policies combined", t, func() {
		cal := calendar.New(calendar.WithBusinessHours(9, 17), calendar.WithWeekendsExcluded())

		Convey("Then only business hours of business days count", func() {
			// Fri 16:00 -> Mon 10:00: Fri 16-17 (1h) + Mon 9-10 (1h)
			fri := time.Date(2024, 1, 5, 16, 0, 0, 0, time.UTC)
			So(cal.Between(fri, mon(10, 0)), ShouldEqual, 2*time.Hour)
		})
	})
}
