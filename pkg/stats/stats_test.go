package stats_test

import (
	"testing"

	"github.com/okian/pipeaudit/pkg/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMean(t *testing.T) {
	Convey("Mean averages its input", t, func() {
		m, ok := stats.Mean([]float64{2, 4, 9})
		So(ok, ShouldBeTrue)
		So(m, ShouldAlmostEqual, 5)
	})

	Convey("Mean of empty input is undefined, not zero", t, func() {
		_, ok := stats.Mean(nil)
		So(ok, ShouldBeFalse)
	})
}

func TestMedian(t *testing.T) {
	Convey("Median of odd-length input is the middle value", t, func() {
		m, ok := stats.Median([]float64{9, 1, 5})
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, 5)
	})

	Convey("Median of even-length input averages the middle pair", t, func() {
		m, ok := stats.Median([]float64{4, 1, 3, 2})
		So(ok, ShouldBeTrue)
		So(m, ShouldAlmostEqual, 2.5)
	})

	Convey("Median does not reorder its input", t, func() {
		xs := []float64{3, 1, 2}
		_, _ = stats.Median(xs)
		So(xs, ShouldResemble, []float64{3, 1, 2})
	})

	Convey("Median of empty input is undefined", t, func() {
		_, ok := stats.Median(nil)
		So(ok, ShouldBeFalse)
	})
}

func TestStdDev(t *testing.T) {
	Convey("StdDev is the population deviation", t, func() {
		sd, ok := stats.StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		So(ok, ShouldBeTrue)
		So(sd, ShouldAlmostEqual, 2)
	})

	Convey("StdDev of a constant series is zero but defined", t, func() {
		sd, ok := stats.StdDev([]float64{3, 3, 3})
		So(ok, ShouldBeTrue)
		So(sd, ShouldEqual, 0)
	})
}

func TestPearson(t *testing.T) {
	Convey("Perfectly inverse series correlate at -1", t, func() {
		r, ok := stats.Pearson([]float64{1, 2, 3}, []float64{6, 4, 2})
		So(ok, ShouldBeTrue)
		So(r, ShouldAlmostEqual, -1)
	})

	Convey("Perfectly aligned series correlate at +1", t, func() {
		r, ok := stats.Pearson([]float64{1, 2, 3}, []float64{10, 20, 30})
		So(ok, ShouldBeTrue)
		So(r, ShouldAlmostEqual, 1)
	})

	Convey("Zero variance on either side is undefined", t, func() {
		_, ok := stats.Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
		So(ok, ShouldBeFalse)
	})

	Convey("Mismatched lengths and single samples are undefined", t, func() {
		_, ok := stats.Pearson([]float64{1, 2}, []float64{1})
		So(ok, ShouldBeFalse)
		_, ok = stats.Pearson([]float64{1}, []float64{1})
		So(ok, ShouldBeFalse)
	})
}
