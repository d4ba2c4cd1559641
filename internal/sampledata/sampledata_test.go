package sampledata_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/okian/pipeaudit/internal/adapters/tabular"
	"github.com/okian/pipeaudit/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a pinned seed and reference time", t, func() {
		gen := sampledata.New(
			sampledata.WithDealCount(50),
			sampledata.WithSeed(7),
			sampledata.WithNow(now),
		)

		Convey("When generated twice", func() {
			var deals1, acts1, deals2, acts2 bytes.Buffer
			So(gen.Write(&deals1, &acts1), ShouldBeNil)
			So(gen.Write(&deals2, &acts2), ShouldBeNil)

			Convey("Then output is byte-for-byte deterministic", func() {
				So(deals1.String(), ShouldEqual, deals2.String())
				So(acts1.String(), ShouldEqual, acts2.String())
			})
		})

		Convey("When the output is read back", func() {
			var deals, acts bytes.Buffer
			So(gen.Write(&deals, &acts), ShouldBeNil)

			dealRows, err := tabular.Read(&deals)
			So(err, ShouldBeNil)
			actRows, err := tabular.Read(&acts)
			So(err, ShouldBeNil)

			Convey("Then every requested deal row is present", func() {
				So(dealRows, ShouldHaveLength, 50)
				So(dealRows[0]["deal_id"], ShouldEqual, "D-0001")
			})

			Convey("And activities reference generated deals only", func() {
				ids := make(map[string]bool, len(dealRows))
				for _, row := range dealRows {
					ids[row["deal_id"]] = true
				}
				So(actRows, ShouldNotBeEmpty)
				for _, row := range actRows {
					So(ids[row["deal_id"]], ShouldBeTrue)
				}
			})

			Convey("And the dataset plants hygiene defects for the audit to find", func() {
				missing := 0
				for _, row := range dealRows {
					if row["email"] == "" {
						missing++
					}
				}
				So(missing, ShouldBeGreaterThan, 0)
			})
		})
	})
}
