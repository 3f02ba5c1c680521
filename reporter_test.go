package qnn

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReporters(t *testing.T) {
	progress := Progress{
		RunID:       "run-7",
		Epoch:       12,
		Epochs:      100,
		Loss:        0.42,
		BestLoss:    0.4,
		Elapsed:     3 * time.Second,
		Remaining:   22 * time.Second,
		Evaluations: 960,
	}

	Convey("Given a metrics reporter", t, func() {
		reg := prometheus.NewRegistry()
		r, err := NewMetricsReporter(reg)
		So(err, ShouldBeNil)

		Convey("A report should set every gauge", func() {
			r.Report(progress)

			So(testutil.ToFloat64(r.epoch), ShouldEqual, 12.0)
			So(testutil.ToFloat64(r.loss), ShouldEqual, 0.42)
			So(testutil.ToFloat64(r.bestLoss), ShouldEqual, 0.4)
			So(testutil.ToFloat64(r.simulations), ShouldEqual, 960.0)
			So(testutil.ToFloat64(r.remaining), ShouldEqual, 22.0)
		})

		Convey("Registering twice on one registry should fail", func() {
			_, err := NewMetricsReporter(reg)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a log reporter", t, func() {
		var buf bytes.Buffer
		r := NewLogReporter(&buf)

		Convey("A report should be one structured line", func() {
			r.Report(progress)

			out := buf.String()
			So(out, ShouldContainSubstring, "run-7")
			So(out, ShouldContainSubstring, "epoch=12")
			So(out, ShouldContainSubstring, "loss=0.42")
		})
	})

	Convey("Given several reporters", t, func() {
		var seen []int
		rs := Reporters{
			ReporterFunc(func(p Progress) { seen = append(seen, 1) }),
			ReporterFunc(func(p Progress) { seen = append(seen, 2) }),
		}

		Convey("Each should receive the report in order", func() {
			rs.Report(progress)
			So(seen, ShouldResemble, []int{1, 2})
		})
	})
}
