package qnn

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCrossEntropy(t *testing.T) {
	Convey("Given predictions and a one-hot label", t, func() {
		Convey("An even split should cost ln 2", func() {
			loss, err := CrossEntropy([]float64{0.5, 0.5}, []float64{1, 0})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, math.Ln2, 1e-12)
		})

		Convey("A perfect prediction should cost nothing", func() {
			loss, err := CrossEntropy([]float64{0, 1, 0}, []float64{0, 1, 0})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("A zero prediction should be clipped instead of diverging", func() {
			loss, err := CrossEntropy([]float64{0, 1}, []float64{1, 0})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, -math.Log(Epsilon), 1e-9)
		})

		Convey("Mismatched lengths should be a shape error", func() {
			_, err := CrossEntropy([]float64{0.2, 0.8}, []float64{0, 0, 1})
			So(errors.Is(err, ErrShapeMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "pred_probs has length 2, but label_vector has length 3")
		})
	})
}

func TestOverlap(t *testing.T) {
	Convey("Overlap should pick out the labelled probability", t, func() {
		v, err := Overlap([]float64{0.2, 0.7, 0.4}, []float64{0, 1, 0})
		So(err, ShouldBeNil)
		So(v, ShouldAlmostEqual, 0.7, 1e-12)

		_, err = Overlap([]float64{0.2}, []float64{0, 1})
		So(errors.Is(err, ErrShapeMismatch), ShouldBeTrue)
	})
}

func TestConfigLoss(t *testing.T) {
	Convey("Given a binary config", t, func() {
		cfg := NewCircuitConfig(2, 1, 1)

		Convey("The loss should compare [1-p, p] against [1-y, y]", func() {
			loss, err := cfg.Loss([]float64{0.8}, []float64{1})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, -math.Log(0.8), 1e-12)

			loss, err = cfg.Loss([]float64{0.8}, []float64{0})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, -math.Log(0.2), 1e-12)
		})

		Convey("A two-entry label should be a shape error", func() {
			_, err := cfg.Loss([]float64{0.8}, []float64{0, 1})
			So(errors.Is(err, ErrShapeMismatch), ShouldBeTrue)
		})

		Convey("Labels should decode at the 0.5 threshold", func() {
			So(cfg.Class([]float64{1}), ShouldEqual, 1)
			So(cfg.Class([]float64{0}), ShouldEqual, 0)
		})
	})

	Convey("Given a multi-class config", t, func() {
		cfg := NewCircuitConfig(3, 3, 1)

		Convey("The loss should use the renormalized marginals", func() {
			loss, err := cfg.Loss([]float64{0.6, 0.6, 0.3}, []float64{0, 0, 1})
			So(err, ShouldBeNil)
			So(loss, ShouldAlmostEqual, -math.Log(0.2), 1e-12)
		})
	})
}
