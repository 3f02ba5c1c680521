package qnn

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type failingEvaluator struct{}

func (failingEvaluator) Probabilities(*Circuit, []int) ([]float64, error) {
	return nil, errors.New("backend unavailable")
}

func TestGradientEstimator(t *testing.T) {
	Convey("Given a single qubit binary circuit", t, func() {
		// RX(x) then RY(θ) gives P(1) = (1 - cos x · cos θ) / 2.
		builder, err := NewBuilder(NewCircuitConfig(1, 1, 1))
		So(err, ShouldBeNil)

		x, theta := 0.7, 1.1
		exact := NewExactEvaluator(NewSimulator(0))

		Convey("The overlap gradient should match the analytic derivative", func() {
			est, err := NewGradientEstimator(builder, exact, WithEpsilon(1e-4))
			So(err, ShouldBeNil)

			grad, err := est.Estimate([]float64{x}, []float64{theta}, []float64{1})
			So(err, ShouldBeNil)
			So(grad, ShouldHaveLength, 1)
			So(grad[0], ShouldAlmostEqual, math.Cos(x)*math.Sin(theta)/2, 1e-6)
			So(est.Evaluations(), ShouldEqual, int64(2))
		})

		Convey("The cross-entropy gradient should descend the loss", func() {
			est, err := NewGradientEstimator(builder, exact, WithEpsilon(1e-4), WithObjective(ObjectiveCrossEntropy))
			So(err, ShouldBeNil)

			grad, err := est.Estimate([]float64{x}, []float64{theta}, []float64{1})
			So(err, ShouldBeNil)

			p1 := (1 - math.Cos(x)*math.Cos(theta)) / 2
			So(grad[0], ShouldAlmostEqual, -math.Cos(x)*math.Sin(theta)/(2*p1), 1e-6)
		})

		Convey("A label of 0 should give no overlap gradient", func() {
			est, _ := NewGradientEstimator(builder, exact, WithEpsilon(1e-4))
			grad, err := est.Estimate([]float64{x}, []float64{theta}, []float64{0})
			So(err, ShouldBeNil)
			So(grad[0], ShouldEqual, 0.0)

			ce, _ := NewGradientEstimator(builder, exact, WithEpsilon(1e-4), WithObjective(ObjectiveCrossEntropy))
			grad, err = ce.Estimate([]float64{x}, []float64{theta}, []float64{0})
			So(err, ShouldBeNil)
			So(grad[0], ShouldNotEqual, 0.0)
		})

		Convey("Invalid options should be rejected", func() {
			_, err := NewGradientEstimator(builder, exact, WithEpsilon(0))
			So(errors.Is(err, ErrValidation), ShouldBeTrue)

			_, err = NewGradientEstimator(builder, exact, WithObjective("hinge"))
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("An evaluator failure should surface", func() {
			est, _ := NewGradientEstimator(builder, failingEvaluator{})
			_, err := est.Estimate([]float64{x}, []float64{theta}, []float64{1})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a multi-qubit circuit and a worker pool", t, func() {
		builder, err := NewBuilder(NewCircuitConfig(3, 2, 2))
		So(err, ShouldBeNil)

		q := NewQ(context.Background(), 3, NewPoolConfig())
		Reset(q.Close)

		exact := NewExactEvaluator(NewSimulator(0))
		input := []float64{0.4, 2.2, 5.1}
		params := []float64{0.3, 1.7, 4.4, 2.9, 0.05, 6.0}
		label := []float64{0, 1}

		Convey("Parallel and sequential gradients should be identical", func() {
			sequential, _ := NewGradientEstimator(builder, exact)
			parallel, _ := NewGradientEstimator(builder, exact, WithPool(q))

			want, err := sequential.Estimate(input, params, label)
			So(err, ShouldBeNil)

			got, err := parallel.Estimate(input, params, label)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
			So(parallel.Evaluations(), ShouldEqual, int64(2*len(params)))
		})

		Convey("Estimating should not modify the parameters", func() {
			est, _ := NewGradientEstimator(builder, exact, WithPool(q))
			before := append([]float64(nil), params...)
			_, err := est.Estimate(input, params, label)
			So(err, ShouldBeNil)
			So(params, ShouldResemble, before)
		})

		Convey("A failing component should fail the whole gradient", func() {
			est, _ := NewGradientEstimator(builder, failingEvaluator{}, WithPool(q))
			_, err := est.Estimate(input, params, label)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "gradient component")
		})
	})
}
