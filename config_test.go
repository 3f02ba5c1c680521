package qnn

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuitConfig(t *testing.T) {
	Convey("Given a circuit config", t, func() {
		cfg := NewCircuitConfig(4, 3, 2)

		Convey("The defaults should validate", func() {
			So(cfg.Validate(), ShouldBeNil)
			So(cfg.NumParameters(), ShouldEqual, 8)
			So(cfg.Readout(), ShouldResemble, []int{0, 1, 2})
			So(cfg.Binary(), ShouldBeFalse)
		})

		Convey("Zero qubits should be rejected", func() {
			cfg.NumQubits = 0
			err := cfg.Validate()
			So(errors.Is(err, ErrValidation), ShouldBeTrue)

			var ve *ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Field, ShouldEqual, "NumQubits")
		})

		Convey("More classes than qubits should be rejected", func() {
			cfg.NumClasses = 5
			So(errors.Is(cfg.Validate(), ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown topology should be rejected", func() {
			cfg.Topology = "star"
			So(errors.Is(cfg.Validate(), ErrValidation), ShouldBeTrue)
		})

		Convey("A register over the cap should be a dimension error", func() {
			cfg.NumQubits = 21
			err := cfg.Validate()
			So(errors.Is(err, ErrDimension), ShouldBeTrue)

			var de *DimensionError
			So(errors.As(err, &de), ShouldBeTrue)
			So(de.MaxQubits, ShouldEqual, DefaultMaxQubits)
		})

		Convey("In binary mode", func() {
			cfg.NumClasses = 1
			cfg.TargetQubit = 2

			So(cfg.Validate(), ShouldBeNil)
			So(cfg.Readout(), ShouldResemble, []int{2})

			Convey("The target qubit must be inside the register", func() {
				cfg.TargetQubit = 4
				So(errors.Is(cfg.Validate(), ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestHyperparameters(t *testing.T) {
	Convey("Given the default hyperparameters", t, func() {
		hp := DefaultHyperparameters()

		So(hp.Validate(), ShouldBeNil)
		So(hp.Epochs, ShouldEqual, 1000)
		So(hp.LearningRate, ShouldEqual, 0.01)
		So(hp.Epsilon, ShouldEqual, 0.01)

		Convey("A non-positive step should be rejected", func() {
			hp.Epsilon = 0
			So(errors.Is(hp.Validate(), ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown objective should be rejected", func() {
			hp.Objective = "hinge"
			So(errors.Is(hp.Validate(), ErrValidation), ShouldBeTrue)
		})

		Convey("Zero epochs should be rejected", func() {
			hp.Epochs = 0
			So(errors.Is(hp.Validate(), ErrValidation), ShouldBeTrue)
		})
	})
}
