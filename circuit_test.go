package qnn

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuit(t *testing.T) {
	Convey("Given a gate sequence", t, func() {
		gates := []Gate{RX(0, 0.5), RY(1, -1.25), CNOT(0, 1)}

		Convey("When building a circuit from it", func() {
			c, err := NewCircuit(2, gates...)
			So(err, ShouldBeNil)

			Convey("The circuit should keep its own copy", func() {
				gates[0] = RY(1, 3)
				So(c.Gate(0), ShouldResemble, RX(0, 0.5))

				out := c.Gates()
				out[1] = CNOT(1, 0)
				So(c.Gate(1), ShouldResemble, RY(1, -1.25))
			})

			Convey("It should report its shape", func() {
				So(c.NumQubits(), ShouldEqual, 2)
				So(c.Len(), ShouldEqual, 3)
				So(c.Gate(2).Control(), ShouldEqual, 0)
				So(c.Gate(2).Target(), ShouldEqual, 1)
			})

			Convey("It should compare within a tolerance", func() {
				other, err := NewCircuit(2, RX(0, 0.5+1e-12), RY(1, -1.25), CNOT(0, 1))
				So(err, ShouldBeNil)
				So(c.Equal(other, 1e-9), ShouldBeTrue)
				So(c.Equal(other, 0), ShouldBeFalse)
			})
		})

		Convey("Gates outside the register should be rejected", func() {
			_, err := NewCircuit(2, RX(2, 0.1))
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("A CNOT onto its own control should be rejected", func() {
			_, err := NewCircuit(2, CNOT(1, 1))
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("A non-finite angle should be rejected", func() {
			_, err := NewCircuit(1, RY(0, math.NaN()))
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})
	})
}

func TestGateString(t *testing.T) {
	Convey("Gates should render as listing lines", t, func() {
		So(RX(3, 0.1).String(), ShouldEqual, "rx 3 0.1")
		So(RY(0, math.Pi).String(), ShouldEqual, "ry 0 3.141592653589793")
		So(CNOT(2, 0).String(), ShouldEqual, "cx 2 0")
		So(ControlledNot.Arity(), ShouldEqual, 2)
		So(GateKind(9).String(), ShouldEqual, "GateKind(9)")
	})
}
