package qnn

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExportCircuit(t *testing.T) {
	Convey("Given a trained circuit", t, func() {
		builder, _ := NewBuilder(NewCircuitConfig(3, 2, 2))
		c, err := builder.Build(
			[]float64{0.1, math.Pi, 2 * math.Pi},
			[]float64{1.0 / 3, -2.5, 1e-17, 6.283185307179586, 0.7, 42},
		)
		So(err, ShouldBeNil)

		Convey("When it is exported", func() {
			var buf bytes.Buffer
			So(ExportCircuit(&buf, c), ShouldBeNil)

			Convey("The listing should start with the register size", func() {
				So(buf.String(), ShouldStartWith, "qubits 3\nrx 0 0.1\n")
				So(buf.String(), ShouldEqual, c.String())
			})

			Convey("Importing it should reproduce every gate exactly", func() {
				back, err := ImportCircuit(&buf)
				So(err, ShouldBeNil)
				So(back.Equal(c, 0), ShouldBeTrue)
			})
		})

		Convey("Random circuits should round-trip too", func() {
			rng := rand.New(rand.NewPCG(13, 17))
			for trial := 0; trial < 20; trial++ {
				rc := randomCircuit(rng, 1+rng.IntN(5), 30)
				back, err := ParseCircuit(rc.String())
				So(err, ShouldBeNil)
				So(back.Equal(rc, 0), ShouldBeTrue)
			}
		})
	})
}

func TestImportCircuit(t *testing.T) {
	Convey("Given hand-written listings", t, func() {
		Convey("Comments and blank lines should be skipped", func() {
			c, err := ParseCircuit("# bell pair\n\nqubits 2\nry 0 1.5707963267948966\n  cx 0 1\n")
			So(err, ShouldBeNil)
			So(c.Gates(), ShouldResemble, []Gate{RY(0, math.Pi/2), CNOT(0, 1)})
		})

		Convey("A missing header should be rejected", func() {
			_, err := ParseCircuit("rx 0 1\n")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)

			_, err = ParseCircuit("")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown gate should name its line", func() {
			_, err := ParseCircuit("qubits 1\nrz 0 1\n")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 2")
		})

		Convey("A malformed angle should be rejected", func() {
			_, err := ParseCircuit("qubits 1\nrx 0 half\n")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("A gate outside the register should be rejected", func() {
			_, err := ParseCircuit("qubits 2\ncx 0 2\n")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})
	})
}
