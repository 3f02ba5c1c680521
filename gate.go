package qnn

import (
	"fmt"
	"math"
	"strconv"
)

// GateKind tags the operation a Gate performs.
type GateKind uint8

const (
	RotationX GateKind = iota + 1
	RotationY
	ControlledNot
)

var gateMnemonics = map[GateKind]string{
	RotationX:     "rx",
	RotationY:     "ry",
	ControlledNot: "cx",
}

func (k GateKind) String() string {
	if name, ok := gateMnemonics[k]; ok {
		return name
	}
	return fmt.Sprintf("GateKind(%d)", uint8(k))
}

// Arity is the number of qubits the gate acts on.
func (k GateKind) Arity() int {
	if k == ControlledNot {
		return 2
	}
	return 1
}

/*
Gate is a single circuit operation. Rotations use Qubits[0] and Angle;
ControlledNot uses Qubits[0] as control and Qubits[1] as target and carries no
angle. Gates are values and are never modified after construction.
*/
type Gate struct {
	Kind   GateKind
	Qubits [2]int
	Angle  float64
}

// RX rotates qubit q about the X axis by theta.
func RX(q int, theta float64) Gate {
	return Gate{Kind: RotationX, Qubits: [2]int{q, 0}, Angle: theta}
}

// RY rotates qubit q about the Y axis by theta.
func RY(q int, theta float64) Gate {
	return Gate{Kind: RotationY, Qubits: [2]int{q, 0}, Angle: theta}
}

// CNOT flips target wherever control is set.
func CNOT(control, target int) Gate {
	return Gate{Kind: ControlledNot, Qubits: [2]int{control, target}}
}

func (g Gate) Control() int { return g.Qubits[0] }
func (g Gate) Target() int  { return g.Qubits[1] }

// String renders the gate as one line of the circuit listing.
func (g Gate) String() string {
	switch g.Kind {
	case RotationX, RotationY:
		return fmt.Sprintf("%s %d %s", g.Kind, g.Qubits[0], strconv.FormatFloat(g.Angle, 'g', -1, 64))
	case ControlledNot:
		return fmt.Sprintf("%s %d %d", g.Kind, g.Qubits[0], g.Qubits[1])
	default:
		return g.Kind.String()
	}
}

// Equal compares two gates, allowing angles to differ by at most tol.
func (g Gate) Equal(other Gate, tol float64) bool {
	if g.Kind != other.Kind || g.Qubits != other.Qubits {
		return false
	}
	return math.Abs(g.Angle-other.Angle) <= tol
}

func (g Gate) validate(numQubits int) error {
	if _, ok := gateMnemonics[g.Kind]; !ok {
		return invalid("Gate", "unknown gate kind %d", uint8(g.Kind))
	}

	for i := 0; i < g.Kind.Arity(); i++ {
		if q := g.Qubits[i]; q < 0 || q >= numQubits {
			return invalid("Gate", "%s addresses qubit %d outside register of %d qubits", g.Kind, q, numQubits)
		}
	}

	if g.Kind == ControlledNot && g.Qubits[0] == g.Qubits[1] {
		return invalid("Gate", "cx control and target are both qubit %d", g.Qubits[0])
	}

	if g.Kind.Arity() == 1 && (math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0)) {
		return invalid("Gate", "%s on qubit %d has non-finite angle %v", g.Kind, g.Qubits[0], g.Angle)
	}

	return nil
}
