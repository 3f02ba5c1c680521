package qnn

import "math"

// StateVector holds the 2^n amplitudes of an n-qubit register. Bit i of a
// basis index is the value of qubit i.
type StateVector struct {
	qubits int
	amps   []complex128
}

func newStateVector(qubits int) *StateVector {
	amps := make([]complex128, 1<<qubits)
	amps[0] = 1
	return &StateVector{qubits: qubits, amps: amps}
}

func (sv *StateVector) NumQubits() int                { return sv.qubits }
func (sv *StateVector) Dim() int                      { return len(sv.amps) }
func (sv *StateVector) Amplitude(index int) complex128 { return sv.amps[index] }

func (sv *StateVector) Amplitudes() []complex128 {
	return append([]complex128(nil), sv.amps...)
}

// Probability is |amplitude|^2 of one basis state.
func (sv *StateVector) Probability(index int) float64 {
	return sqMag(sv.amps[index])
}

// Norm is Σ|a|^2. It stays at 1 within rounding for every gate sequence.
func (sv *StateVector) Norm() float64 {
	var total float64
	for _, a := range sv.amps {
		total += sqMag(a)
	}
	return total
}

/*
Simulator applies circuits to the all-zero state exactly. Every gate is a
local update over amplitude pairs, O(2^n) per gate, and no 2^n × 2^n matrix
is ever formed. The qubit cap is checked before the statevector is allocated.
*/
type Simulator struct {
	maxQubits int
}

func NewSimulator(maxQubits int) *Simulator {
	if maxQubits <= 0 {
		maxQubits = DefaultMaxQubits
	}
	return &Simulator{maxQubits: maxQubits}
}

func (sim *Simulator) MaxQubits() int {
	return sim.maxQubits
}

// Run simulates c from |0…0⟩. The result is not renormalized.
func (sim *Simulator) Run(c *Circuit) (*StateVector, error) {
	if c.NumQubits() > sim.maxQubits {
		return nil, &DimensionError{Qubits: c.NumQubits(), MaxQubits: sim.maxQubits}
	}

	sv := newStateVector(c.NumQubits())
	for _, g := range c.gates {
		sv.apply(g)
	}
	return sv, nil
}

func (sv *StateVector) apply(g Gate) {
	switch g.Kind {
	case RotationX:
		c, s := math.Cos(g.Angle/2), math.Sin(g.Angle/2)
		// [[c, -is], [-is, c]]
		sv.applySingle(g.Qubits[0], complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0))
	case RotationY:
		c, s := math.Cos(g.Angle/2), math.Sin(g.Angle/2)
		// [[c, -s], [s, c]]
		sv.applySingle(g.Qubits[0], complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0))
	case ControlledNot:
		sv.applyCNOT(g.Qubits[0], g.Qubits[1])
	}
}

// applySingle applies [[m00, m01], [m10, m11]] to every index pair that
// differs only in bit q.
func (sv *StateVector) applySingle(q int, m00, m01, m10, m11 complex128) {
	bit := 1 << q
	for i := range sv.amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := sv.amps[i], sv.amps[j]
		sv.amps[i] = m00*a0 + m01*a1
		sv.amps[j] = m10*a0 + m11*a1
	}
}

// applyCNOT swaps each pair with the control bit set once, visiting the
// member whose target bit is clear.
func (sv *StateVector) applyCNOT(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range sv.amps {
		if i&cbit == 0 || i&tbit != 0 {
			continue
		}
		j := i | tbit
		sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
	}
}

func sqMag(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}
