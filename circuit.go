package qnn

import "strings"

/*
Circuit is an ordered gate sequence over a fixed register of qubits. It is
built fresh for every forward pass and is read-only once constructed: the
gate slice is copied in and Gates hands out copies.
*/
type Circuit struct {
	qubits int
	gates  []Gate
}

// NewCircuit validates every gate against the register size.
func NewCircuit(qubits int, gates ...Gate) (*Circuit, error) {
	if qubits < 1 {
		return nil, invalid("NumQubits", "circuit needs at least one qubit, got %d", qubits)
	}

	for _, g := range gates {
		if err := g.validate(qubits); err != nil {
			return nil, err
		}
	}

	return &Circuit{
		qubits: qubits,
		gates:  append([]Gate(nil), gates...),
	}, nil
}

func (c *Circuit) NumQubits() int { return c.qubits }
func (c *Circuit) Len() int       { return len(c.gates) }

// Gate returns the i-th gate without copying the sequence.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

func (c *Circuit) Gates() []Gate {
	return append([]Gate(nil), c.gates...)
}

// Equal reports whether both circuits have the same register and gate
// sequence, with angles compared within tol.
func (c *Circuit) Equal(other *Circuit, tol float64) bool {
	if c == nil || other == nil {
		return c == other
	}

	if c.qubits != other.qubits || len(c.gates) != len(other.gates) {
		return false
	}

	for i := range c.gates {
		if !c.gates[i].Equal(other.gates[i], tol) {
			return false
		}
	}
	return true
}

// String renders the circuit in the listing format read by ParseCircuit.
func (c *Circuit) String() string {
	var sb strings.Builder
	// strings.Builder never fails a write.
	_ = writeCircuit(&sb, c)
	return sb.String()
}
