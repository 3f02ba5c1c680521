package qnn

import "github.com/theapemachine/errnie"

/*
Builder turns an input feature vector and a parameter vector into the
classifier circuit described by its CircuitConfig. Build has no side effects,
so one Builder is safely shared by concurrent gradient jobs.
*/
type Builder struct {
	config CircuitConfig
}

func NewBuilder(cfg CircuitConfig) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	errnie.Info(
		"NewBuilder - qubits %d, layers %d, topology %s",
		cfg.NumQubits,
		cfg.NumLayers,
		cfg.Topology,
	)

	return &Builder{config: cfg}, nil
}

func (b *Builder) Config() CircuitConfig {
	return b.config
}

/*
Build encodes input with one RX per feature, then appends NumLayers
variational layers. Each layer is an RY on every qubit followed by the
configured entangling pattern. Qubits without a feature get no encoding
rotation. Input is expected to be scaled into [0, 2π] already.
*/
func (b *Builder) Build(input, params []float64) (*Circuit, error) {
	n := b.config.NumQubits

	if len(input) > n {
		return nil, invalid("input_data", "input data length (%d) exceeds number of qubits (%d)", len(input), n)
	}

	if len(params) != b.config.NumParameters() {
		return nil, invalid("parameters", "expected %d parameters, got %d", b.config.NumParameters(), len(params))
	}

	gates := make([]Gate, 0, len(input)+b.config.NumLayers*(n+b.entanglerSize()))

	for i, x := range input {
		gates = append(gates, RX(i, x))
	}

	for layer := 0; layer < b.config.NumLayers; layer++ {
		for i := 0; i < n; i++ {
			gates = append(gates, RY(i, params[layer*n+i]))
		}
		gates = b.entangle(gates)
	}

	return NewCircuit(n, gates...)
}

func (b *Builder) entangle(gates []Gate) []Gate {
	n := b.config.NumQubits

	switch b.config.Topology {
	case TopologyComplete:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				gates = append(gates, CNOT(i, j))
			}
		}
	default:
		// A single qubit has no neighbour to entangle with.
		if n < 2 {
			return gates
		}
		for i := 0; i < n-1; i++ {
			gates = append(gates, CNOT(i, i+1))
		}
		gates = append(gates, CNOT(n-1, 0))
	}

	return gates
}

func (b *Builder) entanglerSize() int {
	n := b.config.NumQubits
	if b.config.Topology == TopologyComplete {
		return n * (n - 1) / 2
	}
	if n < 2 {
		return 0
	}
	return n
}
