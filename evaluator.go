package qnn

/*
Evaluator runs a circuit and reads the marginals of the readout qubits.
Implementations must be safe for concurrent use, since the gradient pool
evaluates many perturbed circuits at once.
*/
type Evaluator interface {
	Probabilities(c *Circuit, readout []int) ([]float64, error)
}

// ExactEvaluator simulates the full statevector. Identical circuits always
// give bit-identical probabilities.
type ExactEvaluator struct {
	sim *Simulator
}

func NewExactEvaluator(sim *Simulator) *ExactEvaluator {
	return &ExactEvaluator{sim: sim}
}

func (ev *ExactEvaluator) Probabilities(c *Circuit, readout []int) ([]float64, error) {
	sv, err := ev.sim.Run(c)
	if err != nil {
		return nil, err
	}
	return ExtractProbabilities(sv, readout)
}
