package qnn

import (
	"math/rand/v2"
	"sort"
	"sync"
)

/*
ShotEvaluator estimates marginals from a finite number of simulated
measurements instead of reading them off the statevector. Each estimate has
variance p(1-p)/Shots, so Shots trades accuracy against sampling cost, and
gradients taken through it are noisy surrogates of the exact ones.

The generator is explicit so runs stay reproducible for a fixed seed when
evaluations happen in a fixed order.
*/
type ShotEvaluator struct {
	sim   *Simulator
	shots int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewShotEvaluator(sim *Simulator, shots int, rng *rand.Rand) (*ShotEvaluator, error) {
	if shots < 1 {
		return nil, invalid("Shots", "need at least one shot, got %d", shots)
	}
	if rng == nil {
		return nil, invalid("rng", "random generator is required")
	}
	return &ShotEvaluator{sim: sim, shots: shots, rng: rng}, nil
}

func (ev *ShotEvaluator) Shots() int {
	return ev.shots
}

func (ev *ShotEvaluator) Probabilities(c *Circuit, readout []int) ([]float64, error) {
	sv, err := ev.sim.Run(c)
	if err != nil {
		return nil, err
	}

	for _, q := range readout {
		if q < 0 || q >= sv.qubits {
			return nil, invalid("qubit", "readout qubit %d outside register of %d qubits", q, sv.qubits)
		}
	}

	cumulative := sv.cumulative()
	ones := make([]int, len(readout))

	ev.mu.Lock()
	for shot := 0; shot < ev.shots; shot++ {
		outcome := measure(cumulative, ev.rng)
		for i, q := range readout {
			if outcome&(1<<q) != 0 {
				ones[i]++
			}
		}
	}
	ev.mu.Unlock()

	probs := make([]float64, len(readout))
	for i, n := range ones {
		probs[i] = clip(float64(n)/float64(ev.shots), Epsilon, 1)
	}
	return probs, nil
}

// Measure samples one basis index with probability |a|^2. The statevector is
// left untouched; collapse is not modelled.
func (sv *StateVector) Measure(rng *rand.Rand) int {
	return measure(sv.cumulative(), rng)
}

// cumulative returns the running sums of |a|^2, normalized so the last
// entry is exactly 1 and rounding drift can never leave a draw unmatched.
func (sv *StateVector) cumulative() []float64 {
	cum := make([]float64, len(sv.amps))

	var total float64
	for i, a := range sv.amps {
		total += sqMag(a)
		cum[i] = total
	}

	for i := range cum {
		cum[i] /= total
	}
	cum[len(cum)-1] = 1
	return cum
}

func measure(cumulative []float64, rng *rand.Rand) int {
	r := rng.Float64()
	// First index whose cumulative probability exceeds r.
	return sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > r
	})
}
