package qnn

// Epsilon is the lower clip applied to every extracted probability and to
// the predictions fed into the log of the loss.
const Epsilon = 1e-10

// Marginal is the probability that qubit measures 1: the sum of |a|^2 over
// every basis index with that bit set.
func Marginal(sv *StateVector, qubit int) float64 {
	bit := 1 << qubit
	var p float64
	for i, a := range sv.amps {
		if i&bit != 0 {
			p += sqMag(a)
		}
	}
	return p
}

/*
ExtractProbabilities returns one marginal per requested qubit, each clipped to
[Epsilon, 1]. The marginals are independent, not mutually exclusive, and are
NOT renormalized; use Renormalize before treating them as a distribution.
*/
func ExtractProbabilities(sv *StateVector, qubits []int) ([]float64, error) {
	probs := make([]float64, len(qubits))
	for i, q := range qubits {
		if q < 0 || q >= sv.qubits {
			return nil, invalid("qubit", "readout qubit %d outside register of %d qubits", q, sv.qubits)
		}
		probs[i] = clip(Marginal(sv, q), Epsilon, 1)
	}
	return probs, nil
}

// Renormalize divides by the sum so the entries form a probability simplex.
// It returns a new slice and leaves probs untouched.
func Renormalize(probs []float64) []float64 {
	var total float64
	for _, p := range probs {
		total += p
	}

	out := make([]float64, len(probs))
	if total <= 0 {
		return out
	}

	for i, p := range probs {
		out[i] = p / total
	}
	return out
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
