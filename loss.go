package qnn

import "math"

// CrossEntropy is the categorical cross-entropy -Σ label_i · log(pred_i) with
// every prediction clipped to [Epsilon, 1] first.
func CrossEntropy(pred, label []float64) (float64, error) {
	if len(pred) != len(label) {
		return 0, &ShapeMismatchError{Predicted: len(pred), Labels: len(label)}
	}

	var loss float64
	for i, y := range label {
		loss -= y * math.Log(clip(pred[i], Epsilon, 1))
	}
	return loss, nil
}

// Overlap is Σ pred_i · label_i, the objective proxy the default gradient
// is taken of.
func Overlap(pred, label []float64) (float64, error) {
	if len(pred) != len(label) {
		return 0, &ShapeMismatchError{Predicted: len(pred), Labels: len(label)}
	}

	var total float64
	for i, y := range label {
		total += pred[i] * y
	}
	return total, nil
}
