package main

import (
	"math"
	"math/rand/v2"

	"github.com/theapemachine/qnn"
)

// syntheticExamples draws uniform features and uniform class labels, then
// min-max scales the whole feature matrix into [0, 2π].
func syntheticExamples(rng *rand.Rand, samples, features int, cfg qnn.CircuitConfig) []qnn.Example {
	inputs := make([][]float64, samples)
	for i := range inputs {
		inputs[i] = randomFeatures(rng, features)
	}
	scaleInto2Pi(inputs...)

	examples := make([]qnn.Example, samples)
	for i, input := range inputs {
		examples[i] = qnn.Example{Input: input, Label: randomLabel(rng, cfg)}
	}
	return examples
}

func randomFeatures(rng *rand.Rand, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64()
	}
	return xs
}

func randomLabel(rng *rand.Rand, cfg qnn.CircuitConfig) []float64 {
	if cfg.Binary() {
		return []float64{float64(rng.IntN(2))}
	}

	label := make([]float64, cfg.NumClasses)
	label[rng.IntN(cfg.NumClasses)] = 1
	return label
}

// scaleInto2Pi rescales all rows in place using one global min and max.
func scaleInto2Pi(rows ...[]float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		for _, x := range row {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}

	span := hi - lo
	for _, row := range rows {
		for i, x := range row {
			if span == 0 {
				row[i] = 0
				continue
			}
			row[i] = (x - lo) / span * 2 * math.Pi
		}
	}
}
