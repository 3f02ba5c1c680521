package qnn

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// GradientOption configures a GradientEstimator.
type GradientOption func(*GradientEstimator)

// WithEpsilon sets the finite-difference step.
func WithEpsilon(eps float64) GradientOption {
	return func(e *GradientEstimator) {
		e.epsilon = eps
	}
}

// WithObjective picks the scalar the gradient is taken of.
func WithObjective(obj Objective) GradientOption {
	return func(e *GradientEstimator) {
		e.objective = obj
	}
}

// WithPool fans the per-parameter work out over q. A nil pool keeps the
// estimator sequential.
func WithPool(q *Q) GradientOption {
	return func(e *GradientEstimator) {
		e.pool = q
	}
}

/*
GradientEstimator computes central finite-difference gradients:

	grad_i = (f(θ + ε·e_i) − f(θ − ε·e_i)) / 2ε

Every component costs two full builds and simulations, so one Estimate call
is exactly 2 × len(params) circuit evaluations. That term dominates training
time and is what limits practical qubit and layer counts.

With a pool, each component becomes one job that reads an immutable snapshot
of the parameters, input and label. The components are collected in index
order, so the result is identical to the sequential one when the evaluator
is exact.
*/
type GradientEstimator struct {
	builder   *Builder
	evaluator Evaluator
	config    CircuitConfig
	readout   []int
	epsilon   float64
	objective Objective
	pool      *Q

	evaluations atomic.Int64
}

func NewGradientEstimator(builder *Builder, evaluator Evaluator, opts ...GradientOption) (*GradientEstimator, error) {
	e := &GradientEstimator{
		builder:   builder,
		evaluator: evaluator,
		config:    builder.Config(),
		readout:   builder.Config().Readout(),
		epsilon:   DefaultEpsilon,
		objective: ObjectiveOverlap,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.epsilon <= 0 {
		return nil, invalid("Epsilon", "finite difference step must be positive, got %v", e.epsilon)
	}

	if e.objective != ObjectiveOverlap && e.objective != ObjectiveCrossEntropy {
		return nil, invalid("Objective", "unknown objective %q", e.objective)
	}

	return e, nil
}

// Evaluations is the number of circuit evaluations made so far.
func (e *GradientEstimator) Evaluations() int64 {
	return e.evaluations.Load()
}

// Estimate returns the gradient of the objective at params for one example.
func (e *GradientEstimator) Estimate(input, params, label []float64) ([]float64, error) {
	snapshot := append([]float64(nil), params...)
	input = append([]float64(nil), input...)
	label = append([]float64(nil), label...)

	if e.pool != nil {
		return e.fanOut(input, snapshot, label)
	}

	grad := make([]float64, len(snapshot))
	for i := range snapshot {
		g, err := e.component(input, snapshot, label, i)
		if err != nil {
			return nil, err
		}
		grad[i] = g
	}
	return grad, nil
}

func (e *GradientEstimator) fanOut(input, params, label []float64) ([]float64, error) {
	batch := uuid.NewString()
	results := make([]chan Result, len(params))

	for i := range params {
		i := i
		results[i] = e.pool.Schedule(fmt.Sprintf("%s/%d", batch, i), func() (any, error) {
			return e.component(input, params, label, i)
		})
	}

	grad := make([]float64, len(params))
	var firstErr error

	// Collect every result, even after a failure, so no job outlives the call.
	for i, ch := range results {
		r := <-ch
		if r.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("gradient component %d: %w", i, r.Error)
			}
			continue
		}
		grad[i] = r.Value.(float64)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return grad, nil
}

func (e *GradientEstimator) component(input, params, label []float64, i int) (float64, error) {
	shifted := make([]float64, len(params))

	copy(shifted, params)
	shifted[i] += e.epsilon
	plus, err := e.evaluate(input, shifted, label)
	if err != nil {
		return 0, err
	}

	copy(shifted, params)
	shifted[i] -= e.epsilon
	minus, err := e.evaluate(input, shifted, label)
	if err != nil {
		return 0, err
	}

	return (plus - minus) / (2 * e.epsilon), nil
}

func (e *GradientEstimator) evaluate(input, params, label []float64) (float64, error) {
	circuit, err := e.builder.Build(input, params)
	if err != nil {
		return 0, err
	}

	probs, err := e.evaluator.Probabilities(circuit, e.readout)
	e.evaluations.Add(1)
	if err != nil {
		return 0, err
	}

	if e.objective == ObjectiveCrossEntropy {
		return e.config.Loss(probs, label)
	}
	return Overlap(probs, label)
}
