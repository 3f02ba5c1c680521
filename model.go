package qnn

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Example is one training pair. Input is expected in [0, 2π]; Label is
// one-hot over NumClasses, or a single 0/1 entry in binary mode.
type Example struct {
	Input []float64 `yaml:"input"`
	Label []float64 `yaml:"label"`
}

/*
Distribution turns the raw readout into the categorical distribution the loss
and the class decision work on. Multi-class marginals are renormalized onto
the simplex; a binary marginal p becomes [1-p, p].
*/
func (cfg CircuitConfig) Distribution(probs []float64) []float64 {
	if cfg.Binary() && len(probs) == 1 {
		return []float64{1 - probs[0], probs[0]}
	}
	return Renormalize(probs)
}

// Loss is the cross-entropy of the readout distribution against label.
func (cfg CircuitConfig) Loss(probs, label []float64) (float64, error) {
	if cfg.Binary() {
		if len(probs) != 1 || len(label) != 1 {
			return 0, &ShapeMismatchError{Predicted: len(probs), Labels: len(label)}
		}
		return CrossEntropy(cfg.Distribution(probs), []float64{1 - label[0], label[0]})
	}
	return CrossEntropy(cfg.Distribution(probs), label)
}

// Class decodes a label vector into a class index.
func (cfg CircuitConfig) Class(label []float64) int {
	if cfg.Binary() {
		if len(label) > 0 && label[0] >= 0.5 {
			return 1
		}
		return 0
	}
	return argmax(label)
}

// Prediction is the model's answer for one input.
type Prediction struct {
	Class         int
	Probabilities []float64
}

// Model is a trained circuit: a config plus the parameters it was trained to.
type Model struct {
	config  CircuitConfig
	params  []float64
	builder *Builder
	eval    Evaluator
}

func NewModel(cfg CircuitConfig, params []float64) (*Model, error) {
	builder, err := NewBuilder(cfg)
	if err != nil {
		return nil, err
	}

	if len(params) != cfg.NumParameters() {
		return nil, invalid("parameters", "expected %d parameters, got %d", cfg.NumParameters(), len(params))
	}

	return &Model{
		config:  cfg,
		params:  append([]float64(nil), params...),
		builder: builder,
		eval:    NewExactEvaluator(NewSimulator(cfg.MaxQubits)),
	}, nil
}

func (m *Model) Config() CircuitConfig { return m.config }

func (m *Model) Parameters() []float64 {
	return append([]float64(nil), m.params...)
}

// Circuit builds the model's circuit for one input.
func (m *Model) Circuit(input []float64) (*Circuit, error) {
	return m.builder.Build(input, m.params)
}

// Probabilities returns the raw clipped readout marginals for input.
func (m *Model) Probabilities(input []float64) ([]float64, error) {
	c, err := m.Circuit(input)
	if err != nil {
		return nil, err
	}
	return m.eval.Probabilities(c, m.config.Readout())
}

/*
Predict classifies input. Multi-class picks the largest renormalized
marginal; binary predicts class 1 when the target marginal exceeds 0.5.
Probabilities holds the distribution the decision was taken on.
*/
func (m *Model) Predict(input []float64) (Prediction, error) {
	probs, err := m.Probabilities(input)
	if err != nil {
		return Prediction{}, err
	}

	dist := m.config.Distribution(probs)
	return Prediction{Class: argmax(dist), Probabilities: dist}, nil
}

// Evaluation summarizes a model over a labelled set.
type Evaluation struct {
	Loss        float64
	Accuracy    float64
	Predictions []Prediction
}

// Evaluate scores every example with at most workers concurrent simulations.
// Predictions come back in input order.
func Evaluate(ctx context.Context, m *Model, examples []Example, workers int) (Evaluation, error) {
	if len(examples) == 0 {
		return Evaluation{}, invalid("examples", "nothing to evaluate")
	}

	if workers < 1 {
		workers = 1
	}

	predictions := make([]Prediction, len(examples))
	losses := make([]float64, len(examples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ex := range examples {
		i, ex := i, ex
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			probs, err := m.Probabilities(ex.Input)
			if err != nil {
				return err
			}

			loss, err := m.config.Loss(probs, ex.Label)
			if err != nil {
				return err
			}

			dist := m.config.Distribution(probs)
			predictions[i] = Prediction{Class: argmax(dist), Probabilities: dist}
			losses[i] = loss
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Evaluation{}, err
	}

	var total float64
	var correct int
	for i, ex := range examples {
		total += losses[i]
		if predictions[i].Class == m.config.Class(ex.Label) {
			correct++
		}
	}

	return Evaluation{
		Loss:        total / float64(len(examples)),
		Accuracy:    float64(correct) / float64(len(examples)),
		Predictions: predictions,
	}, nil
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
