package qnn

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// Status is the Trainer's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusTraining
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTraining:
		return "training"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TrainingState is a snapshot of the Trainer's parameters. Current is
// refreshed after every example's update, Best and Epoch at the end of each
// epoch. Best never aliases Current.
type TrainingState struct {
	Current  []float64
	Best     []float64
	BestLoss float64
	Epoch    int
}

/*
TrainingResult is the outcome of a run. On failure Parameters holds the best
parameters recorded before the failing epoch, which may be nil when no epoch
finished, and Status is StatusFailed.
*/
type TrainingResult struct {
	RunID      string
	Status     Status
	Parameters []float64
	BestLoss   float64
	Epochs     int
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithReporter sends progress to r every ProgressInterval epochs.
func WithReporter(r Reporter) TrainerOption {
	return func(t *Trainer) {
		t.reporter = r
	}
}

// WithCheckpoint writes the best parameters to path whenever they improve.
func WithCheckpoint(path string) TrainerOption {
	return func(t *Trainer) {
		t.checkpoint = path
	}
}

// WithEvaluator replaces the evaluator derived from the hyperparameters.
func WithEvaluator(ev Evaluator) TrainerOption {
	return func(t *Trainer) {
		t.evaluator = ev
	}
}

/*
Trainer runs gradient descent over the circuit parameters. It owns the
parameter vector exclusively: examples are visited in input order, and each
one gets a forward pass, a gradient and an in-place update before the next.
A Trainer runs once; Idle moves to Training and ends in Completed or Failed.
*/
type Trainer struct {
	config     CircuitConfig
	hyper      Hyperparameters
	rng        *rand.Rand
	builder    *Builder
	evaluator  Evaluator
	reporter   Reporter
	checkpoint string
	retry      *RetryPolicy
	runID      string

	mu        sync.RWMutex
	status    Status
	state     TrainingState
	completed int
}

// NewTrainer validates everything up front. rng seeds the initial parameters
// and, in shot mode, the sampler, so a fixed seed reproduces a run exactly.
func NewTrainer(cfg CircuitConfig, hp Hyperparameters, rng *rand.Rand, opts ...TrainerOption) (*Trainer, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}

	if rng == nil {
		return nil, invalid("rng", "random generator is required")
	}

	builder, err := NewBuilder(cfg)
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		config:  cfg,
		hyper:   hp,
		rng:     rng,
		builder: builder,
		retry:   NewRetryPolicy(3, 50*time.Millisecond),
		runID:   uuid.NewString(),
		state:   TrainingState{BestLoss: math.Inf(1)},
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.evaluator == nil {
		sim := NewSimulator(cfg.MaxQubits)
		if hp.Shots > 0 {
			sampler := rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
			if t.evaluator, err = NewShotEvaluator(sim, hp.Shots, sampler); err != nil {
				return nil, err
			}
		} else {
			t.evaluator = NewExactEvaluator(sim)
		}
	}

	if t.reporter == nil {
		t.reporter = nopReporter{}
	}

	return t, nil
}

func (t *Trainer) RunID() string { return t.runID }

func (t *Trainer) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Trainer) State() TrainingState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return TrainingState{
		Current:  append([]float64(nil), t.state.Current...),
		Best:     append([]float64(nil), t.state.Best...),
		BestLoss: t.state.BestLoss,
		Epoch:    t.state.Epoch,
	}
}

/*
Train runs all configured epochs over examples and returns the best
parameters seen. Malformed examples are rejected before any simulation and
leave the Trainer Idle. A non-finite loss or gradient, a failed forward or
backward pass, or ctx ending between examples moves the Trainer to Failed
and returns a *TrainingError together with the salvageable result.
*/
func (t *Trainer) Train(ctx context.Context, examples []Example) (*TrainingResult, error) {
	if err := t.checkExamples(examples); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.status != StatusIdle {
		status := t.status
		t.mu.Unlock()
		return nil, invalid("Trainer", "trainer is %s, a trainer runs once", status)
	}
	t.status = StatusTraining
	t.mu.Unlock()

	var pool *Q
	if t.hyper.Workers > 1 {
		pool = NewQ(ctx, t.hyper.Workers, NewPoolConfig())
		defer func() {
			errnie.Info("Train - run %s pool %v", t.runID, pool.metrics.ExportMetrics())
			pool.Close()
		}()
	}

	estimator, err := NewGradientEstimator(
		t.builder,
		t.evaluator,
		WithEpsilon(t.hyper.Epsilon),
		WithObjective(t.hyper.Objective),
		WithPool(pool),
	)
	if err != nil {
		return t.fail(0, -1, err)
	}

	params := make([]float64, t.config.NumParameters())
	for i := range params {
		params[i] = t.rng.Float64() * 2 * math.Pi
	}
	t.setCurrent(params)

	errnie.Info(
		"Train - run %s, %d examples, %d epochs, %d parameters",
		t.runID,
		len(examples),
		t.hyper.Epochs,
		len(params),
	)

	start := time.Now()

	for epoch := 0; epoch < t.hyper.Epochs; epoch++ {
		var total float64

		for j, ex := range examples {
			if err := ctx.Err(); err != nil {
				return t.fail(epoch, j, err)
			}

			loss, err := t.forward(ex, params)
			if err != nil {
				return t.fail(epoch, j, err)
			}
			if !isFinite(loss) {
				return t.fail(epoch, j, errors.New("loss is not finite"))
			}
			total += loss

			grad, err := estimator.Estimate(ex.Input, params, ex.Label)
			if err != nil {
				return t.fail(epoch, j, err)
			}
			for i, g := range grad {
				if !isFinite(g) {
					return t.fail(epoch, j, errors.New("gradient is not finite"))
				}
				params[i] -= t.hyper.LearningRate * g
			}
			t.setCurrent(params)
		}

		avg := total / float64(len(examples))
		improved := t.endEpoch(epoch, params, avg)

		if improved && t.checkpoint != "" {
			if err := t.saveCheckpoint(StatusTraining); err != nil {
				return t.fail(epoch, -1, err)
			}
		}

		if t.shouldReport(epoch) {
			t.report(epoch, avg, start, estimator.Evaluations())
		}
	}

	if t.checkpoint != "" {
		if err := t.saveCheckpoint(StatusCompleted); err != nil {
			return t.fail(t.hyper.Epochs-1, -1, err)
		}
	}

	t.mu.Lock()
	t.status = StatusCompleted
	t.mu.Unlock()

	result := t.result(StatusCompleted)
	errnie.Info("Train - run %s completed, best loss %.6f", t.runID, result.BestLoss)
	return result, nil
}

func (t *Trainer) checkExamples(examples []Example) error {
	if len(examples) == 0 {
		return invalid("examples", "training needs at least one example")
	}

	want := t.config.NumClasses
	if t.config.Binary() {
		want = 1
	}

	for i, ex := range examples {
		if len(ex.Input) > t.config.NumQubits {
			return invalid("input_data", "example %d: input data length (%d) exceeds number of qubits (%d)", i, len(ex.Input), t.config.NumQubits)
		}
		if len(ex.Label) != want {
			return &ShapeMismatchError{Predicted: want, Labels: len(ex.Label)}
		}
	}
	return nil
}

func (t *Trainer) forward(ex Example, params []float64) (float64, error) {
	circuit, err := t.builder.Build(ex.Input, params)
	if err != nil {
		return 0, err
	}

	probs, err := t.evaluator.Probabilities(circuit, t.config.Readout())
	if err != nil {
		return 0, err
	}

	return t.config.Loss(probs, ex.Label)
}

func (t *Trainer) setCurrent(params []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Current = append(t.state.Current[:0], params...)
}

// endEpoch records the epoch and snapshots params when avg beats the best.
func (t *Trainer) endEpoch(epoch int, params []float64, avg float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Current = append(t.state.Current[:0], params...)
	t.state.Epoch = epoch
	t.completed = epoch + 1

	if avg >= t.state.BestLoss {
		return false
	}

	t.state.BestLoss = avg
	t.state.Best = append([]float64(nil), params...)
	return true
}

func (t *Trainer) shouldReport(epoch int) bool {
	interval := t.hyper.ProgressInterval
	if interval <= 0 {
		return false
	}
	return epoch%interval == 0 || epoch == t.hyper.Epochs-1
}

func (t *Trainer) report(epoch int, loss float64, start time.Time, evaluations int64) {
	elapsed := time.Since(start)
	done := epoch + 1
	remaining := time.Duration(float64(elapsed) / float64(done) * float64(t.hyper.Epochs-done))

	t.mu.RLock()
	best := t.state.BestLoss
	t.mu.RUnlock()

	t.reporter.Report(Progress{
		RunID:       t.runID,
		Epoch:       epoch,
		Epochs:      t.hyper.Epochs,
		Loss:        loss,
		BestLoss:    best,
		Elapsed:     elapsed,
		Remaining:   remaining,
		Evaluations: evaluations,
	})
}

func (t *Trainer) fail(epoch, example int, cause error) (*TrainingResult, error) {
	t.mu.Lock()
	t.status = StatusFailed
	t.mu.Unlock()

	err := &TrainingError{Epoch: epoch, Example: example, Err: cause}
	errnie.Info("Train - run %s failed: %v", t.runID, err)

	result := t.result(StatusFailed)
	if t.checkpoint != "" && result.Parameters != nil {
		if cpErr := t.saveCheckpoint(StatusFailed); cpErr != nil {
			errnie.Info("Train - run %s could not mark checkpoint failed: %v", t.runID, cpErr)
		}
	}
	return result, err
}

func (t *Trainer) result(status Status) *TrainingResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var best []float64
	if t.state.Best != nil {
		best = append([]float64(nil), t.state.Best...)
	}

	return &TrainingResult{
		RunID:      t.runID,
		Status:     status,
		Parameters: best,
		BestLoss:   t.state.BestLoss,
		Epochs:     t.completed,
	}
}

func (t *Trainer) saveCheckpoint(status Status) error {
	cp := t.checkpointFor(status)
	return t.retry.Do(func() error {
		return SaveCheckpoint(t.checkpoint, cp)
	})
}

func (t *Trainer) checkpointFor(status Status) Checkpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Checkpoint{
		RunID:      t.runID,
		Status:     status.String(),
		Epoch:      t.state.Epoch,
		BestLoss:   t.state.BestLoss,
		Config:     t.config,
		Parameters: append([]float64(nil), t.state.Best...),
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
