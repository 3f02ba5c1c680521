package qnn

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMaxQubits bounds the statevector at 2^20 amplitudes (16 MiB).
	DefaultMaxQubits = 20

	DefaultLearningRate     = 0.01
	DefaultEpsilon          = 0.01
	DefaultProgressInterval = 100
)

// Topology selects the entangling pattern appended after every rotation layer.
type Topology string

const (
	// TopologyRing chains CNOT(i, i+1) and closes the loop with CNOT(n-1, 0).
	TopologyRing Topology = "ring"
	// TopologyComplete applies CNOT(i, j) for every pair i < j.
	TopologyComplete Topology = "complete"
)

// Objective selects the scalar that the finite-difference gradient is taken of.
type Objective string

const (
	// ObjectiveOverlap is Σ prob·label over the raw clipped marginals.
	ObjectiveOverlap Objective = "overlap"
	// ObjectiveCrossEntropy is the training loss on the renormalized readout.
	ObjectiveCrossEntropy Objective = "cross_entropy"
)

var validate = validator.New()

/*
CircuitConfig describes the classifier circuit. It is a plain value: every
operation that needs it takes a copy, nothing mutates it after Validate.

NumClasses == 1 selects binary mode, where the prediction is the marginal of
TargetQubit and the label is a single 0/1 value. Otherwise class k is read
from the marginal of qubit k, so NumClasses may not exceed NumQubits.
*/
type CircuitConfig struct {
	NumQubits   int      `yaml:"num_qubits" mapstructure:"num_qubits" validate:"gte=1"`
	NumClasses  int      `yaml:"num_classes" mapstructure:"num_classes" validate:"gte=1"`
	NumLayers   int      `yaml:"num_layers" mapstructure:"num_layers" validate:"gte=1"`
	Topology    Topology `yaml:"topology" mapstructure:"topology" validate:"oneof=ring complete"`
	TargetQubit int      `yaml:"target_qubit" mapstructure:"target_qubit" validate:"gte=0"`
	MaxQubits   int      `yaml:"max_qubits" mapstructure:"max_qubits" validate:"gte=0"`
}

// NewCircuitConfig returns a ring-entangled config with the default qubit cap.
func NewCircuitConfig(qubits, classes, layers int) CircuitConfig {
	return CircuitConfig{
		NumQubits:  qubits,
		NumClasses: classes,
		NumLayers:  layers,
		Topology:   TopologyRing,
		MaxQubits:  DefaultMaxQubits,
	}
}

// Validate checks the config. A qubit count above MaxQubits is reported as a
// DimensionError, everything else as a ValidationError.
func (cfg CircuitConfig) Validate() error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	if cfg.NumQubits > cfg.maxQubits() {
		return &DimensionError{Qubits: cfg.NumQubits, MaxQubits: cfg.maxQubits()}
	}

	if cfg.Binary() {
		if cfg.TargetQubit >= cfg.NumQubits {
			return invalid("TargetQubit", "target qubit %d outside register of %d qubits", cfg.TargetQubit, cfg.NumQubits)
		}
		return nil
	}

	if cfg.NumClasses > cfg.NumQubits {
		return invalid("NumClasses", "%d classes need at least %d qubits, have %d", cfg.NumClasses, cfg.NumClasses, cfg.NumQubits)
	}

	return nil
}

// Binary reports whether the circuit is a single-output binary classifier.
func (cfg CircuitConfig) Binary() bool {
	return cfg.NumClasses == 1
}

// NumParameters is the length of the trainable ParameterVector.
func (cfg CircuitConfig) NumParameters() int {
	return cfg.NumQubits * cfg.NumLayers
}

// Readout lists the qubits whose marginals form the probability vector.
func (cfg CircuitConfig) Readout() []int {
	if cfg.Binary() {
		return []int{cfg.TargetQubit}
	}

	qubits := make([]int, cfg.NumClasses)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

func (cfg CircuitConfig) maxQubits() int {
	if cfg.MaxQubits > 0 {
		return cfg.MaxQubits
	}
	return DefaultMaxQubits
}

/*
Hyperparameters drive the Trainer.

Workers > 1 fans the gradient out over a worker pool. Shots > 0 replaces the
exact evaluator with a finite-shot sampler; gradients then become noisy
estimates whose variance shrinks with the shot count.
*/
type Hyperparameters struct {
	Epochs           int       `yaml:"epochs" mapstructure:"epochs" validate:"gte=1"`
	LearningRate     float64   `yaml:"learning_rate" mapstructure:"learning_rate" validate:"gt=0"`
	Epsilon          float64   `yaml:"epsilon" mapstructure:"epsilon" validate:"gt=0"`
	ProgressInterval int       `yaml:"progress_interval" mapstructure:"progress_interval" validate:"gte=0"`
	Workers          int       `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	Shots            int       `yaml:"shots" mapstructure:"shots" validate:"gte=0"`
	Objective        Objective `yaml:"objective" mapstructure:"objective" validate:"oneof=overlap cross_entropy"`
}

// DefaultHyperparameters mirrors the settings the classifier was first tuned with.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Epochs:           1000,
		LearningRate:     DefaultLearningRate,
		Epsilon:          DefaultEpsilon,
		ProgressInterval: DefaultProgressInterval,
		Objective:        ObjectiveOverlap,
	}
}

func (hp Hyperparameters) Validate() error {
	return validateStruct(hp)
}

// PoolConfig tunes the gradient worker pool.
type PoolConfig struct {
	SchedulingTimeout time.Duration
}

func NewPoolConfig() *PoolConfig {
	return &PoolConfig{
		SchedulingTimeout: 10 * time.Second,
	}
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return invalid(fe.Field(), "must satisfy %s, got %v", rule, fe.Value())
}
