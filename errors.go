package qnn

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrDimension     = errors.New("qubit count exceeds simulation capacity")
	ErrTraining      = errors.New("training failed")
)

/*
ValidationError reports malformed input data or an invalid configuration.
It is raised before any simulation happens and is never worth retrying.
*/
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ShapeMismatchError is returned when a probability vector and a label
// vector disagree in length.
type ShapeMismatchError struct {
	Predicted int
	Labels    int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf(
		"%v: pred_probs has length %d, but label_vector has length %d",
		ErrShapeMismatch, e.Predicted, e.Labels,
	)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// DimensionError is returned when a circuit asks for more qubits than the
// simulator is configured to hold.
type DimensionError struct {
	Qubits    int
	MaxQubits int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: %d qubits requested, limit is %d", ErrDimension, e.Qubits, e.MaxQubits)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimension
}

/*
TrainingError aborts a training run. Epoch and Example locate the step that
failed; Example is -1 when the failure happened outside the per-example loop.
*/
type TrainingError struct {
	Epoch   int
	Example int
	Err     error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("%v at epoch %d, example %d: %v", ErrTraining, e.Epoch, e.Example, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

func (e *TrainingError) Is(target error) bool {
	return target == ErrTraining
}
