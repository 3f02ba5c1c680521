package qnn

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

/*
Checkpoint is the on-disk record of a run's best parameters. Status is the
trainer status at write time, so a checkpoint left by a failed run says
"failed" rather than passing for a finished one.
*/
type Checkpoint struct {
	RunID      string        `yaml:"run_id"`
	Status     string        `yaml:"status"`
	Epoch      int           `yaml:"epoch"`
	BestLoss   float64       `yaml:"best_loss"`
	Config     CircuitConfig `yaml:"config"`
	Parameters []float64     `yaml:"parameters"`
}

// SaveCheckpoint writes cp as YAML, replacing path atomically.
func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// LoadCheckpoint reads and validates a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}

	if err := cp.Config.Validate(); err != nil {
		return nil, err
	}

	if len(cp.Parameters) != cp.Config.NumParameters() {
		return nil, invalid("parameters", "checkpoint holds %d parameters, config needs %d", len(cp.Parameters), cp.Config.NumParameters())
	}

	return &cp, nil
}

// Model rebuilds the classifier the checkpoint describes.
func (cp *Checkpoint) Model() (*Model, error) {
	return NewModel(cp.Config, cp.Parameters)
}
