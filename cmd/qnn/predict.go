package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qnn"
)

var predictCmd = &cobra.Command{
	Use:   "predict [feature...]",
	Short: "Classify scaled features with a checkpointed model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := make([]float64, len(args))
		for i, arg := range args {
			x, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("feature %d: %w", i, err)
			}
			input[i] = x
		}

		cp, err := qnn.LoadCheckpoint(v.GetString("checkpoint"))
		if err != nil {
			return err
		}

		model, err := cp.Model()
		if err != nil {
			return err
		}

		prediction, err := model.Predict(input)
		if err != nil {
			return err
		}

		fmt.Printf("checkpoint %s (%s, best loss %.6f)\n", cp.RunID, cp.Status, cp.BestLoss)
		fmt.Printf("probabilities %v\nclass %d\n", prediction.Probabilities, prediction.Class)
		return nil
	},
}

func init() {
	predictCmd.Flags().String("checkpoint", "trained_model.yaml", "checkpoint written by train")
}
