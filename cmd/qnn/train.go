package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/theapemachine/qnn"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier on synthetic data and export the resulting circuit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runTrain(ctx)
	},
}

func init() {
	flags := trainCmd.Flags()
	flags.Int("qubits", 4, "number of qubits, one per input feature")
	flags.Int("classes", 3, "number of classes, 1 for a binary classifier")
	flags.Int("layers", 2, "number of variational layers")
	flags.String("topology", string(qnn.TopologyRing), "entangling topology: ring or complete")
	flags.Int("target-qubit", 0, "readout qubit in binary mode")
	flags.Int("max-qubits", qnn.DefaultMaxQubits, "largest register the simulator accepts")

	hp := qnn.DefaultHyperparameters()
	flags.Int("epochs", hp.Epochs, "training epochs")
	flags.Float64("learning-rate", hp.LearningRate, "gradient descent step size")
	flags.Float64("epsilon", hp.Epsilon, "finite-difference step")
	flags.Int("progress-interval", hp.ProgressInterval, "epochs between progress reports, 0 disables them")
	flags.Int("workers", 0, "gradient worker pool size, 0 or 1 runs sequentially")
	flags.Int("shots", 0, "estimate probabilities from this many shots instead of exactly")
	flags.String("objective", string(hp.Objective), "gradient objective: overlap or cross_entropy")

	flags.Uint64("seed", 42, "seed for data generation and parameter initialization")
	flags.Int("samples", 10, "number of synthetic training examples")
	flags.String("checkpoint", "trained_model.yaml", "where to keep the best parameters")
	flags.String("circuit", "trained_neural_network.circuit", "where to export the final circuit")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while training")
}

func circuitConfig() qnn.CircuitConfig {
	return qnn.CircuitConfig{
		NumQubits:   v.GetInt("qubits"),
		NumClasses:  v.GetInt("classes"),
		NumLayers:   v.GetInt("layers"),
		Topology:    qnn.Topology(v.GetString("topology")),
		TargetQubit: v.GetInt("target-qubit"),
		MaxQubits:   v.GetInt("max-qubits"),
	}
}

func hyperparameters() qnn.Hyperparameters {
	return qnn.Hyperparameters{
		Epochs:           v.GetInt("epochs"),
		LearningRate:     v.GetFloat64("learning-rate"),
		Epsilon:          v.GetFloat64("epsilon"),
		ProgressInterval: v.GetInt("progress-interval"),
		Workers:          v.GetInt("workers"),
		Shots:            v.GetInt("shots"),
		Objective:        qnn.Objective(v.GetString("objective")),
	}
}

func runTrain(ctx context.Context) error {
	cfg := circuitConfig()
	hp := hyperparameters()
	seed := v.GetUint64("seed")

	data := rand.New(rand.NewPCG(seed, 0))
	examples := syntheticExamples(data, v.GetInt("samples"), cfg.NumQubits, cfg)

	reg := prometheus.NewRegistry()
	metrics, err := qnn.NewMetricsReporter(reg)
	if err != nil {
		return err
	}

	if addr := v.GetString("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	trainer, err := qnn.NewTrainer(
		cfg,
		hp,
		rand.New(rand.NewPCG(seed, 1)),
		qnn.WithReporter(qnn.Reporters{qnn.NewLogReporter(os.Stderr), metrics}),
		qnn.WithCheckpoint(v.GetString("checkpoint")),
	)
	if err != nil {
		return err
	}

	log.Info("training", "run", trainer.RunID(), "examples", len(examples), "parameters", cfg.NumParameters())

	result, err := trainer.Train(ctx, examples)
	if err != nil {
		if result != nil && result.Parameters != nil {
			log.Warn("training failed, best parameters kept", "checkpoint", v.GetString("checkpoint"), "best_loss", result.BestLoss)
		}
		return err
	}

	log.Info("training completed", "best_loss", result.BestLoss, "epochs", result.Epochs)

	model, err := qnn.NewModel(cfg, result.Parameters)
	if err != nil {
		return err
	}

	eval, err := qnn.Evaluate(ctx, model, examples, max(hp.Workers, 1))
	if err != nil {
		return err
	}
	log.Info("training set", "loss", eval.Loss, "accuracy", eval.Accuracy)

	test := randomFeatures(data, cfg.NumQubits)
	scaleInto2Pi(test)

	prediction, err := model.Predict(test)
	if err != nil {
		return err
	}
	fmt.Printf("Test input: %v\nPrediction probabilities: %v\nPredicted class: %d\n",
		test, prediction.Probabilities, prediction.Class)

	return exportCircuit(model, test, v.GetString("circuit"))
}

func exportCircuit(model *qnn.Model, input []float64, path string) error {
	circuit, err := model.Circuit(input)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := qnn.ExportCircuit(f, circuit); err != nil {
		return err
	}

	log.Info("circuit exported", "file", path, "gates", circuit.Len())
	return f.Close()
}
