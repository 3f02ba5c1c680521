package qnn

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Progress is one periodic training report.
type Progress struct {
	RunID       string
	Epoch       int
	Epochs      int
	Loss        float64
	BestLoss    float64
	Elapsed     time.Duration
	Remaining   time.Duration
	Evaluations int64
}

// Reporter receives progress. It observes training and must never feed
// anything back into it.
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

// Reporters fans one report out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) Report(p Progress) {
	for _, r := range rs {
		r.Report(p)
	}
}

type nopReporter struct{}

func (nopReporter) Report(Progress) {}

// LogReporter writes one structured log line per report.
type LogReporter struct {
	logger *log.Logger
}

func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			Prefix:          "qnn",
		}),
	}
}

func (r *LogReporter) Report(p Progress) {
	r.logger.Info(
		"epoch",
		"run", p.RunID,
		"epoch", p.Epoch,
		"of", p.Epochs,
		"loss", p.Loss,
		"best", p.BestLoss,
		"elapsed", p.Elapsed.Round(time.Millisecond),
		"eta", p.Remaining.Round(time.Millisecond),
		"simulations", p.Evaluations,
	)
}

// MetricsReporter mirrors the latest report into Prometheus gauges.
type MetricsReporter struct {
	epoch       prometheus.Gauge
	loss        prometheus.Gauge
	bestLoss    prometheus.Gauge
	simulations prometheus.Gauge
	remaining   prometheus.Gauge
}

func NewMetricsReporter(reg prometheus.Registerer) (*MetricsReporter, error) {
	r := &MetricsReporter{
		epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qnn_training_epoch",
			Help: "Index of the last reported training epoch.",
		}),
		loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qnn_training_loss",
			Help: "Average cross-entropy of the last reported epoch.",
		}),
		bestLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qnn_training_best_loss",
			Help: "Lowest average epoch loss seen so far.",
		}),
		simulations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qnn_gradient_simulations",
			Help: "Circuit evaluations spent on finite-difference gradients.",
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qnn_training_remaining_seconds",
			Help: "Estimated time until the last epoch finishes.",
		}),
	}

	for _, c := range []prometheus.Collector{r.epoch, r.loss, r.bestLoss, r.simulations, r.remaining} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *MetricsReporter) Report(p Progress) {
	r.epoch.Set(float64(p.Epoch))
	r.loss.Set(p.Loss)
	r.bestLoss.Set(p.BestLoss)
	r.simulations.Set(float64(p.Evaluations))
	r.remaining.Set(p.Remaining.Seconds())
}
