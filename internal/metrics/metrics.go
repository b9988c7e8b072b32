package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spigell/assessment-funnel/internal/assessment"
)

// Funnel holds the gauges describing one evaluation.
type Funnel struct {
	registry *prometheus.Registry

	candidates *prometheus.GaugeVec
	positions  *prometheus.GaugeVec
}

func NewFunnel(pipeline string) *Funnel {
	labels := prometheus.Labels{}
	if pipeline != "" {
		labels["pipeline"] = pipeline
	}

	f := &Funnel{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "assessment_funnel_candidates",
				Help:        "Number of candidates that reached a step, by the decision they earned there",
				ConstLabels: labels,
			},
			[]string{"step", "decision"},
		),
		positions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "assessment_candidates_position",
				Help:        "Number of candidates currently blocked at a step, or completed",
				ConstLabels: labels,
			},
			[]string{"position"},
		),
	}

	f.registry.MustRegister(f.candidates, f.positions)
	return f
}

// Observe replaces the gauge values with the outcome of e.
func (f *Funnel) Observe(e *assessment.Evaluation) {
	f.candidates.Reset()
	f.positions.Reset()

	for _, step := range e.Steps {
		counts := e.Counts[step.ID]
		for _, decision := range assessment.StepDecisions {
			f.candidates.WithLabelValues(string(step.ID), decision.String()).Set(float64(counts.Get(decision)))
		}
		f.positions.WithLabelValues(string(step.ID)).Set(0)
	}
	f.positions.WithLabelValues("completed").Set(0)

	for _, position := range e.Positions {
		label := "completed"
		if index, ok := position.Index(); ok && index < len(e.Steps) {
			label = string(e.Steps[index].ID)
		}
		f.positions.WithLabelValues(label).Inc()
	}
}

// WriteToTextfile writes the gauges in the format read by the node exporter textfile collector.
func (f *Funnel) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, f.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}
	return nil
}

func (f *Funnel) Registry() *prometheus.Registry {
	return f.registry
}
