// Package observability provides run metrics for pr-label-tag.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pr_label_tag"

// knownOutcomes and friends are pre-initialized so every series is exported,
// with value zero, even when the run never touched it.
var (
	knownOutcomes  = []string{"no_decision", "ambiguous", "preview", "apply", "suppress", "failed"}
	knownDecisions = []string{"none", "ambiguous", "patch", "minor", "major"}
	knownMutations = []string{"create", "update"}
)

// Metrics collects the measurements of a run into a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	tags        prometheus.Counter
	dispatched  prometheus.Counter
	comments    *prometheus.CounterVec
	runDuration prometheus.Gauge
	info        *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(version string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of runs by outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of bump decisions by result.",
		}, []string{"decision"}),
		tags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_published_total",
			Help:      "Total number of tags created.",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_dispatched_total",
			Help:      "Total number of workflow_dispatch events sent.",
		}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_mutations_total",
			Help:      "Total number of status comment writes by operation.",
		}, []string{"op"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the last run.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "info",
			Help:      "Build information.",
		}, []string{"version"}),
	}

	m.registry.MustRegister(m.runs, m.decisions, m.tags, m.dispatched, m.comments, m.runDuration, m.info)

	for _, o := range knownOutcomes {
		m.runs.WithLabelValues(o)
	}
	for _, d := range knownDecisions {
		m.decisions.WithLabelValues(d)
	}
	for _, op := range knownMutations {
		m.comments.WithLabelValues(op)
	}
	m.info.WithLabelValues(version).Set(1)

	return m
}

// RecordRun records the end of a run.
func (m *Metrics) RecordRun(outcome string) {
	m.runs.WithLabelValues(outcome).Inc()
}

// RecordDecision records a bump decision.
func (m *Metrics) RecordDecision(decision string) {
	m.decisions.WithLabelValues(decision).Inc()
}

// RecordTagPublished records a created tag.
func (m *Metrics) RecordTagPublished() {
	m.tags.Inc()
}

// RecordWorkflowsDispatched records n dispatched workflows.
func (m *Metrics) RecordWorkflowsDispatched(n int) {
	if n > 0 {
		m.dispatched.Add(float64(n))
	}
}

// RecordCommentMutation records a status comment write.
func (m *Metrics) RecordCommentMutation(op string) {
	m.comments.WithLabelValues(op).Inc()
}

// ObserveRunDuration records how long the run took.
func (m *Metrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Set(d.Seconds())
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the metrics to path in the text format read by the
// node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
