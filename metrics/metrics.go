// Package metrics counts validation activity with Prometheus collectors.
// gaffer runs as a batch job, so the collectors live on a private registry
// that is written out as a node_exporter textfile at the end of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/report"
)

const namespace = "gaffer"

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	lines        prometheus.Counter
	skipped      prometheus.Counter
	associations *prometheus.CounterVec
	verdicts     *prometheus.CounterVec
	levels       *prometheus.CounterVec
	types        *prometheus.CounterVec
	duration     prometheus.Gauge
}

// New registers a fresh set of collectors. group labels every series so
// textfiles from several submitters can sit side by side.
func New(group string) *Metrics {
	constLabels := prometheus.Labels{"group": group}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lines_total",
			Help:        "Data lines read.",
			ConstLabels: constLabels,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "lines_skipped_total",
			Help:        "Data lines that produced no record.",
			ConstLabels: constLabels,
		}),
		associations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "associations_total",
			Help:        "Records by final outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rule_verdicts_total",
			Help:        "Non-passing rule verdicts by rule.",
			ConstLabels: constLabels,
		}, []string{"rule", "verdict"}),
		levels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "report_messages_total",
			Help:        "Report messages by level.",
			ConstLabels: constLabels,
		}, []string{"level"}),
		types: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "report_message_types_total",
			Help:        "Report messages by type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: constLabels,
		}),
	}
	m.registry.MustRegister(m.lines, m.skipped, m.associations, m.verdicts, m.levels, m.types, m.duration)
	return m
}

// Registry exposes the private registry, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Line counts one data line; skipped marks lines that yielded no record.
func (m *Metrics) Line(skipped bool) {
	m.lines.Inc()
	if skipped {
		m.skipped.Inc()
	}
}

// Association counts a record as accepted or dropped.
func (m *Metrics) Association(accepted bool) {
	outcome := "accepted"
	if !accepted {
		outcome = "dropped"
	}
	m.associations.WithLabelValues(outcome).Inc()
}

// Verdict counts a non-passing rule verdict.
func (m *Metrics) Verdict(rule, verdict string) {
	m.verdicts.WithLabelValues(rule, verdict).Inc()
}

// Duration records the run's wall time.
func (m *Metrics) Duration(seconds float64) {
	m.duration.Set(seconds)
}

// ObserveReport copies the report's per-level and per-type message counts.
// Call it once, after the run.
func (m *Metrics) ObserveReport(rep *report.Report) {
	for _, level := range report.Levels() {
		if n := rep.Count(level); n > 0 {
			m.levels.WithLabelValues(string(level)).Add(float64(n))
		}
	}
	for _, typ := range append(rep.Types(), report.TypeRule) {
		if n := rep.TypeCount(typ); n > 0 {
			m.types.WithLabelValues(typ).Add(float64(n))
		}
	}
}

// WriteTextfile writes every collector in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
