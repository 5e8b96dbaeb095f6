// Package telemetry exposes Prometheus counters for the evaluation
// pipeline. Recording is optional: a nil *Metrics is a no-op everywhere.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Evaluations *prometheus.CounterVec
	HardStops   *prometheus.CounterVec
	Winners     *prometheus.CounterVec
}

// NewMetrics creates the collectors. Call MustRegister to attach them to a
// registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optioneer_evaluations_total",
				Help: "Total evaluations by terminal outcome",
			},
			[]string{"outcome"},
		),
		HardStops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optioneer_hard_stops_total",
				Help: "Universal hard stops by reason",
			},
			[]string{"reason"},
		),
		Winners: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optioneer_winners_total",
				Help: "Selected strategies by family",
			},
			[]string{"strategy"},
		),
	}
}

// MustRegister attaches all collectors to the given registerer.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Evaluations, m.HardStops, m.Winners)
}

// RecordEvaluation counts a terminal outcome.
func (m *Metrics) RecordEvaluation(outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(outcome).Inc()
}

// RecordHardStops counts each fired universal stop.
func (m *Metrics) RecordHardStops(reasons []string) {
	if m == nil {
		return
	}
	for _, r := range reasons {
		m.HardStops.WithLabelValues(r).Inc()
	}
}

// RecordWinner counts a selected strategy.
func (m *Metrics) RecordWinner(strategy string) {
	if m == nil {
		return
	}
	m.Winners.WithLabelValues(strategy).Inc()
}
