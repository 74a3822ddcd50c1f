package observability

import (
	"context"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	renders            *prometheus.CounterVec
	advances           *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	completions        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_renders_total",
				Help: "Total number of rendered action descriptors",
			},
			[]string{"form_id", "state"},
		),
		advances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_advances_total",
				Help: "Total number of accepted submissions that moved a participant",
			},
			[]string{"form_id"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_validation_failures_total",
				Help: "Total number of rejected submissions",
			},
			[]string{"form_id", "node_id"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_completions_total",
				Help: "Total number of participants reaching the end of a form",
			},
			[]string{"form_id"},
		),
	}
	reg.MustRegister(m.renders, m.advances, m.validationFailures, m.completions)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRender: func(_ context.Context, e *domain.FlowEvent) {
			m.renders.WithLabelValues(e.FormID, string(e.State)).Inc()
		},
		OnAdvance: func(_ context.Context, e *domain.FlowEvent) {
			m.advances.WithLabelValues(e.FormID).Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.FlowEvent) {
			m.validationFailures.WithLabelValues(e.FormID, e.NodeID).Inc()
		},
		OnComplete: func(_ context.Context, e *domain.FlowEvent) {
			m.completions.WithLabelValues(e.FormID).Inc()
		},
	}
}
