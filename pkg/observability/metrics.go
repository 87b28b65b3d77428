package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "docket"

// Metrics holds the docket collectors.
type Metrics struct {
	registry  *prometheus.Registry
	questions *prometheus.CounterVec
	steps     *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	resets    *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry. withRuntime adds the
// Go runtime and process collectors.
func NewMetrics(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "questions_total",
			Help:      "Questions asked, by document kind and field.",
		}, []string{"kind", "field"}),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of generate, render and deliver steps.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"step", "kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "step_failures_total",
			Help:      "Failed generate, render and deliver steps.",
		}, []string{"step", "kind"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "resets_total",
			Help:      "Session resets, by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.questions, m.steps, m.failures, m.resets)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records events as metrics and, when logger is non-nil, logs them.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestion: func(ctx context.Context, e *domain.QuestionEvent) {
			m.questions.WithLabelValues(string(e.Kind), e.Field).Inc()
			if logger != nil {
				logger.Info("question", "session_id", e.SessionID, "kind", e.Kind, "field", e.Field)
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(string(e.Type), string(e.Kind)).Observe(e.Duration.Seconds())
			if e.IsError {
				m.failures.WithLabelValues(string(e.Type), string(e.Kind)).Inc()
			}
			if logger != nil {
				logger.Info("step",
					"session_id", e.SessionID,
					"step", e.Type,
					"kind", e.Kind,
					"duration", e.Duration,
					"is_error", e.IsError,
				)
			}
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			m.resets.WithLabelValues(e.Reason).Inc()
			if logger != nil {
				logger.Info("reset", "session_id", e.SessionID, "reason", e.Reason)
			}
		},
	}
}

// Combine fans every event out to all hooks in order. Nil callbacks are skipped.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestion: func(ctx context.Context, e *domain.QuestionEvent) {
			for _, h := range hooks {
				if h.OnQuestion != nil {
					h.OnQuestion(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			for _, h := range hooks {
				if h.OnReset != nil {
					h.OnReset(ctx, e)
				}
			}
		},
	}
}
