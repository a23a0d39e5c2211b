// Package observability wires Prometheus metrics and OpenTelemetry
// tracing through the runtime (SPEC_FULL.md DOMAIN STACK), grounded on
// the teacher's internal/observability package, scaled down to the
// signals this runtime's Design Notes actually call for: LLM call
// latency and retries, tool invocation counts, and critic rounds.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics centralizes the runtime's Prometheus collectors.
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	start := time.Now()
//	...
//	metrics.RecordLLMRequest(model, "success", time.Since(start).Seconds(), attempts)
type Metrics struct {
	// LLMRequestDuration measures chat-completion call latency.
	// Labels: model, status (success|error)
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts chat-completion calls.
	// Labels: model, status
	LLMRequestCounter *prometheus.CounterVec

	// LLMRetryCounter counts retry attempts beyond the first (spec
	// §4.1 backoff policy).
	// Labels: model
	LLMRetryCounter *prometheus.CounterVec

	// ToolExecutionCounter counts tool invocations.
	// Labels: tool_name, status (success|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	// Labels: tool_name
	ToolExecutionDuration *prometheus.HistogramVec

	// CriticRoundCounter counts Critic evaluations by verdict (spec
	// §4.10 steps 4-5).
	// Labels: domain, verdict (accepted|rejected)
	CriticRoundCounter *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics with the
// default registry. Call once at startup.
func NewMetrics() *Metrics {
	return &Metrics{
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lawagent_llm_request_duration_seconds",
				Help:    "Duration of LLM chat-completion requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"model", "status"},
		),
		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawagent_llm_requests_total",
				Help: "Total number of LLM chat-completion requests by model and status",
			},
			[]string{"model", "status"},
		),
		LLMRetryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawagent_llm_retries_total",
				Help: "Total number of LLM request retry attempts by model",
			},
			[]string{"model"},
		),
		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawagent_tool_executions_total",
				Help: "Total number of tool executions by tool name and status",
			},
			[]string{"tool_name", "status"},
		),
		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lawagent_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"tool_name"},
		),
		CriticRoundCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawagent_critic_rounds_total",
				Help: "Total number of critic evaluations by domain and verdict",
			},
			[]string{"domain", "verdict"},
		),
	}
}

// RecordLLMRequest records one chat-completion call's outcome.
// attempts is the total number of attempts RetryWithBackoff made;
// attempts-1 retries are added to LLMRetryCounter.
func (m *Metrics) RecordLLMRequest(model, status string, durationSeconds float64, attempts int) {
	if m == nil {
		return
	}
	m.LLMRequestCounter.WithLabelValues(model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(model, status).Observe(durationSeconds)
	if attempts > 1 {
		m.LLMRetryCounter.WithLabelValues(model).Add(float64(attempts - 1))
	}
}

// RecordToolExecution records one tool invocation's outcome.
func (m *Metrics) RecordToolExecution(toolName, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ToolExecutionCounter.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordCriticRound records one Critic verdict.
func (m *Metrics) RecordCriticRound(domain, verdict string) {
	if m == nil {
		return
	}
	m.CriticRoundCounter.WithLabelValues(domain, verdict).Inc()
}
