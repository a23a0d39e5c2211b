package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// NewMetrics registers collectors with the default Prometheus registry,
// which panics on duplicate registration — so the whole test file
// shares one instance rather than calling NewMetrics() per test.
var sharedMetrics = NewMetrics()

func TestRecordLLMRequest(t *testing.T) {
	sharedMetrics.RecordLLMRequest("qwen-max-t1", "success", 0.5, 1)
	sharedMetrics.RecordLLMRequest("qwen-max-t1", "error", 1.2, 3)

	if got := testutil.ToFloat64(sharedMetrics.LLMRequestCounter.WithLabelValues("qwen-max-t1", "success")); got != 1 {
		t.Fatalf("expected 1 success request, got %v", got)
	}
	if got := testutil.ToFloat64(sharedMetrics.LLMRetryCounter.WithLabelValues("qwen-max-t1")); got != 2 {
		t.Fatalf("expected 2 retries recorded, got %v", got)
	}
}

func TestRecordToolExecution(t *testing.T) {
	sharedMetrics.RecordToolExecution("web_search_t2", "success", 0.2)
	if got := testutil.ToFloat64(sharedMetrics.ToolExecutionCounter.WithLabelValues("web_search_t2", "success")); got != 1 {
		t.Fatalf("expected 1 tool execution recorded, got %v", got)
	}
}

func TestRecordCriticRound(t *testing.T) {
	sharedMetrics.RecordCriticRound("labor_t3", "rejected")
	sharedMetrics.RecordCriticRound("labor_t3", "rejected")
	if got := testutil.ToFloat64(sharedMetrics.CriticRoundCounter.WithLabelValues("labor_t3", "rejected")); got != 2 {
		t.Fatalf("expected 2 rejected rounds recorded, got %v", got)
	}
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	m.RecordLLMRequest("x", "success", 0.1, 1)
	m.RecordToolExecution("x", "success", 0.1)
	m.RecordCriticRound("x", "accepted")
}
