package llm

import (
	"errors"
	"testing"

	"github.com/X-Luffy/Law-Agent/internal/backoff"
	"github.com/X-Luffy/Law-Agent/internal/errs"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	if !errors.Is(err, errs.ErrConfigError) {
		t.Errorf("NewOpenAIClient() error = %v, want ErrConfigError", err)
	}
}

func TestNewOpenAIClient_DefaultsTimeoutAndRetries(t *testing.T) {
	c, err := NewOpenAIClient(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if c.timeout.Seconds() != 120 {
		t.Errorf("timeout = %v, want 120s", c.timeout)
	}
	if c.retries != 3 {
		t.Errorf("retries = %v, want 3", c.retries)
	}
}

// TestCompleteWithRetry_ProviderErrorIsMarkedPermanent mirrors the
// classification branch inside completeWithRetry's retry closure: a
// ClassifyProviderError result that wraps ErrProviderError must be
// wrapped with backoff.Permanent so RetryWithBackoff stops after the
// first attempt (spec §4.1: authentication and malformed-schema
// failures are non-retryable).
func TestCompleteWithRetry_ProviderErrorIsMarkedPermanent(t *testing.T) {
	tests := []struct {
		name          string
		errMsg        string
		wantPermanent bool
	}{
		{"unauthorized", "401 unauthorized", true},
		{"invalid key", "invalid_api_key supplied", true},
		{"invalid schema", "invalid schema for tool", true},
		{"deadline", "context deadline exceeded", false},
		{"connection refused", "dial tcp: connection refused", false},
		{"unknown defaults timeout", "something unexpected happened", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := errs.ClassifyProviderError("llm", errors.New(tt.errMsg))
			var wrapped error = classified
			if errors.Is(classified, errs.ErrProviderError) {
				wrapped = backoff.Permanent(classified)
			}
			if got := backoff.IsPermanent(wrapped); got != tt.wantPermanent {
				t.Errorf("IsPermanent(classified %q) = %v, want %v", tt.errMsg, got, tt.wantPermanent)
			}
		})
	}
}

func TestBuildRequest_PrunesOrphanToolsAndPrependsSystem(t *testing.T) {
	c, err := NewOpenAIClient(Config{APIKey: "test-key", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}

	messages := []models.Message{
		{Role: models.RoleTool, ToolCallID: "orphan", Content: "stale"},
		{Role: models.RoleUser, Content: "question"},
	}

	req := c.buildRequest(messages, "you are a legal assistant", nil, "", 0.2, 512)

	if req.Messages[0].Role != "system" {
		t.Fatalf("Messages[0].Role = %v, want system", req.Messages[0].Role)
	}
	for _, m := range req.Messages {
		if m.Role == "tool" {
			t.Errorf("buildRequest() did not prune orphan tool message: %+v", m)
		}
	}
	if len(req.Messages) != 2 {
		t.Errorf("buildRequest() len(Messages) = %d, want 2 (system + user)", len(req.Messages))
	}
}

func TestBuildRequest_ToolChoiceDefaultsToAuto(t *testing.T) {
	c, err := NewOpenAIClient(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}

	req := c.buildRequest(nil, "", []ToolSchema{{Type: "function", Function: FunctionSchema{Name: "calculator"}}}, "", 0, 0)
	if req.ToolChoice != "auto" {
		t.Errorf("ToolChoice = %v, want auto", req.ToolChoice)
	}
}
