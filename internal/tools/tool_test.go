package tools

import (
	"context"
	"testing"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

type fakeTool struct {
	name string
	out  string
	err  error
}

func (s *fakeTool) Name() string        { return s.name }
func (s *fakeTool) Description() string { return "stub" }
func (s *fakeTool) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:       s.name,
			Parameters: map[string]any{"type": "object"},
		},
	}
}
func (s *fakeTool) Execute(ctx context.Context, input string) (string, error) {
	return s.out, s.err
}

func mustRegister(t *testing.T, r *Registry, tool Tool) {
	t.Helper()
	if err := r.Register(tool); err != nil {
		t.Fatalf("register %s: %v", tool.Name(), err)
	}
}

func TestExtractPrimaryArgument_ProbesKeysInOrder(t *testing.T) {
	got := ExtractPrimaryArgument(`{"url":"http://x","query":"y"}`)
	if got != "y" {
		t.Fatalf("expected query to win over url, got %q", got)
	}
}

func TestExtractPrimaryArgument_FallsBackToRawOnInvalidJSON(t *testing.T) {
	got := ExtractPrimaryArgument("not json")
	if got != "not json" {
		t.Fatalf("expected raw passthrough, got %q", got)
	}
}

func TestExtractPrimaryArgument_FallsBackToMapWhenNoProbeKey(t *testing.T) {
	got := ExtractPrimaryArgument(`{"foo":"bar"}`)
	if got == "" {
		t.Fatalf("expected non-empty fallback")
	}
}

func TestRegistry_RegisterPreservesOrderOnReplace(t *testing.T) {
	r := NewRegistry()
	mustRegister(t, r, &fakeTool{name: "a"})
	mustRegister(t, r, &fakeTool{name: "b"})
	mustRegister(t, r, &fakeTool{name: "a"})

	schemas := r.GetToolsSchema()
	if len(schemas) != 2 {
		t.Fatalf("expected 2 schemas after re-registration, got %d", len(schemas))
	}
	if schemas[0].Function.Name != "a" || schemas[1].Function.Name != "b" {
		t.Fatalf("expected order [a,b] preserved, got [%s,%s]", schemas[0].Function.Name, schemas[1].Function.Name)
	}
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	got := r.Execute(context.Background(), "missing", "{}")
	if got != "Error: tool not found: missing" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestRegistry_ExecuteCapsObservation(t *testing.T) {
	r := NewRegistry()
	long := make([]byte, MaxObserve+100)
	for i := range long {
		long[i] = 'a'
	}
	mustRegister(t, r, &fakeTool{name: "big", out: string(long)})
	got := r.Execute(context.Background(), "big", "{}")
	if len(got) != MaxObserve+len(truncationMarker) {
		t.Fatalf("expected capped length %d, got %d", MaxObserve+len(truncationMarker), len(got))
	}
}
