// Package tools implements the Tool Registry (C7, spec §4.7) and the
// mandatory tool catalog it exposes to specialists.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/observability"
)

// MaxObserve caps a tool's stringified observation length before it
// re-enters the context window (spec §4.7 default 2000).
const MaxObserve = 2000

const truncationMarker = "...[截断]"

// probeKeys is the best-effort primary-argument extraction order (spec
// §4.7): the first of these keys present in the parsed JSON argument
// map is treated as the tool's main input.
var probeKeys = []string{"query", "url", "city", "code", "expression", "file_path", "input", "user_input"}

// Tool is one callable exposed to the LLM via native function-calling.
type Tool interface {
	Name() string
	Description() string
	// ToSchema returns the JSON-schema-compatible function definition
	// the LLM provider's tool-calling format expects.
	ToSchema() llm.ToolSchema
	// Execute runs the tool. input is the raw JSON argument string the
	// LLM produced; ctx carries cancellation/deadline.
	Execute(ctx context.Context, input string) (string, error)
}

// Registry holds the name→Tool map, guarded for concurrent read access
// since the Registry is shared read-only across requests after
// construction (spec §3 Ownership, §5 Shared-resource policy).
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	metrics *observability.Metrics
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// SetMetrics attaches a Metrics collector so Execute records per-tool
// invocation counts and latency (SPEC_FULL.md DOMAIN STACK). A nil
// Registry metrics field is a no-op, so this is optional.
func (r *Registry) SetMetrics(m *observability.Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// Register adds a tool. Registration is additive and order-preserving
// (spec §4.7); registering the same name twice replaces it in place
// without changing its position. The tool's declared parameter schema
// is validated up front (spec §8's to_schema() round-trip invariant),
// so a malformed schema fails at wiring time rather than surfacing as
// an opaque provider error on the first call.
func (r *Registry) Register(tool Tool) error {
	if err := validateSchema(tool.ToSchema().Function.Parameters); err != nil {
		return fmt.Errorf("tools: register %s: %w", tool.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	return nil
}

// GetToolsSchema returns the JSON-schema function definitions for every
// registered tool, in registration order.
func (r *Registry) GetToolsSchema() []llm.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].ToSchema())
	}
	return schemas
}

// GetAvailableFunctions returns the name→Tool map a caller can dispatch
// against directly.
func (r *Registry) GetAvailableFunctions() map[string]Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Tool, len(r.tools))
	for k, v := range r.tools {
		out[k] = v
	}
	return out
}

// Execute looks up name and runs it with argsJSON, capping the
// observation length. A missing tool or execution failure is reported
// as a "Error: "-prefixed observation string rather than a Go error,
// matching the contract that tool failures become tool-role
// observations (spec §4.8 ToolCall act, §7).
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) string {
	r.mu.RLock()
	tool, ok := r.tools[name]
	metrics := r.metrics
	r.mu.RUnlock()
	if !ok {
		return "Error: tool not found: " + name
	}

	start := time.Now()
	out, err := tool.Execute(ctx, argsJSON)
	if err != nil {
		metrics.RecordToolExecution(name, "error", time.Since(start).Seconds())
		return "Error: " + err.Error()
	}
	metrics.RecordToolExecution(name, "success", time.Since(start).Seconds())
	return capObservation(out)
}

func capObservation(s string) string {
	if len(s) <= MaxObserve {
		return s
	}
	return s[:MaxObserve] + truncationMarker
}

// ExtractPrimaryArgument parses argsJSON and probes probeKeys in order,
// returning the first present value stringified. Falls back to the
// stringified full map when no probe key is present (spec §4.7).
func ExtractPrimaryArgument(argsJSON string) string {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &parsed); err != nil {
		return strings.TrimSpace(argsJSON)
	}
	for _, key := range probeKeys {
		if v, ok := parsed[key]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	b, _ := json.Marshal(parsed)
	return string(b)
}

// validateSchema compiles schema as a jsonschema document, used at
// registration time to ground the to_schema() round-trip invariant
// (spec §8): a malformed tool parameter schema fails fast rather than
// surfacing as an opaque provider error later.
func validateSchema(schema map[string]any) error {
	b, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("tools: marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(b))); err != nil {
		return fmt.Errorf("tools: invalid schema: %w", err)
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return fmt.Errorf("tools: compile schema: %w", err)
	}
	return nil
}
