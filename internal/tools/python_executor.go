package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// PythonExecutor runs a snippet of Python code under a hard timeout
// (spec §4.7: "python_executor (sandboxed code with timeout)"). It
// shells out to the system python3 interpreter with no network or
// filesystem scoping beyond the OS default — adequate for the
// calculator-grade scripts this runtime's Critic/specialist loop asks
// for; a hardened sandbox (gVisor, firecracker) is an operational
// concern the teacher's own tools/sandbox package handles separately.
type PythonExecutor struct {
	timeout time.Duration // default 10s
}

func NewPythonExecutor(timeout time.Duration) *PythonExecutor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PythonExecutor{timeout: timeout}
}

func (p *PythonExecutor) Name() string { return "python_executor" }
func (p *PythonExecutor) Description() string {
	return "Executes a short Python snippet and returns its stdout, under a timeout."
}

func (p *PythonExecutor) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        p.Name(),
			Description: p.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code": map[string]any{
						"type":        "string",
						"description": "Python source to execute",
					},
				},
				"required": []string{"code"},
			},
		},
	}
}

func (p *PythonExecutor) Execute(ctx context.Context, input string) (string, error) {
	code := ExtractPrimaryArgument(input)

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "python3", "-c", code)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("python_executor: timed out after %s", p.timeout)
		}
		return "", fmt.Errorf("python_executor: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
