// Package agent implements the Base/ReAct/ToolCall agent loop (C8-C10,
// spec §4.8): an LLM-with-tools think/act state machine shared by every
// specialist.
package agent

import (
	"context"
	"fmt"

	"github.com/X-Luffy/Law-Agent/internal/errs"
	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/logging"
	"github.com/X-Luffy/Law-Agent/internal/tools"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// DefaultDuplicateThreshold is how many consecutive identical
// assistant-content messages trigger the stuck-detection nudge (spec
// §4.8).
const DefaultDuplicateThreshold = 2

// Config bounds one agent's run (spec §4.8, §6 Agent defaults).
type Config struct {
	MaxSteps           int
	DuplicateThreshold int
	Temperature        float32
	MaxTokens          int
}

func (c Config) withDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 10
	}
	if c.DuplicateThreshold <= 0 {
		c.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	return c
}

// BaseAgent carries an agent's name and lifecycle state and guards the
// Idle→Running→Idle transitions (spec §4.8 C8). ReAct/ToolCall agents
// embed it; the transcript, step counter, and max-step guard live in
// ToolCallAgent.Run.
type BaseAgent struct {
	name  string
	state models.AgentState
}

func newBaseAgent(name string) BaseAgent {
	return BaseAgent{name: name, state: models.StateIdle}
}

// State returns the agent's current lifecycle state.
func (b *BaseAgent) State() models.AgentState { return b.state }

// enter asserts the agent is Idle and transitions to Running, matching
// the re-entrancy assertion in spec §5 ("the runtime asserts
// state==Idle on entry and forces-reset on exit").
func (b *BaseAgent) enter() error {
	if b.state != models.StateIdle {
		return errs.Wrap(b.name, "enter", fmt.Errorf("%w: agent not idle (state=%s)", errs.ErrStateError, b.state))
	}
	b.state = models.StateRunning
	return nil
}

// leave restores Idle unconditionally (spec invariant 1: run must
// restore Idle before returning, regardless of outcome).
func (b *BaseAgent) leave() {
	b.state = models.StateIdle
}

// StepResult is what one ToolCall think/act cycle produces.
type StepResult struct {
	Finished bool
	Content  string
}

// ToolCallAgent specializes the Base/ReAct loop (C9) into: think = LLM
// call with tools, act = execute returned tool calls, looping until
// terminal content or the step limit (C10, spec §4.8).
type ToolCallAgent struct {
	ReActAgent
	llmClient llm.Client
	registry  *tools.Registry
	cfg       Config

	pendingCalls   []models.ToolCall
	nextStepPrompt string
	lastContent    string
	duplicateCount int
	nudgedOnce     bool
}

// NewToolCallAgent constructs a ToolCallAgent bound to an LLM client and
// tool registry. registry may be nil for a tool-less chat specialist
// (e.g. the NonLegal general-chat agent).
func NewToolCallAgent(name string, client llm.Client, registry *tools.Registry, cfg Config) *ToolCallAgent {
	return &ToolCallAgent{
		ReActAgent: newReActAgent(name),
		llmClient:  client,
		registry:   registry,
		cfg:        cfg.withDefaults(),
	}
}

// Run drives the think/act loop against an initial session window and
// system prompt until a final answer is produced or max_steps is
// exhausted, per the state machine in spec §4.8.
func (a *ToolCallAgent) Run(ctx context.Context, session []models.Message, system string) (string, error) {
	if err := a.enter(); err != nil {
		return "", err
	}
	defer a.leave()

	log := logging.FromContext(ctx)
	transcript := append([]models.Message(nil), session...)

	for step := 0; step < a.cfg.MaxSteps; step++ {
		result, err := a.think(ctx, &transcript, system)
		if err != nil {
			a.state = models.StateError
			return "", errs.Wrap(a.name, "think", err)
		}
		if result.Finished {
			a.state = models.StateFinished
			return result.Content, nil
		}
		if len(a.pendingCalls) > 0 {
			a.act(ctx, &transcript)
		}
		a.trackStuck(result.Content, log)
	}

	content, err := a.forceFinalAnswer(ctx, transcript, system)
	a.state = models.StateFinished
	return content, err
}

// trackStuck implements spec §4.8's stuck detection: after each step,
// count consecutive identical assistant-content messages; at
// duplicate_threshold, inject a "try a different strategy" directive
// once.
func (a *ToolCallAgent) trackStuck(content string, log interface{ Warn(string, ...any) }) {
	if content != "" && content == a.lastContent {
		a.duplicateCount++
	} else {
		a.duplicateCount = 0
	}
	a.lastContent = content

	if a.duplicateCount >= a.cfg.DuplicateThreshold && !a.nudgedOnce {
		a.nextStepPrompt = "The previous attempts repeated the same content. Try a different strategy or tool."
		a.nudgedOnce = true
		log.Warn("agent stuck detected, injecting strategy nudge", "agent", a.name)
	}
}
