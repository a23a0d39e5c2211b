package agent

// ReActAgent specializes BaseAgent (C8) into alternating think/act
// phases (C9, spec §4.8). It carries no behavior of its own beyond the
// state machine BaseAgent already provides — ToolCallAgent (C10) is the
// concrete specialization that defines what "think" and "act" mean for
// this runtime (an LLM-with-tools call and tool execution,
// respectively). Kept as a distinct embedded type, rather than folded
// directly into ToolCallAgent, so the three-layer shape spec §3's
// component table describes (C8 → C9 → C10) is visible in the type
// hierarchy, not just in a comment.
type ReActAgent struct {
	BaseAgent
}

func newReActAgent(name string) ReActAgent {
	return ReActAgent{BaseAgent: newBaseAgent(name)}
}
