package llm

import "github.com/X-Luffy/Law-Agent/pkg/models"

// PruneOrphanTools drops tool-role messages whose preceding
// assistant-with-tool_calls message (carrying the matching ID) is not
// present in the slice — the "orphan tool message" case from the
// GLOSSARY, which arises when the session FIFO evicts the assistant
// turn but not yet the tool turn. Spec §3 and invariant 4 (§8) require
// this before any message slice reaches the LLM.
func PruneOrphanTools(messages []models.Message) []models.Message {
	knownIDs := make(map[string]struct{})
	for _, m := range messages {
		if m.Role == models.RoleAssistant {
			for _, tc := range m.ToolCalls {
				knownIDs[tc.ID] = struct{}{}
			}
		}
	}

	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleTool {
			if _, ok := knownIDs[m.ToolCallID]; !ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
