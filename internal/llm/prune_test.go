package llm

import (
	"testing"

	"github.com/X-Luffy/Law-Agent/pkg/models"
)

func toolCallMsg(id string) models.Message {
	return models.Message{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCall{
			{ID: id, Type: "function"},
		},
	}
}

func toolResultMsg(id string) models.Message {
	return models.Message{Role: models.RoleTool, ToolCallID: id, Content: "result"}
}

func TestPruneOrphanTools_KeepsMatchedPair(t *testing.T) {
	messages := []models.Message{
		{Role: models.RoleUser, Content: "hi"},
		toolCallMsg("call-1"),
		toolResultMsg("call-1"),
	}

	got := PruneOrphanTools(messages)
	if len(got) != 3 {
		t.Fatalf("PruneOrphanTools() len = %d, want 3", len(got))
	}
}

func TestPruneOrphanTools_DropsOrphanToolMessage(t *testing.T) {
	messages := []models.Message{
		toolResultMsg("call-evicted"),
		{Role: models.RoleUser, Content: "follow up"},
	}

	got := PruneOrphanTools(messages)
	if len(got) != 1 {
		t.Fatalf("PruneOrphanTools() len = %d, want 1", len(got))
	}
	if got[0].Role != models.RoleUser {
		t.Errorf("PruneOrphanTools() kept message role = %v, want user", got[0].Role)
	}
}

func TestPruneOrphanTools_MixedOrphanAndMatched(t *testing.T) {
	messages := []models.Message{
		toolResultMsg("evicted-call"),
		toolCallMsg("call-1"),
		toolResultMsg("call-1"),
		toolResultMsg("evicted-call-2"),
	}

	got := PruneOrphanTools(messages)
	if len(got) != 2 {
		t.Fatalf("PruneOrphanTools() len = %d, want 2", len(got))
	}
	for _, m := range got {
		if m.Role == models.RoleTool && m.ToolCallID != "call-1" {
			t.Errorf("PruneOrphanTools() unexpected surviving orphan: %+v", m)
		}
	}
}

func TestPruneOrphanTools_EmptyInput(t *testing.T) {
	got := PruneOrphanTools(nil)
	if len(got) != 0 {
		t.Errorf("PruneOrphanTools(nil) len = %d, want 0", len(got))
	}
}

func TestPruneOrphanTools_NonToolMessagesUntouched(t *testing.T) {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "plain answer, no tool calls"},
	}

	got := PruneOrphanTools(messages)
	if len(got) != len(messages) {
		t.Fatalf("PruneOrphanTools() len = %d, want %d", len(got), len(messages))
	}
}
