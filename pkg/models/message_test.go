package models

import (
	"reflect"
	"testing"
	"time"
)

func TestMessage_ToDictFromDictRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	cases := map[string]Message{
		"system": {
			Role:      RoleSystem,
			Content:   "you are a legal assistant",
			CreatedAt: createdAt,
		},
		"user": {
			Role:      RoleUser,
			Content:   "my employer fired me without notice",
			CreatedAt: createdAt,
		},
		"assistant_with_tool_calls": {
			Role:    RoleAssistant,
			Content: "",
			ToolCalls: []ToolCall{{
				ID:   "call-1",
				Type: "function",
				Function: struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				}{Name: "calculator", Arguments: `{"expression":"1+1"}`},
			}},
			CreatedAt: createdAt,
		},
		"tool": {
			Role:       RoleTool,
			Content:    "2",
			ToolCallID: "call-1",
			Name:       "calculator",
			CreatedAt:  createdAt,
		},
		"with_metadata": {
			Role:      RoleUser,
			Content:   "follow-up question",
			Metadata:  map[string]any{"session_id": "s-1"},
			CreatedAt: createdAt,
		},
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got := MessageFromDict(want.ToDict())
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("round-trip mismatch:\n got  = %+v\n want = %+v", got, want)
			}
		})
	}
}

func TestMessage_ToDictOmitsZeroCreatedAt(t *testing.T) {
	msg := Message{Role: RoleUser, Content: "no timestamp"}
	d := msg.ToDict()
	if _, ok := d["created_at"]; ok {
		t.Fatalf("ToDict() should omit created_at when zero, got %v", d["created_at"])
	}
}
