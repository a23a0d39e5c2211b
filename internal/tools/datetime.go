package tools

import (
	"context"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// DateTime reports the current date and time (spec §4.7: "datetime"),
// used by specialists to anchor statute-of-limitations or deadline
// calculations relative to "today".
type DateTime struct {
	now func() time.Time
}

func NewDateTime() *DateTime {
	return &DateTime{now: time.Now}
}

func (d *DateTime) Name() string        { return "datetime" }
func (d *DateTime) Description() string { return "Returns the current date and time." }

func (d *DateTime) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        d.Name(),
			Description: d.Description(),
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (d *DateTime) Execute(ctx context.Context, input string) (string, error) {
	return d.now().Format("2006-01-02 15:04:05 Monday"), nil
}
