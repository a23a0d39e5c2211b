package agent

import (
	"context"

	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/logging"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

const contentWindowSize = 10
const finalAnswerMinLength = 50

// think builds the last-10-message window (after orphan-tool pruning),
// optionally appends the next-step prompt, and calls the LLM with tools,
// branching per the contract in spec §4.8 "ToolCall think".
func (a *ToolCallAgent) think(ctx context.Context, transcript *[]models.Message, system string) (StepResult, error) {
	pruned := llm.PruneOrphanTools(*transcript)
	window := tailWindow(pruned, contentWindowSize)

	if a.nextStepPrompt != "" {
		window = append(window, models.Message{Role: models.RoleUser, Content: a.nextStepPrompt})
		*transcript = append(*transcript, models.Message{Role: models.RoleUser, Content: a.nextStepPrompt})
		a.nextStepPrompt = ""
	}

	var schemas []llm.ToolSchema
	if a.registry != nil {
		schemas = a.registry.GetToolsSchema()
	}

	resp, err := a.llmClient.ChatWithTools(ctx, window, system, schemas, llm.ToolChoiceAuto, a.cfg.Temperature, a.cfg.MaxTokens)
	if err != nil {
		return StepResult{}, err
	}

	if len(resp.ToolCalls) > 0 {
		assistantMsg := models.Message{
			Role:      models.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		*transcript = append(*transcript, assistantMsg)
		a.pendingCalls = resp.ToolCalls
		return StepResult{Finished: false, Content: resp.Content}, nil
	}

	a.pendingCalls = nil
	// Final-answer heuristic (spec §4.8): once tool_calls come back empty,
	// a reply longer than finalAnswerMinLength is treated as the answer
	// whether or not a tool result preceded it; anything shorter loops
	// for another think/act cycle.
	isFinal := len(resp.Content) > finalAnswerMinLength

	assistantMsg := models.Message{Role: models.RoleAssistant, Content: resp.Content}
	*transcript = append(*transcript, assistantMsg)

	if isFinal {
		return StepResult{Finished: true, Content: resp.Content}, nil
	}
	return StepResult{Finished: false, Content: resp.Content}, nil
}

// act executes every pending tool call, appending a tool-role message
// with the matching tool_call_id and tool name for each (spec §4.8
// "ToolCall act"). Execution failures surface as "Error:"-prefixed
// observations rather than aborting the loop.
func (a *ToolCallAgent) act(ctx context.Context, transcript *[]models.Message) {
	log := logging.FromContext(ctx)
	for _, call := range a.pendingCalls {
		var observation string
		if a.registry == nil {
			observation = "Error: no tools available"
		} else {
			observation = a.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
		}
		if observation == "" {
			observation = "Error: tool produced no output"
		}
		log.Debug("tool executed", "tool", call.Function.Name, "call_id", call.ID)

		*transcript = append(*transcript, models.Message{
			Role:       models.RoleTool,
			Content:    observation,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
		})
	}
	a.pendingCalls = nil
}

// forceFinalAnswer implements spec §4.8's max-steps-overrun fallback
// chain: a no-tools LLM call asking for a final answer now, then a
// tail-scan for the last qualifying assistant message, then a canned
// "reached step limit" message.
func (a *ToolCallAgent) forceFinalAnswer(ctx context.Context, transcript []models.Message, system string) (string, error) {
	forced := append(append([]models.Message(nil), transcript...), models.Message{
		Role:    models.RoleSystem,
		Content: "Generate the final answer now. Do not call any more tools.",
	})
	window := tailWindow(llm.PruneOrphanTools(forced), contentWindowSize)

	content, err := a.llmClient.Chat(ctx, window, system, a.cfg.Temperature, a.cfg.MaxTokens)
	if err == nil && len(content) > 0 {
		return content, nil
	}

	for i := len(transcript) - 1; i >= 0; i-- {
		msg := transcript[i]
		if msg.Role == models.RoleAssistant && len(msg.Content) > finalAnswerMinLength {
			return msg.Content, nil
		}
	}

	return "已达到步骤上限，无法生成完整回答。", nil
}

func tailWindow(messages []models.Message, n int) []models.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
