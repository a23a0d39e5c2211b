package specialist

import (
	"context"
	"strings"
	"testing"

	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/tools"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

type queuedClient struct {
	chatReplies     []string
	chatWithToolsFn func(call int) *llm.ToolCallResponse
	chatCalls       int
	toolsCalls      int
}

func (q *queuedClient) Chat(ctx context.Context, messages []models.Message, system string, temperature float32, maxTokens int) (string, error) {
	idx := q.chatCalls
	q.chatCalls++
	if idx >= len(q.chatReplies) {
		return q.chatReplies[len(q.chatReplies)-1], nil
	}
	return q.chatReplies[idx], nil
}

func (q *queuedClient) ChatWithTools(ctx context.Context, messages []models.Message, system string, toolsSchema []llm.ToolSchema, choice llm.ToolChoice, temperature float32, maxTokens int) (*llm.ToolCallResponse, error) {
	resp := q.chatWithToolsFn(q.toolsCalls)
	q.toolsCalls++
	return resp, nil
}

func TestStepBudget_VariesByIntent(t *testing.T) {
	if StepBudget(models.DomainLabor, models.IntentCalculation) != 5 {
		t.Fatalf("expected calculation budget of 5")
	}
	if StepBudget(models.DomainFamily, models.IntentCaseAnalysis) != 10 {
		t.Fatalf("expected case analysis budget of 10")
	}
	if StepBudget(models.DomainContract, models.IntentQARetrieval) != 7 {
		t.Fatalf("expected default qa_retrieval budget of 7")
	}
}

func TestExecuteTask_AcceptsOnFirstCriticPass(t *testing.T) {
	longAnswer := strings.Repeat("根据《劳动合同法》第四十七条的规定，经济补偿按工作年限计算。", 3)
	client := &queuedClient{
		chatWithToolsFn: func(call int) *llm.ToolCallResponse {
			return &llm.ToolCallResponse{Content: longAnswer}
		},
		chatReplies: []string{`{"is_acceptable": true, "feedback": "ok"}`},
	}
	s := New(models.DomainLabor, client, tools.NewRegistry(), Config{})

	var stages []string
	status := func(stage, detail, state string) { stages = append(stages, stage+":"+state) }

	out, err := s.ExecuteTask(context.Background(), "经济补偿金怎么算", models.IntentCalculation, "", status)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != longAnswer {
		t.Fatalf("expected unmodified answer on first accept, got %q", out)
	}
	if client.chatCalls != 1 {
		t.Fatalf("expected exactly one critic call, got %d", client.chatCalls)
	}
	foundDispatch := false
	for _, s := range stages {
		if s == "dispatch:complete" {
			foundDispatch = true
		}
	}
	if !foundDispatch {
		t.Fatalf("expected dispatch:complete status callback, got %v", stages)
	}
}

func TestExecuteTask_RefinesOnRejectedCritic(t *testing.T) {
	shortAnswer := strings.Repeat("根据相关法律规定可以主张赔偿。", 3)
	revised := strings.Repeat("根据《劳动合同法》第八十七条，赔偿标准为经济补偿的二倍。", 3)
	client := &queuedClient{
		chatWithToolsFn: func(call int) *llm.ToolCallResponse {
			return &llm.ToolCallResponse{Content: shortAnswer}
		},
		chatReplies: []string{
			`{"is_acceptable": false, "feedback": "缺少具体法条引用"}`,
			"违法解除劳动合同赔偿",
			revised,
			`{"is_acceptable": true, "feedback": "ok"}`,
		},
	}
	s := New(models.DomainLabor, client, tools.NewRegistry(), Config{MaxCriticRounds: 2})

	out, err := s.ExecuteTask(context.Background(), "公司违法解雇怎么赔偿", models.IntentCaseAnalysis, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != revised {
		t.Fatalf("expected revised answer after refinement, got %q", out)
	}
}

func TestExecuteTask_StopsAfterMaxCriticRounds(t *testing.T) {
	answer := strings.Repeat("初步回答内容。", 5)
	client := &queuedClient{
		chatWithToolsFn: func(call int) *llm.ToolCallResponse {
			return &llm.ToolCallResponse{Content: answer}
		},
		chatReplies: []string{
			`{"is_acceptable": false, "feedback": "仍需改进"}`,
			"refined query",
			answer,
			`{"is_acceptable": false, "feedback": "仍需改进"}`,
			"refined query 2",
			answer,
		},
	}
	s := New(models.DomainLabor, client, tools.NewRegistry(), Config{MaxCriticRounds: 2})

	out, err := s.ExecuteTask(context.Background(), "q", models.IntentQARetrieval, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != answer {
		t.Fatalf("expected last revised answer after exhausting critic rounds, got %q", out)
	}
}
