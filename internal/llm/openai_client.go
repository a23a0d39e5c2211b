package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/X-Luffy/Law-Agent/internal/backoff"
	"github.com/X-Luffy/Law-Agent/internal/errs"
	"github.com/X-Luffy/Law-Agent/internal/observability"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// Config configures an OpenAIClient.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration          // per-call deadline, default 120s
	MaxRetries int                    // default 3
	Metrics    *observability.Metrics // optional; nil disables instrumentation
}

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completion endpoint (spec §6 "LLM provider").
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retries int
	metrics *observability.Metrics
}

// NewOpenAIClient builds an OpenAIClient. Returns ErrConfigError if no
// API key is configured.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: missing API key: %w", errs.ErrConfigError)
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oaCfg),
		model:   cfg.Model,
		timeout: timeout,
		retries: retries,
		metrics: cfg.Metrics,
	}, nil
}

// Chat implements Client.
func (c *OpenAIClient) Chat(ctx context.Context, messages []models.Message, system string, temperature float32, maxTokens int) (string, error) {
	req := c.buildRequest(messages, system, nil, "", temperature, maxTokens)
	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty choices in response: %w", errs.ErrProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatWithTools implements Client.
func (c *OpenAIClient) ChatWithTools(ctx context.Context, messages []models.Message, system string, tools []ToolSchema, choice ToolChoice, temperature float32, maxTokens int) (*ToolCallResponse, error) {
	req := c.buildRequest(messages, system, tools, choice, temperature, maxTokens)
	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty choices in response: %w", errs.ErrProviderError)
	}
	msg := resp.Choices[0].Message

	out := &ToolCallResponse{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			}{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		})
	}
	return out, nil
}

func (c *OpenAIClient) buildRequest(messages []models.Message, system string, tools []ToolSchema, choice ToolChoice, temperature float32, maxTokens int) openai.ChatCompletionRequest {
	pruned := PruneOrphanTools(messages)

	oaMessages := make([]openai.ChatCompletionMessage, 0, len(pruned)+1)
	if strings.TrimSpace(system) != "" {
		oaMessages = append(oaMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range pruned {
		oaMessages = append(oaMessages, toOpenAIMessage(m))
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMessages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	if len(tools) > 0 {
		req.Tools = make([]openai.Tool, 0, len(tools))
		for _, t := range tools {
			req.Tools = append(req.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        t.Function.Name,
					Description: t.Function.Description,
					Parameters:  t.Function.Parameters,
				},
			})
		}
		switch choice {
		case ToolChoiceNone:
			req.ToolChoice = "none"
		case ToolChoiceRequired:
			req.ToolChoice = "required"
		default:
			req.ToolChoice = "auto"
		}
	}

	return req
}

func toOpenAIMessage(m models.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return msg
}

// completeWithRetry applies the spec §4.1 retry policy: up to MaxRetries
// attempts with exponential backoff starting at 1s, factor 2, on Timeout
// or transport error; authentication and malformed-schema errors are not
// retried.
func (c *OpenAIClient) completeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	policy := backoff.BackoffPolicy{InitialMs: 1000, MaxMs: 30000, Factor: 2, Jitter: 0}
	start := time.Now()

	result, err := backoff.RetryWithBackoff(ctx, policy, c.retries, func(attempt int) (openai.ChatCompletionResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			classified := errs.ClassifyProviderError("llm", err)
			if errors.Is(classified, errs.ErrProviderError) {
				return resp, backoff.Permanent(classified)
			}
			return resp, classified
		}
		return resp, nil
	})
	if err != nil {
		c.metrics.RecordLLMRequest(c.model, "error", time.Since(start).Seconds(), result.Attempts)
		if result.LastError != nil {
			return openai.ChatCompletionResponse{}, result.LastError
		}
		return openai.ChatCompletionResponse{}, err
	}
	c.metrics.RecordLLMRequest(c.model, "success", time.Since(start).Seconds(), result.Attempts)
	return result.Value, nil
}
