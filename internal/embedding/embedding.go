// Package embedding provides the text-embedding client (C2 in spec
// §4.2) backing the vector store's semantic search.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/X-Luffy/Law-Agent/internal/backoff"
	"github.com/X-Luffy/Law-Agent/internal/errs"
)

// Client embeds text into fixed-dimension vectors, preserving input
// order in the output.
type Client interface {
	// Encode returns one embedding per input text, same order.
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding size this client produces. It is
	// fixed once the underlying model is chosen and never changes for
	// the lifetime of a Client.
	Dimension() int
}

// Config configures an OpenAIEmbeddingClient.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string // default "text-embedding-3-small"
	MaxRetries int    // default 3
}

// OpenAIEmbeddingClient implements Client against an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbeddingClient struct {
	client  *openai.Client
	model   string
	dim     int
	retries int
}

// knownDimensions maps well-known embedding model names to their output
// size, mirroring the teacher's hardcoded Dimension() switch.
var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// New builds an OpenAIEmbeddingClient.
func New(cfg Config) (*OpenAIEmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: missing API key: %w", errs.ErrConfigError)
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dim, ok := knownDimensions[model]
	if !ok {
		dim = 1536
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbeddingClient{
		client:  openai.NewClientWithConfig(oaCfg),
		model:   model,
		dim:     dim,
		retries: retries,
	}, nil
}

// Dimension implements Client.
func (c *OpenAIEmbeddingClient) Dimension() int { return c.dim }

// Encode implements Client. Empty input returns an empty, non-nil
// slice so callers can range over it unconditionally.
func (c *OpenAIEmbeddingClient) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	policy := backoff.DefaultPolicy()
	result, err := backoff.RetryWithBackoff(ctx, policy, c.retries, func(attempt int) ([][]float32, error) {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			classified := errs.ClassifyProviderError("embedding", err)
			if errors.Is(classified, errs.ErrProviderError) {
				return nil, backoff.Permanent(classified)
			}
			return nil, classified
		}

		out := make([][]float32, len(resp.Data))
		for _, d := range resp.Data {
			if d.Index >= 0 && d.Index < len(out) {
				out[d.Index] = d.Embedding
			}
		}
		return out, nil
	})
	if err != nil {
		if result.LastError != nil {
			return nil, result.LastError
		}
		return nil, err
	}
	return result.Value, nil
}
