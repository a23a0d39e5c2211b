package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/X-Luffy/Law-Agent/internal/config"
	"github.com/X-Luffy/Law-Agent/internal/embedding"
	"github.com/X-Luffy/Law-Agent/internal/flow"
	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/memory"
	"github.com/X-Luffy/Law-Agent/internal/observability"
	"github.com/X-Luffy/Law-Agent/internal/router"
	"github.com/X-Luffy/Law-Agent/internal/sessionmemory"
	"github.com/X-Luffy/Law-Agent/internal/specialist"
	"github.com/X-Luffy/Law-Agent/internal/tools"
	"github.com/X-Luffy/Law-Agent/internal/vectorstore"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// runtime bundles everything buildRuntime wires together, so callers
// (serve/ask) can shut down the vector store cleanly and reach the
// observability collectors for an HTTP /metrics handler.
type runtime struct {
	flow     *flow.Flow
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	shutdown func() error
}

// buildRuntime wires every component named in spec §3 Ownership (C1-C13)
// from cfg: one LLM client on cfg.LLM.SpecialistModel shared by every
// specialist, a second client for the Router on cfg.LLM.RouterModel
// (cfg.LLM.Model when RouterModel is empty), the embedding
// client and vector store backing semantic memory, the tool registry,
// the Router, and one Specialist per models.AllDomains member, all
// composed into a single Flow.
func buildRuntime(cfg *config.Config) (*runtime, error) {
	metrics := observability.NewMetrics()
	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:  cfg.Observability.ServiceName,
		Environment:  cfg.Observability.Environment,
		Endpoint:     cfg.Observability.TraceEndpoint,
		SamplingRate: cfg.Observability.TraceSampling,
	})

	specialistClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.SpecialistModel,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	routerModel := cfg.LLM.RouterModel
	if routerModel == "" {
		routerModel = cfg.LLM.Model
	}
	routerClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      routerModel,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build router llm client: %w", err)
	}

	embedder, err := embedding.New(embedding.Config{
		APIKey:     firstNonEmpty(cfg.Embedding.APIKey, cfg.LLM.APIKey),
		BaseURL:    firstNonEmpty(cfg.Embedding.BaseURL, cfg.LLM.BaseURL),
		Model:      cfg.Embedding.Model,
		MaxRetries: cfg.Embedding.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("build embedding client: %w", err)
	}

	vectors, err := vectorstore.Open(vectorstore.Config{
		Path:       cfg.Memory.VectorDBPath,
		Collection: cfg.Memory.VectorDBCollection,
		Dimension:  embedder.Dimension(),
	})
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	sessions := sessionmemory.New(cfg.Memory.SessionMemorySize)
	mem := memory.New(memory.Config{
		ContextWindowSize:      cfg.Memory.ContextWindowSize,
		ContextRefineThreshold: cfg.Memory.ContextRefineThreshold,
	}, sessions, vectors, embedder)

	registry, err := tools.BuildRegistry(cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	registry.SetMetrics(metrics)

	r := router.New(routerClient)

	specialists := make(map[models.LegalDomain]*specialist.Specialist, len(models.AllDomains))
	for _, domain := range models.AllDomains {
		sp := specialist.New(domain, specialistClient, registry, specialist.Config{
			MaxCriticRounds:    cfg.Agent.MaxCriticRounds,
			DuplicateThreshold: cfg.Agent.DuplicateThreshold,
		})
		specialists[domain] = sp.WithObservability(metrics, tracer)
	}

	f := flow.New(mem, r, specialists).WithTracer(tracer)

	shutdown := func() error {
		return errors.Join(shutdownTracer(context.Background()), vectors.Close())
	}

	return &runtime{flow: f, metrics: metrics, tracer: tracer, shutdown: shutdown}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
