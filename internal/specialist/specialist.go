// Package specialist implements the stateless per-domain worker (C12,
// spec §4.10) that plans, runs the ToolCall loop, self-evaluates via a
// Critic, and optionally re-searches before returning its answer.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/X-Luffy/Law-Agent/internal/agent"
	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/internal/logging"
	"github.com/X-Luffy/Law-Agent/internal/observability"
	"github.com/X-Luffy/Law-Agent/internal/tools"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

const criticTemperature = 0.0

const criticSystemPrompt = `You are a strict legal-answer critic. Given the user's question and a candidate answer, ` +
	`judge whether it: cites specific statutes by number, avoids hedging language, uses a structured enumeration, ` +
	`and follows a facts/analysis/authorities/conclusion skeleton. Respond with ONLY JSON ` +
	`{"is_acceptable": bool, "feedback": "..."} — no prose outside the JSON.`

var firstJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// Config bounds one specialist invocation (spec §4.10, §6).
type Config struct {
	MaxCriticRounds    int
	DuplicateThreshold int
}

func (c Config) withDefaults() Config {
	if c.MaxCriticRounds <= 0 {
		c.MaxCriticRounds = 2
	}
	if c.DuplicateThreshold <= 0 {
		c.DuplicateThreshold = agent.DefaultDuplicateThreshold
	}
	return c
}

// Specialist is a stateless per-domain worker built on a ToolCallAgent
// (C10). One instance may be pooled and reused across requests for the
// same domain (spec §4.11 step 5: "agent <- agents[domain]").
type Specialist struct {
	domain   models.LegalDomain
	client   llm.Client
	registry *tools.Registry
	cfg      Config
	metrics  *observability.Metrics
	tracer   *observability.Tracer
}

// New constructs a Specialist bound to one legal domain.
func New(domain models.LegalDomain, client llm.Client, registry *tools.Registry, cfg Config) *Specialist {
	return &Specialist{domain: domain, client: client, registry: registry, cfg: cfg.withDefaults()}
}

// WithObservability attaches optional metrics and tracing collectors
// (SPEC_FULL.md DOMAIN STACK). Either argument may be nil.
func (s *Specialist) WithObservability(metrics *observability.Metrics, tracer *observability.Tracer) *Specialist {
	s.metrics = metrics
	s.tracer = tracer
	return s
}

// StepBudget returns the ToolCall loop's max_steps for a given
// domain/intent pair (spec §4.10 step 2: "default 5-10 depending on
// intent"; SPEC_FULL.md's supplemented StepBudget policy function).
// Calculation and Clarification are narrow, bounded tasks; CaseAnalysis
// and DocDrafting need more room to gather facts and draft text.
func StepBudget(domain models.LegalDomain, intent models.LegalIntent) int {
	switch intent {
	case models.IntentCalculation, models.IntentClarification:
		return 5
	case models.IntentCaseAnalysis, models.IntentDocDrafting, models.IntentReviewContract:
		return 10
	default:
		return 7
	}
}

// StatusFunc reports phase-boundary progress (spec §4.11's
// status_callback contract); a nil StatusFunc is a no-op.
type StatusFunc func(stage, detail, state string)

func notify(cb StatusFunc, stage, detail, state string) {
	if cb == nil {
		return
	}
	defer func() { _ = recover() }() // best-effort: exceptions swallowed (spec §4.11)
	cb(stage, detail, state)
}

// ExecuteTask runs the specialist's plan → ToolCall loop → Critic →
// optional refined-search cycle (spec §4.10).
func (s *Specialist) ExecuteTask(ctx context.Context, query string, intent models.LegalIntent, contextBlock string, status StatusFunc) (string, error) {
	log := logging.FromContext(ctx)
	system := buildSystemPrompt(s.domain, intent, contextBlock)

	maxSteps := StepBudget(s.domain, intent)
	a := agent.NewToolCallAgent(string(s.domain), s.client, s.registry, agent.Config{
		MaxSteps:           maxSteps,
		DuplicateThreshold: s.cfg.DuplicateThreshold,
		Temperature:        0.3,
	})

	notify(status, "dispatch", string(s.domain), "running")
	var dispatchSpan trace.Span
	if s.tracer != nil {
		ctx, dispatchSpan = s.tracer.TraceDispatch(ctx, string(s.domain), string(intent))
	}
	answer, err := a.Run(ctx, []models.Message{{Role: models.RoleUser, Content: query}}, system)
	if dispatchSpan != nil {
		s.tracer.RecordError(dispatchSpan, err)
		dispatchSpan.End()
	}
	if err != nil {
		notify(status, "dispatch", err.Error(), "error")
		return "", err
	}
	notify(status, "dispatch", "", "complete")

	answer, err = s.critiqueAndRefine(ctx, query, answer, system, status, log)
	if err != nil {
		log.Warn("critic cycle failed, returning pre-critic answer", "error", err)
	}

	s.cleanup(ctx, log)
	return answer, nil
}

type criticVerdict struct {
	IsAcceptable bool   `json:"is_acceptable"`
	Feedback     string `json:"feedback"`
}

// critiqueAndRefine implements spec §4.10 steps 4-5: evaluate the
// answer at temperature 0, and if unacceptable, ask for a refined
// search query, invoke web_search directly, append the result as a
// system message, and request a revised no-tools answer — up to
// max_critic_rounds times.
func (s *Specialist) critiqueAndRefine(ctx context.Context, query, answer, system string, status StatusFunc, log interface {
	Warn(string, ...any)
}) (string, error) {
	for round := 0; round < s.cfg.MaxCriticRounds; round++ {
		notify(status, "critic", fmt.Sprintf("round %d", round+1), "running")

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.TraceCritic(ctx, string(s.domain), round+1)
		}
		verdict, err := s.critique(ctx, query, answer)
		if span != nil {
			s.tracer.RecordError(span, err)
			span.End()
		}
		if err != nil {
			notify(status, "critic", err.Error(), "error")
			return answer, err
		}
		if verdict.IsAcceptable {
			s.metrics.RecordCriticRound(string(s.domain), "accepted")
			notify(status, "critic", "accepted", "complete")
			return answer, nil
		}
		s.metrics.RecordCriticRound(string(s.domain), "rejected")
		notify(status, "critic", verdict.Feedback, "complete")

		notify(status, "refined-search", "", "running")
		refined, err := s.refineAndResearch(ctx, query, verdict.Feedback, system)
		if err != nil {
			log.Warn("refined search failed", "error", err)
			notify(status, "refined-search", err.Error(), "error")
			return answer, nil
		}
		notify(status, "refined-search", "", "complete")
		answer = refined
	}
	return answer, nil
}

func (s *Specialist) critique(ctx context.Context, query, answer string) (criticVerdict, error) {
	prompt := fmt.Sprintf("问题: %s\n\n候选回答:\n%s", query, answer)
	reply, err := s.client.Chat(ctx, []models.Message{{Role: models.RoleUser, Content: prompt}}, criticSystemPrompt, criticTemperature, 512)
	if err != nil {
		return criticVerdict{}, err
	}
	match := firstJSONObject.FindString(reply)
	if match == "" {
		return criticVerdict{IsAcceptable: true}, nil
	}
	var verdict criticVerdict
	if err := json.Unmarshal([]byte(match), &verdict); err != nil {
		return criticVerdict{IsAcceptable: true}, nil
	}
	return verdict, nil
}

// refineAndResearch asks the LLM for a refined search query derived
// from the critic's feedback, invokes web_search directly (bypassing
// the ToolCall loop), and requests a revised no-tools answer (spec
// §4.10 step 5).
func (s *Specialist) refineAndResearch(ctx context.Context, query, feedback, system string) (string, error) {
	queryPrompt := fmt.Sprintf("原问题: %s\n评审反馈: %s\n\n请给出一个更具体的搜索查询词，仅返回查询词本身。", query, feedback)
	refinedQuery, err := s.client.Chat(ctx, []models.Message{{Role: models.RoleUser, Content: queryPrompt}}, "", 0.2, 64)
	if err != nil {
		return "", fmt.Errorf("specialist: refine query: %w", err)
	}
	refinedQuery = strings.TrimSpace(refinedQuery)

	var searchResult string
	if s.registry != nil {
		functions := s.registry.GetAvailableFunctions()
		if webSearch, ok := functions["web_search"]; ok {
			argsJSON, _ := json.Marshal(map[string]string{"query": refinedQuery})
			searchResult, err = webSearch.Execute(ctx, string(argsJSON))
			if err != nil {
				searchResult = "Error: " + err.Error()
			}
		}
	}

	revisePrompt := fmt.Sprintf("原问题: %s\n\n请基于补充信息给出修订后的完整回答。", query)
	revised, err := s.client.Chat(ctx, []models.Message{
		{Role: models.RoleSystem, Content: "补充检索结果:\n" + searchResult},
		{Role: models.RoleUser, Content: revisePrompt},
	}, system, 0.3, 2048)
	if err != nil {
		return "", fmt.Errorf("specialist: revise answer: %w", err)
	}
	return revised, nil
}

// cleanup runs after Critic completes, not inside the ToolCall run,
// since Critic may need tool state (spec §4.10). Tools in this runtime
// are stateless (state lives in each tool's own I/O layer, spec §5),
// so there is nothing to await here beyond logging; the hook exists so
// a future stateful tool has somewhere to release resources.
func (s *Specialist) cleanup(ctx context.Context, log interface{ Debug(string, ...any) }) {
	log.Debug("specialist cleanup complete", "domain", s.domain)
}

func buildSystemPrompt(domain models.LegalDomain, intent models.LegalIntent, contextBlock string) string {
	plan := planFor(domain, intent)
	var b strings.Builder
	fmt.Fprintf(&b, "你是一名专精%s领域的法律助手。\n%s\n", domainLabel(domain), plan)
	if contextBlock != "" {
		b.WriteString("\n")
		b.WriteString(contextBlock)
	}
	return b.String()
}

// planFor emits a domain/intent-specific plan block (spec §4.10 step
// 1: "emit a domain/intent-specific plan (short prose block) and
// prepend to system prompt").
func planFor(domain models.LegalDomain, intent models.LegalIntent) string {
	switch intent {
	case models.IntentCalculation:
		return "请先确认需要计算的具体数值，使用calculator工具核实计算结果，再给出结论。"
	case models.IntentDocDrafting:
		return "请先明确文书所需要素，必要时调用document_generator生成文件，再总结要点。"
	case models.IntentReviewContract:
		return "请逐条审查合同条款，指出风险点及对应法律依据。"
	case models.IntentCaseAnalysis:
		return "请按照事实、分析、依据、结论的结构组织回答，必要时检索相关法条或案例。"
	default:
		return "请结合用户提供的背景信息，给出结构化、引用具体法条的回答。"
	}
}

func domainLabel(domain models.LegalDomain) string {
	labels := map[models.LegalDomain]string{
		models.DomainLabor:      "劳动",
		models.DomainFamily:     "婚姻家庭",
		models.DomainContract:   "合同",
		models.DomainCorporate:  "公司",
		models.DomainCriminal:   "刑事",
		models.DomainProcedural: "诉讼程序",
		models.DomainNonLegal:   "通用",
	}
	if label, ok := labels[domain]; ok {
		return label
	}
	return string(domain)
}
