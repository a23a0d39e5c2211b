// Package router implements the stateless Router Agent (C11, spec
// §4.9): classifies a query into a (domain, intent) pair and carries
// forward any entities already recorded in the caller-supplied context.
package router

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

const classificationTemperature = 0.1

const systemPrompt = `You are a legal query classifier. Given a user query and conversation context, ` +
	`respond with ONLY a JSON object {"domain": "...", "intent": "..."} — no prose, no code fences. ` +
	`domain must be one of: labor, family, contract, corporate, criminal, procedural, non_legal. ` +
	`intent must be one of: qa_retrieval, case_analysis, doc_drafting, calculation, review_contract, clarification.`

// domainKeywords backs the keyword-scan fallback: presence of any of
// these terms in the raw query forces the corresponding domain when
// exact label matching fails. The LLM's label itself is not matched
// against these terms.
var domainKeywords = map[models.LegalDomain][]string{
	models.DomainLabor:      {"劳动", "工资", "辞退", "解雇", "仲裁", "加班", "社保"},
	models.DomainFamily:     {"离婚", "婚姻", "抚养", "继承", "家庭", "彩礼"},
	models.DomainContract:   {"合同", "违约", "协议", "条款"},
	models.DomainCorporate:  {"公司", "股权", "股东", "注册资本", "破产清算"},
	models.DomainCriminal:   {"刑事", "犯罪", "量刑", "起诉", "取保候审"},
	models.DomainProcedural: {"诉讼", "管辖", "上诉", "举证", "时效"},
}

var firstJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// Router is the stateless classifier. It has no instance state beyond
// its LLM client, so one Router may be shared across requests (spec
// §5 re-entrancy: agents are stateless w.r.t. conversations).
type Router struct {
	client llm.Client
}

func New(client llm.Client) *Router {
	return &Router{client: client}
}

// Route classifies query into a closed (domain, intent) pair and
// extracts any entities recorded in the caller-supplied context block
// (spec §4.9).
func (r *Router) Route(ctx context.Context, query, contextBlock string) (models.LegalDomain, models.LegalIntent, models.Entities, error) {
	reply, err := r.client.Chat(ctx, []models.Message{
		{Role: models.RoleUser, Content: buildClassificationPrompt(query, contextBlock)},
	}, systemPrompt, classificationTemperature, 256)

	entities := parseEntitiesFromContext(contextBlock)

	fallbackDomain, fallbackIntent, _, _ := fallbackClassify(query)
	if err != nil {
		return fallbackDomain, fallbackIntent, entities, nil
	}

	domain, intent, ok := parseClassification(reply)
	if !ok {
		return fallbackDomain, fallbackIntent, entities, nil
	}
	if domain == "" {
		domain = fallbackDomain
	}
	if intent == "" {
		intent = fallbackIntent
	}
	return domain, intent, entities, nil
}

func buildClassificationPrompt(query, contextBlock string) string {
	if contextBlock == "" {
		return query
	}
	return contextBlock + "\n\n用户问题: " + query
}

type classificationReply struct {
	Domain string `json:"domain"`
	Intent string `json:"intent"`
}

// parseClassification is tolerant to fenced code blocks and
// surrounding prose by regex-extracting the first {...} block (spec
// §4.9).
func parseClassification(reply string) (models.LegalDomain, models.LegalIntent, bool) {
	match := firstJSONObject.FindString(reply)
	if match == "" {
		return "", "", false
	}
	var parsed classificationReply
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return "", "", false
	}
	domain, domainOK := matchDomain(parsed.Domain)
	intent, intentOK := matchIntent(parsed.Intent)
	if !domainOK && !intentOK {
		return "", "", false
	}
	return domain, intent, true
}

// matchDomain implements tier 1 (exact, case-insensitive,
// underscore-normalized match) of spec §4.9's classification chain.
func matchDomain(label string) (models.LegalDomain, bool) {
	norm := normalizeLabel(label)
	for _, d := range models.AllDomains {
		if normalizeLabel(string(d)) == norm {
			return d, true
		}
	}
	return "", false
}

func matchIntent(label string) (models.LegalIntent, bool) {
	norm := normalizeLabel(label)
	for _, i := range models.AllIntents {
		if normalizeLabel(string(i)) == norm {
			return i, true
		}
	}
	return "", false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// fallbackClassify implements tiers 3-4 of spec §4.9's classification
// chain, used when the LLM call fails, its reply can't be parsed, or a
// label matches nothing: a keyword scan of the raw query, then the
// ultimate fallback. The ultimate fallback
// mirrors the original keyword detector: a query containing "法" (law)
// is almost certainly a legal question even when no domain keyword
// matched, so it defaults to Family (the most common domain) rather
// than NonLegal; anything else falls through to NonLegal.
func fallbackClassify(query string) (models.LegalDomain, models.LegalIntent, models.Entities, error) {
	for _, d := range models.AllDomains {
		for _, kw := range domainKeywords[d] {
			if strings.Contains(query, kw) {
				return d, models.IntentQARetrieval, models.Entities{}, nil
			}
		}
	}
	if containsLawCharacter(query) {
		return models.DomainFamily, models.IntentQARetrieval, models.Entities{}, nil
	}
	return models.DomainNonLegal, models.IntentQARetrieval, models.Entities{}, nil
}

func containsLawCharacter(s string) bool {
	return strings.Contains(s, "法")
}

// NonLegalGuidance is a canned reply for NonLegal-domain queries. Flow
// does not call it; it dispatches NonLegal queries to the NonLegal
// specialist.
func NonLegalGuidance() string {
	return "这是一个法律咨询助手，暂时无法回答与法律无关的问题。请描述您的法律相关问题，我会尽力协助。"
}

// parseEntitiesFromContext extracts entities from the labeled lines of
// the "已知事实" section a caller-supplied context block may carry
// (spec §4.9), mirroring the label set models.GlobalState.ToString
// writes: "当事人", "金额", "日期", "地点".
func parseEntitiesFromContext(contextBlock string) models.Entities {
	var entities models.Entities
	for _, line := range strings.Split(contextBlock, "\n") {
		line = strings.TrimSpace(line)
		sep := ":"
		idx := strings.Index(line, sep)
		if idx < 0 {
			sep = "："
			idx = strings.Index(line, sep)
		}
		if idx < 0 {
			continue
		}
		label := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+len(sep):])
		if value == "" {
			continue
		}
		values := splitEntityList(value)
		switch label {
		case "当事人":
			entities.Persons = append(entities.Persons, values...)
		case "金额":
			entities.Amounts = append(entities.Amounts, values...)
		case "日期":
			entities.Dates = append(entities.Dates, values...)
		case "地点":
			entities.Locations = append(entities.Locations, values...)
		}
	}
	return entities
}

func splitEntityList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == '、' || r == ','
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
