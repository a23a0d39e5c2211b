package router

import (
	"context"
	"testing"

	"github.com/X-Luffy/Law-Agent/internal/llm"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

type fixedClient struct {
	reply string
	err   error
}

func (f *fixedClient) Chat(ctx context.Context, messages []models.Message, system string, temperature float32, maxTokens int) (string, error) {
	return f.reply, f.err
}

func (f *fixedClient) ChatWithTools(ctx context.Context, messages []models.Message, system string, tools []llm.ToolSchema, choice llm.ToolChoice, temperature float32, maxTokens int) (*llm.ToolCallResponse, error) {
	return nil, nil
}

func TestRoute_ExactJSONMatch(t *testing.T) {
	r := New(&fixedClient{reply: `{"domain":"labor","intent":"qa_retrieval"}`})
	domain, intent, _, err := r.Route(context.Background(), "我被公司辞退了", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != models.DomainLabor || intent != models.IntentQARetrieval {
		t.Fatalf("got domain=%s intent=%s", domain, intent)
	}
}

func TestRoute_TolerantToFencedJSON(t *testing.T) {
	r := New(&fixedClient{reply: "```json\n{\"domain\": \"Family\", \"intent\": \"Case_Analysis\"}\n```"})
	domain, intent, _, err := r.Route(context.Background(), "离婚财产如何分割", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != models.DomainFamily || intent != models.IntentCaseAnalysis {
		t.Fatalf("got domain=%s intent=%s", domain, intent)
	}
}

func TestRoute_FallsBackToKeywordScanOnUnparsableReply(t *testing.T) {
	r := New(&fixedClient{reply: "sorry, I cannot help"})
	domain, _, _, err := r.Route(context.Background(), "劳动仲裁申请怎么写", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != models.DomainLabor {
		t.Fatalf("expected labor domain from keyword scan, got %s", domain)
	}
}

func TestRoute_UltimateFallbackToFamilyWhenLawCharacterPresent(t *testing.T) {
	r := New(&fixedClient{reply: "no json here"})
	domain, _, _, err := r.Route(context.Background(), "这个法该怎么理解", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != models.DomainFamily {
		t.Fatalf("expected Family ultimate fallback for unclassifiable query containing \"法\", got %s", domain)
	}
}

func TestRoute_UltimateFallbackNonLegalWithoutLawCharacter(t *testing.T) {
	r := New(&fixedClient{reply: "no json here"})
	domain, _, _, err := r.Route(context.Background(), "今天心情不好", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != models.DomainNonLegal {
		t.Fatalf("expected NonLegal fallback for unclassifiable text without \"法\", got %s", domain)
	}
}

func TestParseEntitiesFromContext_ExtractsLabeledLines(t *testing.T) {
	block := "=== 当前案件已知事实 ===\n领域: labor\n当事人: 张三、李四\n金额: 5000元\n日期: 2026-01-01\n地点: 深圳"
	entities := parseEntitiesFromContext(block)
	if len(entities.Persons) != 2 || entities.Persons[0] != "张三" {
		t.Fatalf("expected persons [张三 李四], got %v", entities.Persons)
	}
	if len(entities.Amounts) != 1 || entities.Amounts[0] != "5000元" {
		t.Fatalf("expected amounts [5000元], got %v", entities.Amounts)
	}
	if len(entities.Locations) != 1 || entities.Locations[0] != "深圳" {
		t.Fatalf("expected locations [深圳], got %v", entities.Locations)
	}
}

func TestNonLegalGuidance_NonEmpty(t *testing.T) {
	if NonLegalGuidance() == "" {
		t.Fatalf("expected non-empty guidance text")
	}
}
