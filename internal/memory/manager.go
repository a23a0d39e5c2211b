// Package memory implements the Memory Manager (C6, spec §4.6): the
// single owner composing Session Memory (C4), Global State (C5), and
// the Vector Store (C3) into the context strings agents consume.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/embedding"
	"github.com/X-Luffy/Law-Agent/internal/logging"
	"github.com/X-Luffy/Law-Agent/internal/sessionmemory"
	"github.com/X-Luffy/Law-Agent/internal/vectorstore"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

const (
	sectionHistory  = "=== 对话历史 ==="
	sectionRelevant = "=== 相关历史记忆 ==="
	sectionFacts    = "=== 当前案件已知事实 ==="
)

// Config configures a Manager.
type Config struct {
	ContextWindowSize      int // default 10 (N from spec §4.6)
	ContextRefineThreshold int // default 5
	TopK                   int // default 3 vector-store hits per context assembly
}

func (c Config) withDefaults() Config {
	if c.ContextWindowSize <= 0 {
		c.ContextWindowSize = 10
	}
	if c.ContextRefineThreshold <= 0 {
		c.ContextRefineThreshold = 5
	}
	if c.TopK <= 0 {
		c.TopK = 3
	}
	return c
}

// Manager is the C6 Memory Manager. One Manager instance is owned
// exclusively by Flow for the process lifetime (spec §3 Ownership).
type Manager struct {
	cfg      Config
	sessions *sessionmemory.Store
	vectors  *vectorstore.Store
	embedder embedding.Client
	states   map[string]*models.GlobalState
}

// New builds a Manager. vectors/embedder may be nil — GetFullContext
// then degrades to session+global context only, matching spec §4.6's
// "vector-store unavailable" failure semantics.
func New(cfg Config, sessions *sessionmemory.Store, vectors *vectorstore.Store, embedder embedding.Client) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		sessions: sessions,
		vectors:  vectors,
		embedder: embedder,
		states:   make(map[string]*models.GlobalState),
	}
}

// GlobalState returns the per-conversation state for sessionID,
// creating an empty one lazily on first access (spec §3 Lifecycle).
func (m *Manager) GlobalState(sessionID string) *models.GlobalState {
	gs, ok := m.states[sessionID]
	if !ok {
		gs = &models.GlobalState{}
		m.states[sessionID] = gs
	}
	return gs
}

// AddMessage delegates to Session Memory (spec §4.6).
func (m *Manager) AddMessage(sessionID string, role models.Role, content string) {
	m.sessions.Add(sessionID, role, content, nil)
}

// GetFullContext composes the three labeled sections in the fixed
// order the spec mandates, omitting any section that would be empty.
// A vector-store or embedding failure is logged and degrades context
// to session+global only (spec §4.6 Failure semantics).
func (m *Manager) GetFullContext(ctx context.Context, query, sessionID string) string {
	var sections []string

	if history := m.historySection(sessionID); history != "" {
		sections = append(sections, history)
	}
	if relevant := m.relevantSection(ctx, query, sessionID); relevant != "" {
		sections = append(sections, relevant)
	}
	if facts := m.GlobalState(sessionID).ToString(); facts != "" {
		sections = append(sections, sectionFacts+"\n"+facts)
	}

	return strings.Join(sections, "\n\n")
}

func (m *Manager) historySection(sessionID string) string {
	recent := m.sessions.Recent(sessionID, m.cfg.ContextWindowSize)
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(sectionHistory)
	b.WriteString("\n")
	for i, msg := range recent {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", roleLabel(msg.Role), msg.Content)
	}
	return b.String()
}

func (m *Manager) relevantSection(ctx context.Context, query, sessionID string) string {
	if m.vectors == nil || m.embedder == nil || strings.TrimSpace(query) == "" {
		return ""
	}

	queryEmbedding, err := m.embedder.Encode(ctx, []string{query})
	if err != nil || len(queryEmbedding) == 0 {
		logging.FromContext(ctx).Warn("memory: embedding query failed, degrading context", "error", err)
		return ""
	}

	hits, err := m.vectors.Search(ctx, queryEmbedding[0], vectorstore.SearchOptions{
		Limit:      m.cfg.TopK,
		MetaFilter: map[string]any{"session_id": sessionID},
	})
	if err != nil || len(hits) == 0 {
		if err != nil {
			logging.FromContext(ctx).Warn("memory: vector search failed, degrading context", "error", err)
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(sectionRelevant)
	b.WriteString("\n")
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(h.Content)
	}
	return b.String()
}

// CheckAndArchive pairs older user+assistant messages beyond threshold
// into conversation records in the vector store (spec §4.6). Failures
// are logged, never propagated — archival is best-effort.
func (m *Manager) CheckAndArchive(ctx context.Context, sessionID string) {
	threshold := m.cfg.ContextRefineThreshold
	all := m.sessions.All(sessionID)
	if len(all) <= threshold || m.vectors == nil || m.embedder == nil {
		return
	}

	older := all[:len(all)-threshold]
	pairs := pairTurns(older)
	if len(pairs) == 0 {
		return
	}

	texts := make([]string, len(pairs))
	for i, p := range pairs {
		texts[i] = p
	}
	vectors, err := m.embedder.Encode(ctx, texts)
	if err != nil {
		logging.FromContext(ctx).Warn("memory: archive embedding failed", "error", err)
		return
	}

	for i, content := range pairs {
		var emb []float32
		if i < len(vectors) {
			emb = vectors[i]
		}
		_, err := m.vectors.Add(ctx, models.VectorRecord{
			Content:   content,
			Embedding: emb,
			Metadata: map[string]any{
				"type":       string(models.RecordConversation),
				"session_id": sessionID,
				"archived":   true,
			},
			Timestamp: time.Now(),
		})
		if err != nil {
			logging.FromContext(ctx).Warn("memory: archive insert failed", "error", err)
		}
	}
}

// pairTurns concatenates consecutive user+assistant messages into
// "User: …\nAssistant: …" records, skipping any unpaired tail message.
func pairTurns(messages []models.Message) []string {
	var pairs []string
	for i := 0; i+1 < len(messages); i++ {
		u, a := messages[i], messages[i+1]
		if u.Role != models.RoleUser || a.Role != models.RoleAssistant {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("User: %s\nAssistant: %s", u.Content, a.Content))
		i++ // consumed both; outer loop's i++ advances past the pair
	}
	return pairs
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleUser:
		return "User"
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleSystem:
		return "System"
	case models.RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}
