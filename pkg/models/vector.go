package models

import "time"

// RecordType is the closed set of mandatory metadata "type" values used
// for vector-store filtering (spec §3).
type RecordType string

const (
	RecordConversation   RecordType = "conversation"
	RecordRefinedContext RecordType = "refined_context"
	RecordToolDesc       RecordType = "tool_description"
)

// VectorRecord is a single (id, content, embedding, metadata) triple
// stored in the vector store. Records are immutable after creation except
// via delete-then-reinsert (spec §3 Lifecycle).
type VectorRecord struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// SearchHit is one ranked result from VectorStore.Search.
type SearchHit struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"` // cosine similarity in [-1,1], higher = closer
}
