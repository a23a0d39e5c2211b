// Package vectorstore implements the semantic memory tier (C3, spec
// §4.3): a sqlite-backed store of content+embedding+metadata records
// searched by cosine similarity.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go driver, no cgo/vec0 extension required

	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// Store is the sqlite-backed vector index. A sqlite database has no
// vec0 extension loaded here (no cgo), so Search computes cosine
// similarity in Go over every row in scope — adequate at the
// per-conversation scale this runtime operates at.
type Store struct {
	db         *sql.DB
	collection string
	dimension  int
}

// Config configures a Store.
type Config struct {
	Path       string // ":memory:" for an ephemeral store
	Collection string // logical namespace, e.g. a conversation ID
	Dimension  int    // embedding size; 0 defers to Initialize
}

// Open opens (creating if absent) the sqlite database at cfg.Path and
// ensures the records table exists.
func Open(cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open: %w", err)
	}
	s := &Store{db: db, collection: cfg.Collection, dimension: cfg.Dimension}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT,
			embedding BLOB,
			timestamp DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("vectorstore: create table: %w", err)
	}
	_, err = s.db.Exec("CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection)")
	if err != nil {
		return fmt.Errorf("vectorstore: create index: %w", err)
	}
	return nil
}

// Initialize fixes the collection name and embedding dimension a Store
// will accept. Once a non-empty dimension has been set it is immutable
// for the life of the Store (spec §4.2's "dimension is fixed once
// chosen" applies transitively to everything stored against it).
func (s *Store) Initialize(collection string, dimension int) {
	s.collection = collection
	if s.dimension == 0 {
		s.dimension = dimension
	}
}

// Add stores one record, assigning an ID if rec.ID is empty. Returns
// the stored record's ID.
func (s *Store) Add(ctx context.Context, rec models.VectorRecord) (string, error) {
	if s.dimension != 0 && len(rec.Embedding) != 0 && len(rec.Embedding) != s.dimension {
		return "", fmt.Errorf("vectorstore: embedding dimension %d does not match store dimension %d", len(rec.Embedding), s.dimension)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", fmt.Errorf("vectorstore: marshal metadata: %w", err)
	}

	recordType := rec.Metadata["type"]
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO records (id, collection, type, content, metadata, embedding, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, s.collection, fmt.Sprintf("%v", recordType), rec.Content, string(metadataJSON), encodeEmbedding(rec.Embedding), rec.Timestamp)
	if err != nil {
		return "", fmt.Errorf("vectorstore: insert: %w", err)
	}
	return rec.ID, nil
}

// SearchOptions narrows a Search call.
type SearchOptions struct {
	Limit      int            // default 5
	Threshold  float64        // results below this cosine score are dropped
	MetaFilter map[string]any // exact-equality match against stored metadata
}

// Search returns the records in the store's collection most similar to
// queryEmbedding, ranked by cosine similarity descending.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]models.SearchHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding FROM records WHERE collection = ?
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var id, content, metadataJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&id, &content, &metadataJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("vectorstore: scan: %w", err)
		}

		var metadata map[string]any
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
				return nil, fmt.Errorf("vectorstore: unmarshal metadata: %w", err)
			}
		}
		if !matchesFilter(metadata, opts.MetaFilter) {
			continue
		}

		score := float64(cosineSimilarity(queryEmbedding, decodeEmbedding(embeddingBlob)))
		if opts.Threshold > 0 && score < opts.Threshold {
			continue
		}
		hits = append(hits, models.SearchHit{ID: id, Content: content, Metadata: metadata, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: rows: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Get fetches a single record by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.VectorRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, metadata, embedding, timestamp FROM records WHERE id = ? AND collection = ?
	`, id, s.collection)

	var rec models.VectorRecord
	var metadataJSON string
	var embeddingBlob []byte
	if err := row.Scan(&rec.ID, &rec.Content, &metadataJSON, &embeddingBlob, &rec.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("vectorstore: get: %w", err)
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("vectorstore: unmarshal metadata: %w", err)
		}
	}
	rec.Embedding = decodeEmbedding(embeddingBlob)
	return &rec, nil
}

// Delete removes a record by ID. Deleting a non-existent ID is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ? AND collection = ?", id, s.collection)
	if err != nil {
		return fmt.Errorf("vectorstore: delete: %w", err)
	}
	return nil
}

// Count returns the number of records in the store's collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection = ?", s.collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("vectorstore: count: %w", err)
	}
	return count, nil
}

// Clear deletes every record in the store's collection.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.collection)
	if err != nil {
		return fmt.Errorf("vectorstore: clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

func encodeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	data := make([]byte, len(embedding)*4)
	for i, f := range embedding {
		bits := math.Float32bits(f)
		data[i*4] = byte(bits)
		data[i*4+1] = byte(bits >> 8)
		data[i*4+2] = byte(bits >> 16)
		data[i*4+3] = byte(bits >> 24)
	}
	return data
}

func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		bits := uint32(data[i*4]) |
			uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 |
			uint32(data[i*4+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (sqrt32(normA) * sqrt32(normB))
}

// sqrt32 is a Newton-Raphson approximation, avoiding a float64 round
// trip through math.Sqrt for the hot search-loop path.
func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 10; i++ {
		z = (z + x/z) / 2
	}
	return z
}
