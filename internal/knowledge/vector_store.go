package knowledge

import "context"

// IndexedChunk is a chunk embedding plus its payload, keyed by chunk ID.
// Upserting the same ID again replaces the stored entry.
type IndexedChunk struct {
	ChunkID   string
	Embedding []float32
	Content   string
	Metadata  map[string]interface{}
}

// QueryRequest asks for the nearest stored chunks to an embedding,
// optionally restricted to document categories.
type QueryRequest struct {
	Embedding  []float32
	Limit      int
	Categories []string
}

// QueryMatch is one nearest-neighbor hit. Distance is the raw metric
// distance; similarity conversion is the caller's concern.
type QueryMatch struct {
	ChunkID  string
	Content  string
	Metadata map[string]interface{}
	Distance float64
}

// VectorStore is the similarity index behind retrieval.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []IndexedChunk) error
	Query(ctx context.Context, req QueryRequest) ([]QueryMatch, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Ready() bool
}
