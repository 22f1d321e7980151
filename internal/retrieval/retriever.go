package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
	"github.com/empuraan01/fenmoai-hrletter/internal/knowledge"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// Priority buckets assigned by the band-aware ranker.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Result is one retrieved chunk with its ranking state. Similarity starts
// as 1/(1+distance) and accumulates ranking boosts afterwards, so it is an
// ordering signal, not a probability.
type Result struct {
	Content       string
	Metadata      map[string]interface{}
	Similarity    float64
	Rank          int
	BandSpecific  bool
	Priority      string
	RelevantBands []band.Band
}

// Retriever embeds queries and chunks against the similarity index.
type Retriever struct {
	store    knowledge.VectorStore
	embedder knowledge.Embedder
	logger   *zap.Logger
}

func NewRetriever(store knowledge.VectorStore, embedder knowledge.Embedder) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger.GetLogger(),
	}
}

// AddChunks embeds and indexes document chunks. Embedding failures abort
// the batch; the caller decides whether the document counts as processed.
func (r *Retriever) AddChunks(ctx context.Context, chunks []knowledge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	indexed := make([]knowledge.IndexedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := r.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", chunk.ChunkID, err)
		}

		chunkID := chunk.ChunkID
		if chunkID == "" {
			chunkID = uuid.NewString()
		}

		metadata := map[string]interface{}{
			"source_document":   chunk.SourceDocument,
			"document_category": string(chunk.Category),
			"page_number":       chunk.PageNumber,
			"chunk_index":       chunk.ChunkIndex,
		}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}

		indexed = append(indexed, knowledge.IndexedChunk{
			ChunkID:   chunkID,
			Embedding: embedding,
			Content:   chunk.Content,
			Metadata:  metadata,
		})
	}

	if err := r.store.Upsert(ctx, indexed); err != nil {
		return apperrors.NewExternalError(apperrors.ErrCodeIndexUnavailable, "vector store upsert failed").WithCause(err)
	}

	r.logger.Info("indexed chunks", zap.Int("count", len(indexed)))
	return nil
}

// Search embeds the query and returns the nearest chunks above the
// similarity floor, ranked from 1.
func (r *Retriever) Search(ctx context.Context, query string, topK int, categories []string, minSimilarity float64) ([]Result, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.Query(ctx, knowledge.QueryRequest{
		Embedding:  embedding,
		Limit:      topK,
		Categories: categories,
	})
	if err != nil {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeIndexUnavailable, "vector store query failed").WithCause(err)
	}

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		distance := match.Distance
		if distance < 0 {
			distance = 0
		}
		similarity := 1.0 / (1.0 + distance)
		if similarity < minSimilarity {
			continue
		}

		results = append(results, Result{
			Content:    match.Content,
			Metadata:   match.Metadata,
			Similarity: similarity,
			Rank:       len(results) + 1,
			Priority:   PriorityLow,
		})
	}

	r.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("matches", len(matches)),
		zap.Int("kept", len(results)))
	return results, nil
}

// Ready reports whether both collaborators can serve requests.
func (r *Retriever) Ready() bool {
	return r.embedder.Ready() && r.store.Ready()
}

// Fingerprint identifies near-duplicate chunks by their leading content.
func Fingerprint(content string) string {
	runes := []rune(content)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes)
}
