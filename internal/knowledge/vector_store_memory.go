package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryVectorStore is an in-process similarity index with exact L2
// search. It is the default store when Milvus is not configured and the
// store used by tests.
type MemoryVectorStore struct {
	mu     sync.RWMutex
	chunks map[string]IndexedChunk
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{
		chunks: make(map[string]IndexedChunk),
	}
}

func (s *MemoryVectorStore) Upsert(ctx context.Context, chunks []IndexedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ChunkID] = chunk
	}
	return nil
}

func (s *MemoryVectorStore) Query(ctx context.Context, req QueryRequest) ([]QueryMatch, error) {
	if len(req.Embedding) == 0 {
		return nil, nil
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]QueryMatch, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if !categoryAllowed(chunk.Metadata, req.Categories) {
			continue
		}
		matches = append(matches, QueryMatch{
			ChunkID:  chunk.ChunkID,
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Distance: l2Distance(req.Embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *MemoryVectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]IndexedChunk)
	return nil
}

func (s *MemoryVectorStore) Ready() bool {
	return true
}

func categoryAllowed(metadata map[string]interface{}, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	category, _ := metadata["document_category"].(string)
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// l2Distance computes euclidean distance; mismatched dimensions treat the
// shorter vector as zero-padded.
func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}
