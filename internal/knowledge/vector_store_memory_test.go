package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(id string, vec []float32, category string) IndexedChunk {
	return IndexedChunk{
		ChunkID:   id,
		Embedding: vec,
		Content:   "content of " + id,
		Metadata:  map[string]interface{}{"document_category": category},
	}
}

func TestMemoryStoreQueryOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVectorStore()

	require.NoError(t, store.Upsert(ctx, []IndexedChunk{
		testChunk("near", []float32{1, 0}, "hr_policy"),
		testChunk("far", []float32{0, 5}, "hr_policy"),
		testChunk("mid", []float32{0, 1}, "hr_policy"),
	}))

	matches, err := store.Query(ctx, QueryRequest{Embedding: []float32{1, 0}, Limit: 3})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "near", matches[0].ChunkID)
	assert.Equal(t, float64(0), matches[0].Distance)
	assert.Equal(t, "mid", matches[1].ChunkID)
	assert.Equal(t, "far", matches[2].ChunkID)
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVectorStore()

	require.NoError(t, store.Upsert(ctx, []IndexedChunk{testChunk("a", []float32{1, 0}, "hr_policy")}))
	updated := testChunk("a", []float32{0, 1}, "hr_policy")
	updated.Content = "replaced"
	require.NoError(t, store.Upsert(ctx, []IndexedChunk{updated}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := store.Query(ctx, QueryRequest{Embedding: []float32{0, 1}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "replaced", matches[0].Content)
	assert.Equal(t, float64(0), matches[0].Distance)
}

func TestMemoryStoreCategoryFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVectorStore()

	require.NoError(t, store.Upsert(ctx, []IndexedChunk{
		testChunk("hr", []float32{1, 0}, "hr_policy"),
		testChunk("travel", []float32{1, 0}, "travel_policy"),
		testChunk("offer", []float32{1, 0}, "offer_template"),
	}))

	matches, err := store.Query(ctx, QueryRequest{
		Embedding:  []float32{1, 0},
		Limit:      10,
		Categories: []string{"hr_policy", "travel_policy"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, "offer", m.ChunkID)
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVectorStore()

	require.NoError(t, store.Upsert(ctx, []IndexedChunk{
		testChunk("a", []float32{1, 0}, "hr_policy"),
		testChunk("b", []float32{0, 1}, "hr_policy"),
		testChunk("c", []float32{1, 1}, "hr_policy"),
	}))

	matches, err := store.Query(ctx, QueryRequest{Embedding: []float32{1, 0}, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVectorStore()

	require.NoError(t, store.Upsert(ctx, []IndexedChunk{testChunk("a", []float32{1}, "hr_policy")}))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, store.Ready())
}

func TestMemoryStoreEmptyQueryEmbedding(t *testing.T) {
	store := NewMemoryVectorStore()
	matches, err := store.Query(context.Background(), QueryRequest{})
	assert.NoError(t, err)
	assert.Nil(t, matches)
}
