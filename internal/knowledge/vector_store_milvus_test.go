package knowledge

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFallbackSatisfiesIndexInterface(t *testing.T) {
	// Both the HNSW index and its IVF_FLAT fallback must be assignable to
	// the same entity.Index value for the fallback path to work.
	var index entity.Index

	hnsw, err := entity.NewIndexHNSW(entity.L2, 8, 64)
	require.NoError(t, err)
	index = hnsw
	assert.Equal(t, entity.HNSW, index.IndexType())

	ivf, err := entity.NewIndexIvfFlat(entity.L2, 128)
	require.NoError(t, err)
	index = ivf
	assert.Equal(t, entity.IvfFlat, index.IndexType())
}

func TestQuoteJoin(t *testing.T) {
	assert.Equal(t, `"a", "b c"`, quoteJoin([]string{"a", "b c"}))
	assert.Equal(t, `"a"`, quoteJoin([]string{"a"}))
	assert.Equal(t, "", quoteJoin(nil))
}
