package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// MilvusOptions configures the Milvus-backed store.
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
	logger       *zap.Logger
}

// NewMilvusVectorStore connects to Milvus and returns a store over one
// collection. The collection uses the L2 metric so query distances stay
// raw; similarity conversion lives in the retrieval layer.
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "fenmoai_documents"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		logger:       logger.GetLogger(),
	}, nil
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return s.ensureLoaded(ctx)
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "HR policy document chunks",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "category",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "metadata",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	var index entity.Index
	if hnsw, indexErr := entity.NewIndexHNSW(entity.L2, 8, 64); indexErr == nil {
		index = hnsw
	} else {
		ivf, ivfErr := entity.NewIndexIvfFlat(entity.L2, 128)
		if ivfErr != nil {
			return fmt.Errorf("failed to create index: %w", ivfErr)
		}
		index = ivf
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		s.logger.Warn("failed to create vector index",
			zap.String("collection", s.collection), zap.Error(err))
	}

	return s.ensureLoaded(ctx)
}

func (s *milvusVectorStore) ensureLoaded(ctx context.Context) error {
	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (s *milvusVectorStore) Upsert(ctx context.Context, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	ids := make([]string, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	categories := make([]string, 0, len(chunks))
	metadatas := make([]string, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))

	for _, chunk := range chunks {
		embedding := chunk.Embedding
		if len(embedding) != s.vectorSize {
			padded := make([]float32, s.vectorSize)
			copy(padded, embedding)
			embedding = padded
		}

		category, _ := chunk.Metadata["document_category"].(string)
		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			metaJSON = []byte("{}")
		}

		ids = append(ids, chunk.ChunkID)
		contents = append(contents, chunk.Content)
		categories = append(categories, category)
		metadatas = append(metadatas, string(metaJSON))
		vectors = append(vectors, embedding)
	}

	// Primary-key upsert semantics: delete any existing rows first so a
	// re-ingest replaces rather than duplicates.
	expr := fmt.Sprintf("chunk_id in [%s]", quoteJoin(ids))
	if err := s.milvusClient.Delete(ctx, s.collection, "", expr); err != nil {
		s.logger.Warn("failed to delete existing chunks before upsert", zap.Error(err))
	}

	_, err := s.milvusClient.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("chunk_id", ids),
		entity.NewColumnVarChar("content", contents),
		entity.NewColumnVarChar("category", categories),
		entity.NewColumnVarChar("metadata", metadatas),
		entity.NewColumnFloatVector("vector", s.vectorSize, vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		s.logger.Warn("failed to flush collection",
			zap.String("collection", s.collection), zap.Error(err))
	}
	return nil
}

func (s *milvusVectorStore) Query(ctx context.Context, req QueryRequest) ([]QueryMatch, error) {
	if len(req.Embedding) == 0 {
		return nil, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	expr := ""
	if len(req.Categories) > 0 {
		expr = fmt.Sprintf("category in [%s]", quoteJoin(req.Categories))
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(req.Embedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{"content", "metadata"},
		[]entity.Vector{queryVector},
		"vector",
		entity.L2,
		req.Limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}
	if len(searchResults) == 0 {
		return []QueryMatch{}, nil
	}

	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []QueryMatch{}, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var contents, metadatas []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "content":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				contents = col.Data()
			}
		case "metadata":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				metadatas = col.Data()
			}
		}
	}

	matches := make([]QueryMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		match := QueryMatch{Metadata: make(map[string]interface{})}
		if i < len(ids) {
			match.ChunkID = ids[i]
		}
		if i < len(contents) {
			match.Content = contents[i]
		}
		if i < len(metadatas) {
			var meta map[string]interface{}
			if err := json.Unmarshal([]byte(metadatas[i]), &meta); err == nil {
				match.Metadata = meta
			}
		}
		if i < len(result.Scores) {
			// L2 metric: score is the raw distance.
			match.Distance = float64(result.Scores[i])
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *milvusVectorStore) Count(ctx context.Context) (int, error) {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection: %w", err)
	}
	if !hasCollection {
		return 0, nil
	}

	stats, err := s.milvusClient.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to read collection statistics: %w", err)
	}
	count, _ := strconv.Atoi(stats["row_count"])
	return count, nil
}

func (s *milvusVectorStore) Clear(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !hasCollection {
		return nil
	}
	if err := s.milvusClient.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
