package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/document"
	"github.com/empuraan01/fenmoai-hrletter/internal/employee"
	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
	"github.com/empuraan01/fenmoai-hrletter/internal/extract"
	"github.com/empuraan01/fenmoai-hrletter/internal/generator"
	"github.com/empuraan01/fenmoai-hrletter/internal/knowledge"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
)

type fakeGenerator struct {
	lastReq generator.LetterRequest
	letter  string
	err     error
}

func (f *fakeGenerator) GenerateLetter(ctx context.Context, req generator.LetterRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.letter, nil
}

func (f *fakeGenerator) Ready() bool { return true }

const serviceRosterCSV = `Employee Name,Department,Location,Band,Base Salary (INR),Joining Date
Priya Sharma,Engineering,Bengaluru,L3,2400000,2024-03-01
Arjun Mehta,Sales,Mumbai,L1,800000,2024-06-15
`

func newLetterService(t *testing.T, gen *fakeGenerator) (*LetterService, *retrieval.Retriever) {
	t.Helper()

	rosterPath := filepath.Join(t.TempDir(), "Employee_List.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(serviceRosterCSV), 0o644))
	employees, err := employee.NewManager(rosterPath)
	require.NoError(t, err)

	store := knowledge.NewMemoryVectorStore()
	embedder := constEmbedder{}
	retriever := retrieval.NewRetriever(store, embedder)
	searcher := retrieval.NewPolicySearcher(retriever)

	svc := NewLetterService(Deps{
		Parser:    document.NewParser(),
		Chunker:   knowledge.NewChunker(1000, 200),
		Store:     store,
		Embedder:  embedder,
		Retriever: retriever,
		Searcher:  searcher,
		Assembler: NewContextAssembler(searcher, extract.NewExtractor()),
		Employees: employees,
		Generator: gen,
	})
	return svc, retriever
}

func indexPolicyChunk(t *testing.T, r *retrieval.Retriever, content string, category document.Category) {
	t.Helper()
	require.NoError(t, r.AddChunks(context.Background(), []knowledge.Chunk{{
		Content:  content,
		Category: category,
	}}))
}

func TestProcessDocumentsIsolatesFailures(t *testing.T) {
	svc, _ := newLetterService(t, &fakeGenerator{letter: "ok"})

	summary := svc.ProcessDocuments(context.Background(), []string{"/nonexistent/policy.pdf"})

	assert.Empty(t, summary.Processed)
	assert.Zero(t, summary.TotalChunks)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "/nonexistent/policy.pdf")
}

func TestGenerateOfferLetter(t *testing.T) {
	gen := &fakeGenerator{letter: "Dear Priya, welcome aboard."}
	svc, retriever := newLetterService(t, gen)
	indexPolicyChunk(t, retriever, leaveMatrixText, document.CategoryHRPolicy)

	result, err := svc.GenerateOfferLetter(context.Background(), "priya sharma")
	require.NoError(t, err)

	assert.Equal(t, "Priya Sharma", result.EmployeeName)
	assert.Equal(t, "L3", result.Band)
	assert.Equal(t, gen.letter, result.Letter)
	assert.Greater(t, result.PoliciesUsed, 0)
	assert.Greater(t, result.PolicyChunks, 0)

	assert.Equal(t, band.L3, gen.lastReq.Employee.Band)
	assert.True(t, gen.lastReq.Policies.WFHPolicy)
	assert.Contains(t, gen.lastReq.PolicyContext, "L3 Leave Entitlement Breakdown")
}

func TestGenerateOfferLetterTemplateFallback(t *testing.T) {
	gen := &fakeGenerator{letter: "letter"}
	svc, retriever := newLetterService(t, gen)
	indexPolicyChunk(t, retriever, leaveMatrixText, document.CategoryHRPolicy)

	result, err := svc.GenerateOfferLetter(context.Background(), "Priya Sharma")
	require.NoError(t, err)

	assert.False(t, result.TemplateUsed)
	assert.Equal(t, defaultTemplateStructure, gen.lastReq.TemplateContext)
}

func TestGenerateOfferLetterUsesIngestedTemplate(t *testing.T) {
	gen := &fakeGenerator{letter: "letter"}
	svc, retriever := newLetterService(t, gen)
	indexPolicyChunk(t, retriever, leaveMatrixText, document.CategoryHRPolicy)
	indexPolicyChunk(t, retriever, "OFFER LETTER TEMPLATE: position, salary, start date",
		document.CategoryOfferTemplate)

	result, err := svc.GenerateOfferLetter(context.Background(), "Priya Sharma")
	require.NoError(t, err)

	assert.True(t, result.TemplateUsed)
	assert.Contains(t, gen.lastReq.TemplateContext, "OFFER LETTER TEMPLATE")
}

func TestGenerateOfferLetterUnknownEmployee(t *testing.T) {
	svc, _ := newLetterService(t, &fakeGenerator{letter: "letter"})

	_, err := svc.GenerateOfferLetter(context.Background(), "Nobody Here")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmployeeNotFound))
}

func TestBatchGenerateOffersKeepsFailuresWithItems(t *testing.T) {
	gen := &fakeGenerator{letter: "letter"}
	svc, retriever := newLetterService(t, gen)
	indexPolicyChunk(t, retriever, leaveMatrixText, document.CategoryHRPolicy)

	items := svc.BatchGenerateOffers(context.Background(), []string{"Priya Sharma", "Nobody Here"})
	require.Len(t, items, 2)

	assert.NoError(t, items[0].Err)
	require.NotNil(t, items[0].Result)
	assert.Equal(t, "Priya Sharma", items[0].Result.EmployeeName)

	assert.Error(t, items[1].Err)
	assert.Nil(t, items[1].Result)
}

func TestStatusAndReset(t *testing.T) {
	svc, retriever := newLetterService(t, &fakeGenerator{letter: "letter"})
	indexPolicyChunk(t, retriever, leaveMatrixText, document.CategoryHRPolicy)

	status := svc.Status(context.Background())
	assert.True(t, status.EmbedderReady)
	assert.True(t, status.StoreReady)
	assert.True(t, status.GeneratorReady)
	assert.Equal(t, 1, status.IndexedChunks)
	assert.Equal(t, 2, status.Employees)

	require.NoError(t, svc.ResetIndex(context.Background()))
	status = svc.Status(context.Background())
	assert.Zero(t, status.IndexedChunks)
}
