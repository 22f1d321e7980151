package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/document"
	"github.com/empuraan01/fenmoai-hrletter/internal/employee"
	"github.com/empuraan01/fenmoai-hrletter/internal/generator"
	"github.com/empuraan01/fenmoai-hrletter/internal/knowledge"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
)

const defaultTemplateStructure = `STANDARD OFFER LETTER STRUCTURE:

1. Company Header and Date
2. Employee Address
3. Subject Line
4. Formal Greeting
5. Position Details: Job Title, Department, Reporting Manager, Start Date
6. Compensation Package: Base Salary, Allowances, Benefits
7. Leave and Travel Policy References
8. Terms and Conditions
9. Closing and Signature Blocks`

// ProcessedDocument summarizes one successfully ingested document.
type ProcessedDocument struct {
	Filename string
	Category document.Category
	Pages    int
	Chunks   int
}

// ProcessingSummary is the outcome of a document ingestion batch.
// Failures are recorded per document; the batch keeps going.
type ProcessingSummary struct {
	Processed   []ProcessedDocument
	TotalChunks int
	Errors      []string
}

// LetterResult is one generated offer letter plus generation metadata.
type LetterResult struct {
	EmployeeName string
	Band         string
	Letter       string
	PoliciesUsed int
	PolicyChunks int
	TemplateUsed bool
}

// BatchItem is one entry of a batch generation run.
type BatchItem struct {
	EmployeeName string
	Result       *LetterResult
	Err          error
}

// SystemStatus reports collaborator readiness and index size.
type SystemStatus struct {
	EmbedderReady  bool
	StoreReady     bool
	GeneratorReady bool
	IndexedChunks  int
	Employees      int
}

// Deps wires the letter service's collaborators.
type Deps struct {
	Parser    *document.Parser
	Chunker   *knowledge.Chunker
	Store     knowledge.VectorStore
	Embedder  knowledge.Embedder
	Retriever *retrieval.Retriever
	Searcher  *retrieval.PolicySearcher
	Assembler *ContextAssembler
	Employees *employee.Manager
	Generator generator.Generator
}

// LetterService orchestrates the pipeline: ingest policy documents,
// retrieve and structure band policies, and generate offer letters.
type LetterService struct {
	deps   Deps
	logger *zap.Logger
}

func NewLetterService(deps Deps) *LetterService {
	return &LetterService{
		deps:   deps,
		logger: logger.GetLogger(),
	}
}

// ProcessDocuments parses, chunks, and indexes the given documents.
// One bad document never aborts the batch: its error is recorded and
// the rest proceed.
func (s *LetterService) ProcessDocuments(ctx context.Context, paths []string) *ProcessingSummary {
	summary := &ProcessingSummary{}

	for _, path := range paths {
		doc, err := s.deps.Parser.Parse(path)
		if err != nil {
			s.logger.Error("failed to parse document", zap.String("path", path), zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		chunks := s.deps.Chunker.ChunkDocument(doc.Content, doc.Metadata.Filename, doc.Metadata.Category)
		if len(chunks) == 0 {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: no chunks produced", path))
			continue
		}

		if err := s.deps.Retriever.AddChunks(ctx, chunks); err != nil {
			s.logger.Error("failed to index document", zap.String("path", path), zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		summary.Processed = append(summary.Processed, ProcessedDocument{
			Filename: doc.Metadata.Filename,
			Category: doc.Metadata.Category,
			Pages:    doc.Metadata.PageCount,
			Chunks:   len(chunks),
		})
		summary.TotalChunks += len(chunks)
	}

	s.logger.Info("document processing complete",
		zap.Int("processed", len(summary.Processed)),
		zap.Int("chunks", summary.TotalChunks),
		zap.Int("errors", len(summary.Errors)))
	return summary
}

// GenerateOfferLetter builds the full context for one employee and
// drafts the letter. The employee's band drives every retrieval step.
func (s *LetterService) GenerateOfferLetter(ctx context.Context, employeeName string) (*LetterResult, error) {
	emp, err := s.deps.Employees.Find(employeeName)
	if err != nil {
		return nil, err
	}

	policies, err := s.deps.Assembler.RelevantPolicies(ctx, emp.Band)
	if err != nil {
		return nil, fmt.Errorf("retrieving policies for %s: %w", emp.Band, err)
	}
	policyContext := s.deps.Assembler.BuildPolicyContext(policies, emp.Band)

	templateContext, templateUsed := s.templateContext(ctx)

	letter, err := s.deps.Generator.GenerateLetter(ctx, generator.LetterRequest{
		Employee:        emp,
		Policies:        s.deps.Employees.ApplicablePolicies(emp),
		PolicyContext:   policyContext,
		TemplateContext: templateContext,
	})
	if err != nil {
		return nil, err
	}

	chunkCount := 0
	for _, results := range policies {
		chunkCount += len(results)
	}

	s.logger.Info("generated offer letter",
		zap.String("employee", emp.Name),
		zap.String("band", string(emp.Band)),
		zap.Int("policy_categories", len(policies)),
		zap.Int("policy_chunks", chunkCount))

	return &LetterResult{
		EmployeeName: emp.Name,
		Band:         string(emp.Band),
		Letter:       letter,
		PoliciesUsed: len(policies),
		PolicyChunks: chunkCount,
		TemplateUsed: templateUsed,
	}, nil
}

// BatchGenerateOffers generates letters for several employees. Failures
// stay with their item.
func (s *LetterService) BatchGenerateOffers(ctx context.Context, names []string) []BatchItem {
	items := make([]BatchItem, 0, len(names))
	for _, name := range names {
		result, err := s.GenerateOfferLetter(ctx, name)
		if err != nil {
			s.logger.Error("batch item failed", zap.String("employee", name), zap.Error(err))
		}
		items = append(items, BatchItem{EmployeeName: name, Result: result, Err: err})
	}
	return items
}

// SearchPolicies exposes the band-aware policy search.
func (s *LetterService) SearchPolicies(ctx context.Context, query string) ([]retrieval.Result, error) {
	return s.deps.Searcher.SearchPolicies(ctx, query, nil)
}

// Status probes every collaborator.
func (s *LetterService) Status(ctx context.Context) SystemStatus {
	count, err := s.deps.Store.Count(ctx)
	if err != nil {
		count = 0
	}
	return SystemStatus{
		EmbedderReady:  s.deps.Embedder.Ready(),
		StoreReady:     s.deps.Store.Ready(),
		GeneratorReady: s.deps.Generator.Ready(),
		IndexedChunks:  count,
		Employees:      s.deps.Employees.Count(),
	}
}

// ResetIndex drops every indexed chunk.
func (s *LetterService) ResetIndex(ctx context.Context) error {
	return s.deps.Store.Clear(ctx)
}

// templateContext retrieves offer template chunks, falling back to the
// default structure when the template document was never ingested. The
// zero similarity floor is deliberate: any template text beats none.
func (s *LetterService) templateContext(ctx context.Context) (string, bool) {
	results, err := s.deps.Retriever.Search(ctx,
		"offer letter employment agreement position salary compensation",
		2, []string{string(document.CategoryOfferTemplate)}, 0.0)
	if err != nil || len(results) == 0 {
		if err != nil {
			s.logger.Warn("template retrieval failed, using default structure", zap.Error(err))
		}
		return defaultTemplateStructure, false
	}

	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	return strings.Join(contents, "\n\n"), true
}
