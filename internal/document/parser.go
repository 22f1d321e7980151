package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// Category classifies a source document by the policy area it covers.
type Category string

const (
	CategoryHRPolicy      Category = "hr_policy"
	CategoryTravelPolicy  Category = "travel_policy"
	CategoryOfferTemplate Category = "offer_template"
	CategoryUnknown       Category = "unknown"
)

// DetectCategory derives the document category from the filename.
// Travel is checked before leave so "Travel Policy" files never land
// in the general HR bucket.
func DetectCategory(filename string) Category {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "travel"):
		return CategoryTravelPolicy
	case strings.Contains(name, "leave"), strings.Contains(name, "policy"):
		return CategoryHRPolicy
	case strings.Contains(name, "offer"):
		return CategoryOfferTemplate
	default:
		return CategoryUnknown
	}
}

// Metadata describes a parsed source document.
type Metadata struct {
	Filename  string
	PageCount int
	FileSize  int64
	Category  Category
}

// ParsedDocument is the full extracted text of one source document.
type ParsedDocument struct {
	Content  string
	Pages    []string
	Metadata Metadata
}

// Parser extracts page text from PDF documents.
type Parser struct {
	logger *zap.Logger
}

func NewParser() *Parser {
	return &Parser{logger: logger.GetLogger()}
}

// Parse reads and extracts a PDF document page by page. Pages that fail
// extraction are skipped so one bad page does not sink the document.
func (p *Parser) Parse(path string) (*ParsedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeDocumentNotFound, path).WithCause(err)
	}

	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeParseFailure,
			fmt.Sprintf("failed to read %s", path)).WithCause(err)
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(pdfBytes))
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeParseFailure,
			fmt.Sprintf("failed to open %s as PDF", path)).WithCause(err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeParseFailure,
			fmt.Sprintf("failed to read page count of %s", path)).WithCause(err)
	}

	var contentBuilder strings.Builder
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			p.logger.Warn("skipping unreadable page",
				zap.String("file", path), zap.Int("page", i), zap.Error(err))
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			p.logger.Warn("skipping page without extractor",
				zap.String("file", path), zap.Int("page", i), zap.Error(err))
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			p.logger.Warn("skipping page with failed text extraction",
				zap.String("file", path), zap.Int("page", i), zap.Error(err))
			continue
		}

		pages = append(pages, text)
		contentBuilder.WriteString(fmt.Sprintf("--- Page %d ---\n", i))
		contentBuilder.WriteString(text)
		contentBuilder.WriteString("\n")
	}

	doc := &ParsedDocument{
		Content: contentBuilder.String(),
		Pages:   pages,
		Metadata: Metadata{
			Filename:  filepath.Base(path),
			PageCount: numPages,
			FileSize:  info.Size(),
			Category:  DetectCategory(path),
		},
	}

	p.logger.Info("parsed document",
		zap.String("file", doc.Metadata.Filename),
		zap.Int("pages", numPages),
		zap.String("category", string(doc.Metadata.Category)))
	return doc, nil
}

// FormatTableForSearch serializes an extracted table into a redundant
// text layout that survives chunking and keyword search: a HEADERS line,
// one pipe-delimited ROW line per data row, and a ROW DETAILS restatement
// pairing every cell with its header.
func FormatTableForSearch(table [][]string) string {
	if len(table) == 0 {
		return ""
	}

	headers := table[0]
	var b strings.Builder

	b.WriteString("HEADERS: ")
	b.WriteString(strings.Join(headers, " | "))
	b.WriteString("\n")

	for i, row := range table[1:] {
		b.WriteString(fmt.Sprintf("ROW %d: ", i+1))
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")

		b.WriteString(fmt.Sprintf("ROW %d DETAILS: ", i+1))
		details := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) {
				details = append(details, fmt.Sprintf("%s |%s|", strings.ToUpper(headers[j]), cell))
			} else {
				details = append(details, fmt.Sprintf("|%s|", cell))
			}
		}
		b.WriteString(strings.Join(details, " "))
		b.WriteString("\n")
	}

	return b.String()
}

// WrapTable frames a serialized table with page-scoped markers so the
// chunker can keep the whole block intact.
func WrapTable(index, page int, table [][]string) string {
	return fmt.Sprintf("=== TABLE %d ON PAGE %d ===\n%s=== END TABLE ===\n",
		index, page, FormatTableForSearch(table))
}
