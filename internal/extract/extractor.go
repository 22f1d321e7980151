package extract

import (
	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
)

type strategy struct {
	name string
	fn   func(content string, b band.Band) *Result
}

// Extractor pulls one band's row out of retrieved matrix text. Strategies
// run in order from the most structured layout to the loosest; the first
// non-nil result wins. A miss is a nil result, never an error.
type Extractor struct {
	structured []strategy
	fallback   strategy
	logger     *zap.Logger
}

func NewExtractor() *Extractor {
	return &Extractor{
		structured: []strategy{
			{"unlimited_leave", unlimitedLeave},
			{"travel_row", travelRow},
			{"travel_pipe_line", travelPipeLine},
			{"travel_tokens", travelTokens},
			{"travel_columns", travelColumns},
			{"travel_currency", travelCurrency},
			{"leave_numeric", leaveNumeric},
		},
		fallback: strategy{"line_echo", lineEcho},
		logger:   logger.GetLogger(),
	}
}

// ExtractFromContent runs the cascade against one chunk.
func (e *Extractor) ExtractFromContent(content string, b band.Band) *Result {
	if !b.Mentions(content) {
		return nil
	}
	if result := e.extractStructured(content, b); result != nil {
		return result
	}
	if !IsLeaveMatrix(content) && !IsTravelMatrix(content) {
		return nil
	}
	return e.runStrategy(e.fallback, content, b)
}

// ExtractBandRecord runs the cascade across retrieved chunks. Structured
// records from any chunk beat line echoes from an earlier one.
func (e *Extractor) ExtractBandRecord(results []retrieval.Result, b band.Band) *Result {
	for _, r := range results {
		if !b.Mentions(r.Content) {
			continue
		}
		if result := e.extractStructured(r.Content, b); result != nil {
			return result
		}
	}

	for _, r := range results {
		if !b.Mentions(r.Content) {
			continue
		}
		if !IsLeaveMatrix(r.Content) && !IsTravelMatrix(r.Content) {
			continue
		}
		if result := e.runStrategy(e.fallback, r.Content, b); result != nil {
			return result
		}
	}
	return nil
}

func (e *Extractor) extractStructured(content string, b band.Band) *Result {
	for _, s := range e.structured {
		if result := e.runStrategy(s, content, b); result != nil {
			return result
		}
	}
	return nil
}

func (e *Extractor) runStrategy(s strategy, content string, b band.Band) *Result {
	result := s.fn(content, b)
	if result == nil {
		return nil
	}
	e.logger.Debug("extraction strategy matched",
		zap.String("strategy", s.name), zap.String("band", string(b)))
	return result
}
