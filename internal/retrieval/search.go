package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// Result caps per search mode.
const (
	singleBandCap = 12
	multiBandCap  = 15
	seniorCap     = 10
	generalCap    = 10
)

// PolicySearcher runs band-aware policy searches by fanning one user
// query out into multiple index queries and merging the deduplicated
// results.
type PolicySearcher struct {
	retriever *Retriever
	logger    *zap.Logger
}

func NewPolicySearcher(retriever *Retriever) *PolicySearcher {
	return &PolicySearcher{
		retriever: retriever,
		logger:    logger.GetLogger(),
	}
}

// BandSearch retrieves a wider candidate set, re-ranks it for the band,
// and keeps the top topK.
func (s *PolicySearcher) BandSearch(ctx context.Context, query string, b band.Band, topK int, categories []string, minSimilarity float64) ([]Result, error) {
	results, err := s.retriever.Search(ctx, query, topK*2, categories, minSimilarity)
	if err != nil {
		return nil, err
	}
	ranked := RankForBand(results, b)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// SearchPolicies dispatches on the bands mentioned in the query:
// several bands, one band, senior-level wording, or none.
func (s *PolicySearcher) SearchPolicies(ctx context.Context, query string, categories []string) ([]Result, error) {
	bands := band.ParseQuery(query)
	switch {
	case len(bands) > 1:
		return s.searchMultipleBands(ctx, query, bands, categories)
	case len(bands) == 1:
		return s.searchSpecificBand(ctx, query, bands[0], categories)
	case band.IsSeniorQuery(query):
		return s.searchSeniorPolicies(ctx, query, categories)
	default:
		return s.searchGeneralPolicies(ctx, query, categories)
	}
}

func (s *PolicySearcher) searchSpecificBand(ctx context.Context, query string, b band.Band, categories []string) ([]Result, error) {
	queryLower := strings.ToLower(query)

	primaryQueries := []string{
		fmt.Sprintf("%s band policy entitlement leave travel WFH", b),
		fmt.Sprintf("%s salary band matrix table information", b),
		query,
	}
	if strings.Contains(queryLower, "leave") {
		primaryQueries = append(primaryQueries,
			fmt.Sprintf("%s leave entitlement earned sick casual days", b),
			fmt.Sprintf("%s leave policy WFH eligibility", b),
			fmt.Sprintf("band %s leave matrix table", b),
		)
	}
	if strings.Contains(queryLower, "travel") {
		primaryQueries = append(primaryQueries,
			fmt.Sprintf("%s travel allowance per diem hotel flight", b),
			fmt.Sprintf("%s travel policy approval domestic international", b),
			fmt.Sprintf("band %s travel matrix allowances", b),
		)
	}

	seen := make(map[string]bool)
	var primary []Result
	for _, searchQuery := range primaryQueries {
		results, err := s.BandSearch(ctx, searchQuery, b, 8, categories, 0.1)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			if b.Mentions(result.Content) {
				result.Similarity += 0.3
				result.BandSpecific = true
			} else {
				result.BandSpecific = false
			}
			primary = append(primary, result)
		}
	}

	// Matrix chunks often score low against band-phrased queries, so a
	// damped context pass keeps them available for extraction.
	contextQueries := []string{
		"leave entitlement matrix band earned sick casual",
		"travel allowance per diem matrix bands",
		"WFH eligibility days per week bands",
	}
	var contextual []Result
	for _, searchQuery := range contextQueries {
		results, err := s.retriever.Search(ctx, searchQuery, 3, categories, 0.05)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Similarity = result.Similarity - 0.2
			if result.Similarity < 0.2 {
				result.Similarity = 0.2
			}
			result.BandSpecific = false
			contextual = append(contextual, result)
		}
	}

	all := append(primary, contextual...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].BandSpecific != all[j].BandSpecific {
			return all[i].BandSpecific
		}
		return all[i].Similarity > all[j].Similarity
	})

	final := filterBandContent(all, b)
	if len(final) > singleBandCap {
		final = final[:singleBandCap]
	}
	for i := range final {
		final[i].Rank = i + 1
	}

	s.logger.Info("band-specific search complete",
		zap.String("band", string(b)), zap.Int("results", len(final)))
	return final, nil
}

func (s *PolicySearcher) searchMultipleBands(ctx context.Context, query string, bands []band.Band, categories []string) ([]Result, error) {
	seen := make(map[string]bool)
	var all []Result

	for _, b := range bands {
		bandResults, err := s.searchSpecificBand(ctx, query, b, categories)
		if err != nil {
			return nil, err
		}
		for _, result := range bandResults {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			result.RelevantBands = []band.Band{b}
			if b.Mentions(result.Content) {
				result.BandSpecific = true
				result.Priority = PriorityHigh
			}
			all = append(all, result)
		}
	}

	bandTokens := make([]string, len(bands))
	for i, b := range bands {
		bandTokens[i] = string(b)
	}
	joined := strings.Join(bandTokens, " ")

	combinedQueries := []string{
		fmt.Sprintf("%s comparison matrix table policy", joined),
		fmt.Sprintf("band %s entitlement leave travel", joined),
		fmt.Sprintf("policy matrix %s bands", joined),
		query,
	}
	for _, searchQuery := range combinedQueries {
		results, err := s.retriever.Search(ctx, searchQuery, 5, categories, 0.1)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true

			var mentioned []band.Band
			for _, b := range bands {
				if b.Mentions(result.Content) {
					mentioned = append(mentioned, b)
				}
			}
			if len(mentioned) > 0 {
				result.RelevantBands = mentioned
				result.BandSpecific = true
			} else {
				result.RelevantBands = bands
				result.BandSpecific = false
			}
			if len(mentioned) > 1 {
				result.Priority = PriorityHigh
			} else {
				result.Priority = PriorityMedium
			}
			all = append(all, result)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if len(all[i].RelevantBands) != len(all[j].RelevantBands) {
			return len(all[i].RelevantBands) > len(all[j].RelevantBands)
		}
		if all[i].BandSpecific != all[j].BandSpecific {
			return all[i].BandSpecific
		}
		return all[i].Similarity > all[j].Similarity
	})

	if len(all) > multiBandCap {
		all = all[:multiBandCap]
	}
	for i := range all {
		all[i].Rank = i + 1
	}

	s.logger.Info("multi-band search complete",
		zap.Strings("bands", bandTokens), zap.Int("results", len(all)))
	return all, nil
}

func (s *PolicySearcher) searchSeniorPolicies(ctx context.Context, query string, categories []string) ([]Result, error) {
	queryLower := strings.ToLower(query)

	searchQueries := []string{
		"L3 L4 L5 senior executive lead policy",
		"senior staff policies entitlements",
		query,
	}
	if strings.Contains(queryLower, "leave") {
		searchQueries = append(searchQueries,
			"L3 L4 L5 leave policy entitlement",
			"senior leave entitlement full WFH",
			"executive leave policy unlimited",
		)
	}
	if strings.Contains(queryLower, "travel") {
		searchQueries = append(searchQueries,
			"L3 L4 L5 travel allowance senior",
			"senior travel policy executive allowance",
			"lead travel entitlement approval",
		)
	}

	seniorTerms := []string{"L3", "L4", "L5", "SENIOR", "EXECUTIVE"}
	seen := make(map[string]bool)
	var all []Result
	for _, searchQuery := range searchQueries {
		results, err := s.retriever.Search(ctx, searchQuery, 5, categories, 0.05)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			upper := strings.ToUpper(result.Content)
			for _, term := range seniorTerms {
				if strings.Contains(upper, term) {
					result.Similarity += 0.2
					break
				}
			}
			all = append(all, result)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Similarity > all[j].Similarity
	})
	if len(all) > seniorCap {
		all = all[:seniorCap]
	}
	for i := range all {
		all[i].Rank = i + 1
	}
	return all, nil
}

func (s *PolicySearcher) searchGeneralPolicies(ctx context.Context, query string, categories []string) ([]Result, error) {
	queryLower := strings.ToLower(query)

	searchQueries := []string{query}
	if strings.Contains(queryLower, "leave") {
		searchQueries = append(searchQueries,
			"leave entitlement matrix band earned sick casual",
			"leave policy days allocation band-wise",
			"WFH eligibility days per week bands",
		)
	}
	if strings.Contains(queryLower, "travel") {
		searchQueries = append(searchQueries,
			"travel allowance per diem hotel flight band matrix",
			"travel policy domestic international bands",
			"travel approval required manager VP bands",
		)
	}

	seen := make(map[string]bool)
	var all []Result
	for _, searchQuery := range searchQueries {
		results, err := s.retriever.Search(ctx, searchQuery, 5, categories, 0.05)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			key := Fingerprint(result.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, result)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Similarity > all[j].Similarity
	})
	if len(all) > generalCap {
		all = all[:generalCap]
	}
	for i := range all {
		all[i].Rank = i + 1
	}
	return all, nil
}

// filterBandContent keeps every band-focused result and at most six
// general ones, so context never crowds out the band's own rows.
func filterBandContent(results []Result, b band.Band) []Result {
	var bandFocused, general []Result
	for _, result := range results {
		if b.Mentions(result.Content) {
			// One focus-phrase hit scores exactly the threshold and still
			// counts as band-focused.
			if ContextScore(result.Content, b) >= contextThreshold {
				result.Priority = PriorityHigh
				bandFocused = append(bandFocused, result)
				continue
			}
			result.Priority = PriorityMedium
		} else {
			result.Priority = PriorityLow
		}
		general = append(general, result)
	}

	if len(general) > 6 {
		general = general[:6]
	}
	return append(bandFocused, general...)
}
