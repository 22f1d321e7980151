package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
)

// Boosts applied to band-specific results.
const (
	strongBandBoost = 0.4
	weakBandBoost   = 0.2

	contextThreshold = 0.3
)

var contextPhrases = []string{
	"%s employees",
	"%s band",
	"for %s",
	"%s level",
	"%s staff",
	"%s:",
	"level %s",
	"band %s",
}

var tableKeywords = []string{"matrix", "table", "entitlement", "policy summary"}

// ContextScore measures how strongly content talks about the given band
// rather than merely mentioning it. Phrase hits add 0.3, tabular keywords
// co-occurring with the band add 0.1, and content spread across more than
// two other bands is halved. Capped at 1.0.
func ContextScore(content string, b band.Band) float64 {
	lower := strings.ToLower(content)
	token := strings.ToLower(string(b))

	score := 0.0
	for _, phrase := range contextPhrases {
		if strings.Contains(lower, fmt.Sprintf(phrase, token)) {
			score += 0.3
		}
	}

	if strings.Contains(lower, token) {
		for _, keyword := range tableKeywords {
			if strings.Contains(lower, keyword) {
				score += 0.1
			}
		}
	}

	otherBands := 0
	for _, other := range band.Others(b) {
		if other.Mentions(content) {
			otherBands++
		}
	}
	if otherBands > 2 {
		score *= 0.5
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// RankForBand boosts results that mention the band, partitions them by
// priority, and re-sorts. Results with strong band context get +0.4 and
// high priority; weak mentions get +0.2 and medium; the rest stay low.
func RankForBand(results []Result, b band.Band) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)

	for i := range ranked {
		if !b.Mentions(ranked[i].Content) {
			ranked[i].Priority = PriorityLow
			ranked[i].BandSpecific = false
			continue
		}

		ranked[i].BandSpecific = true
		if ContextScore(ranked[i].Content, b) > contextThreshold {
			ranked[i].Similarity += strongBandBoost
			ranked[i].Priority = PriorityHigh
		} else {
			ranked[i].Similarity += weakBandBoost
			ranked[i].Priority = PriorityMedium
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].BandSpecific && !ranked[j].BandSpecific
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
