package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
)

func TestContextScorePhrasesAndKeywords(t *testing.T) {
	content := "Policy matrix entitlement for L3 employees"
	// Two phrase hits ("for l3", "l3 employees") and two tabular
	// keywords ("matrix", "entitlement") with the band present.
	score := ContextScore(content, band.L3)
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestContextScoreNoBandContext(t *testing.T) {
	assert.Equal(t, 0.0, ContextScore("general onboarding information", band.L2))
	// Bare mention without any phrase or keyword scores zero.
	assert.Equal(t, 0.0, ContextScore("mentions L2 in passing", band.L2))
}

func TestContextScoreMultiBandPenalty(t *testing.T) {
	focused := ContextScore("the L3 band policy", band.L3)
	diluted := ContextScore("the L3 band policy compared against L1 L2 L4 rows", band.L3)

	assert.InDelta(t, 0.3, focused, 1e-9)
	assert.InDelta(t, 0.15, diluted, 1e-9)
	assert.LessOrEqual(t, diluted, focused/2+1e-9)
}

func TestContextScoreClamp(t *testing.T) {
	content := "L3 employees L3 band for L3 L3 level L3 staff L3: level L3 band L3 matrix table entitlement policy summary"
	assert.Equal(t, 1.0, ContextScore(content, band.L3))
}

func TestRankForBandBoosts(t *testing.T) {
	results := []Result{
		{Content: "no band mention at all", Similarity: 0.5, Priority: PriorityLow},
		{Content: "mentions L3 once in passing", Similarity: 0.5, Priority: PriorityLow},
		{Content: "entitlement matrix for L3 employees", Similarity: 0.5, Priority: PriorityLow},
	}

	ranked := RankForBand(results, band.L3)
	require.Len(t, ranked, 3)

	assert.Equal(t, "entitlement matrix for L3 employees", ranked[0].Content)
	assert.InDelta(t, 0.9, ranked[0].Similarity, 1e-9)
	assert.Equal(t, PriorityHigh, ranked[0].Priority)
	assert.True(t, ranked[0].BandSpecific)

	assert.Equal(t, "mentions L3 once in passing", ranked[1].Content)
	assert.InDelta(t, 0.7, ranked[1].Similarity, 1e-9)
	assert.Equal(t, PriorityMedium, ranked[1].Priority)
	assert.True(t, ranked[1].BandSpecific)

	assert.Equal(t, "no band mention at all", ranked[2].Content)
	assert.InDelta(t, 0.5, ranked[2].Similarity, 1e-9)
	assert.Equal(t, PriorityLow, ranked[2].Priority)
	assert.False(t, ranked[2].BandSpecific)

	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankForBandDoesNotMutateInput(t *testing.T) {
	results := []Result{
		{Content: "entitlement matrix for L3 employees", Similarity: 0.5},
		{Content: "no mention", Similarity: 0.9},
	}

	_ = RankForBand(results, band.L3)

	assert.Equal(t, 0.5, results[0].Similarity)
	assert.Equal(t, "", results[0].Priority)
	assert.False(t, results[0].BandSpecific)
}

func TestRankForBandTiebreak(t *testing.T) {
	// Equal boosted similarity: the band-specific result wins the tie.
	results := []Result{
		{Content: "general policy text", Similarity: 0.7},
		{Content: "mentions L2 in passing", Similarity: 0.5},
	}

	ranked := RankForBand(results, band.L2)
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].BandSpecific)
	assert.Equal(t, "mentions L2 in passing", ranked[0].Content)
}
