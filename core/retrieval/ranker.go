package retrieval

import (
	"math"
	"sort"
	"strings"

	"github.com/Camelus33/tedin-sub000/model"
)

// Weights of the ranking signals. Exact matches dominate, tag matches
// outrank frequency, and density is a tie breaker. Notes carry a flat
// bonus over book excerpts.
const (
	exactMatchWeight = 100.0
	tagMatchWeight   = 50.0
	frequencyWeight  = 25.0
	densityWeight    = 10.0
	noteBonus        = 5.0

	frequencySaturation = 5.0
	densityScale        = 20.0
)

// Rank scores every result for the concept and returns them sorted by
// score descending. The sort is stable, so equally scored results keep
// their query order and ranking stays deterministic.
func Rank(concept string, results []*model.GraphQueryResult) []*model.GraphQueryResult {
	for _, result := range results {
		result.RelevanceScore = Score(concept, result)
	}

	ranked := make([]*model.GraphQueryResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	return ranked
}

// Score computes the relevance score of a single result, rounded to two
// decimal places.
func Score(concept string, result *model.GraphQueryResult) float64 {
	score := exactMatchScore(concept, result)*exactMatchWeight +
		tagMatchScore(concept, result.Tags)*tagMatchWeight +
		frequencyScore(concept, result.Content)*frequencyWeight +
		densityScore(concept, result.Content)*densityWeight

	if result.Type == model.ResourceTypeNote {
		score += noteBonus
	}

	return math.Round(score*100) / 100
}

// exactMatchScore checks the concept against content, title and author,
// all case-insensitively. Content hits count full, title hits count
// extra, author hits count less. Capped at 1.
func exactMatchScore(concept string, result *model.GraphQueryResult) float64 {
	lowered := strings.ToLower(concept)

	var score float64
	if strings.Contains(strings.ToLower(result.Content), lowered) {
		score += 1.0
	}
	if result.Title != "" && strings.Contains(strings.ToLower(result.Title), lowered) {
		score += 1.5
	}
	if result.Author != "" && strings.Contains(strings.ToLower(result.Author), lowered) {
		score += 0.8
	}

	return math.Min(score, 1)
}

// tagMatchScore averages per-tag matches: a tag containing the concept
// counts full, an exact tag counts extra. Capped at 1.
func tagMatchScore(concept string, tags []string) float64 {
	if len(tags) == 0 {
		return 0
	}

	lowered := strings.ToLower(concept)

	var score float64
	for _, tag := range tags {
		loweredTag := strings.ToLower(tag)
		if strings.Contains(loweredTag, lowered) {
			score += 1.0
		}
		if loweredTag == lowered {
			score += 0.5
		}
	}

	return math.Min(score/float64(len(tags)), 1)
}

// frequencyScore counts concept occurrences in the content, saturating
// at five.
func frequencyScore(concept string, content string) float64 {
	occurrences := countOccurrences(concept, content)
	return math.Min(float64(occurrences)/frequencySaturation, 1)
}

// densityScore relates the text covered by concept occurrences to the
// content length, scaled up so short dense notes can reach the cap.
func densityScore(concept string, content string) float64 {
	contentLen := len([]rune(content))
	if contentLen == 0 {
		return 0
	}

	occurrences := countOccurrences(concept, content)
	covered := float64(occurrences * len([]rune(concept)))
	return math.Min(covered/float64(contentLen)*densityScale, 1)
}

// countOccurrences counts non-overlapping, case-insensitive occurrences
// of the concept.
func countOccurrences(concept string, content string) int {
	if concept == "" {
		return 0
	}
	return strings.Count(strings.ToLower(content), strings.ToLower(concept))
}
