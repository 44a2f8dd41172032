package pipeline

import (
	"regexp"
	"strings"

	"github.com/Camelus33/tedin-sub000/graphdb"
	"github.com/Camelus33/tedin-sub000/model"
)

const (
	properNounConfidence = 0.7
	hangulNounConfidence = 0.65
)

var (
	// Sequences of capitalized words (proper nouns, named concepts).
	properNounPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]*(?:\s+[A-Z][A-Za-z0-9]*)*\b`)
	// Runs of Hangul syllables, two or more characters.
	hangulNounPattern = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]{2,}`)
)

// Particles stripped from the tail of a Hangul token to recover the noun.
// Longer particles are checked first.
var hangulParticles = []string{
	"에서는", "에서", "으로는", "으로", "까지", "부터", "에게",
	"은", "는", "이", "가", "을", "를", "에", "로", "와", "과", "의", "도", "만",
}

// extractEntitiesRuleBased recognizes proper nouns and Hangul noun phrases
// in text. Each entity receives a stable synthetic URI derived from its
// surface form.
func extractEntitiesRuleBased(text string) []model.Entity {
	var entities []model.Entity
	seen := make(map[string]bool)

	for _, match := range properNounPattern.FindAllStringIndex(text, -1) {
		surface := strings.TrimSpace(text[match[0]:match[1]])
		if surface == "" || seen[surface] {
			continue
		}
		seen[surface] = true
		entities = append(entities, model.Entity{
			Text:       surface,
			Label:      "PROPER",
			StartIndex: match[0],
			EndIndex:   match[1],
			Confidence: properNounConfidence,
			URI:        ConceptURI(surface),
		})
	}

	for _, match := range hangulNounPattern.FindAllStringIndex(text, -1) {
		surface := stripParticle(text[match[0]:match[1]])
		if len([]rune(surface)) < 2 || seen[surface] {
			continue
		}
		seen[surface] = true
		entities = append(entities, model.Entity{
			Text:       surface,
			Label:      "CONCEPT",
			StartIndex: match[0],
			EndIndex:   match[1],
			Confidence: hangulNounConfidence,
			URI:        ConceptURI(surface),
		})
	}

	return entities
}

// stripParticle removes one trailing case/topic particle from a Hangul
// token. The bare token is returned when no particle matches or stripping
// would leave less than two characters.
func stripParticle(token string) string {
	for _, particle := range hangulParticles {
		if strings.HasSuffix(token, particle) {
			stripped := strings.TrimSuffix(token, particle)
			if len([]rune(stripped)) >= 2 {
				return stripped
			}
		}
	}
	return token
}

// ConceptURI derives the stable synthetic URI for a surface form. The same
// surface always maps to the same URI.
func ConceptURI(surface string) string {
	return "concept:" + graphdb.SanitizeLocalName(strings.TrimSpace(surface))
}

// entityForText returns the recognized entity matching the surface form, or
// a synthetic low-confidence entity when recognition missed it.
func entityForText(surface string, entities []model.Entity) model.Entity {
	trimmed := strings.TrimSpace(surface)
	for _, entity := range entities {
		if entity.Text == trimmed {
			return entity
		}
	}
	return model.Entity{
		Text:       trimmed,
		Label:      "CONCEPT",
		Confidence: 0.5,
		URI:        ConceptURI(trimmed),
	}
}
