package pipeline

import (
	"strings"

	"github.com/Camelus33/tedin-sub000/model"
)

// Dependency relations produced by the rule-based stage.
const (
	relationSubject  = "subject"
	relationObject   = "object"
	relationTopic    = "topic"
	relationLocation = "location"
	relationManner   = "manner"
)

const (
	particleDependencyConfidence = 0.7
	orderDependencyConfidence    = 0.6
)

// English verbs the word-order heuristic is allowed to treat as predicates.
// Copula constructions are intentionally absent; those are covered by the
// pattern fallback layer.
var englishVerbs = map[string]bool{
	"includes": true, "contains": true, "causes": true, "uses": true,
	"creates": true, "produces": true, "requires": true, "enables": true,
	"supports": true, "improves": true,
}

// extractDependencies derives grammatical relations per sentence. Korean
// sentences are analyzed through their case and topic particles; English
// sentences through word order around a known verb.
func extractDependencies(text string) []model.Dependency {
	var dependencies []model.Dependency

	for _, sentence := range splitSentences(text) {
		tokens := strings.Fields(strings.TrimRight(sentence, ".!?"))
		if len(tokens) < 2 {
			continue
		}

		if containsHangul(sentence) {
			dependencies = append(dependencies, hangulDependencies(tokens)...)
		} else {
			dependencies = append(dependencies, englishDependencies(tokens)...)
		}
	}

	return dependencies
}

// hangulDependencies reads the final token as the predicate and attaches
// every particle-marked token to it.
func hangulDependencies(tokens []string) []model.Dependency {
	predicate := tokens[len(tokens)-1]
	var dependencies []model.Dependency

	for _, token := range tokens[:len(tokens)-1] {
		relation := particleRelation(token)
		if relation == "" {
			continue
		}
		dependencies = append(dependencies, model.Dependency{
			Head:       predicate,
			Dependent:  stripParticle(token),
			Relation:   relation,
			Confidence: particleDependencyConfidence,
		})
	}

	return dependencies
}

func particleRelation(token string) string {
	switch {
	case strings.HasSuffix(token, "은"), strings.HasSuffix(token, "는"):
		return relationTopic
	case strings.HasSuffix(token, "이"), strings.HasSuffix(token, "가"):
		return relationSubject
	case strings.HasSuffix(token, "을"), strings.HasSuffix(token, "를"):
		return relationObject
	case strings.HasSuffix(token, "에서"), strings.HasSuffix(token, "에"):
		return relationLocation
	case strings.HasSuffix(token, "으로"), strings.HasSuffix(token, "로"):
		return relationManner
	}
	return ""
}

// englishDependencies finds the first known verb and reads the tokens
// before it as the subject phrase and the tokens after it as the object
// phrase.
func englishDependencies(tokens []string) []model.Dependency {
	verbIndex := -1
	for i, token := range tokens {
		if englishVerbs[strings.ToLower(token)] {
			verbIndex = i
			break
		}
	}
	if verbIndex <= 0 || verbIndex >= len(tokens)-1 {
		return nil
	}

	predicate := strings.ToLower(tokens[verbIndex])
	subject := strings.Join(tokens[:verbIndex], " ")
	object := strings.Join(tokens[verbIndex+1:], " ")

	return []model.Dependency{
		{Head: predicate, Dependent: subject, Relation: relationSubject, Confidence: orderDependencyConfidence},
		{Head: predicate, Dependent: object, Relation: relationObject, Confidence: orderDependencyConfidence},
	}
}

func containsHangul(text string) bool {
	for _, r := range text {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}
