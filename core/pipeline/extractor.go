// Package pipeline implements the triple extraction pipeline: entity
// recognition, dependency extraction, semantic role assignment and relation
// synthesis, with a pattern-matching fallback layer, plus the provenance
// enricher that classifies extracted triples against the user's memos.
package pipeline

import (
	"log/slog"

	"github.com/Camelus33/tedin-sub000/model"
)

// Caps for the dependency bonus in the aggregate confidence.
const (
	dependencyBonusPerRelation = 0.05
	dependencyBonusCap         = 0.2
)

// Extractor runs the extraction pipeline over free text.
type Extractor struct {
	analyzer *Analyzer
	source   string
	log      *slog.Logger
}

// NewExtractor creates an extractor. source identifies the model whose
// answers are analyzed and is stamped onto every produced triple.
func NewExtractor(source string, analyzer *Analyzer, logger *slog.Logger) *Extractor {
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		analyzer: analyzer,
		source:   source,
		log:      logger,
	}
}

// Embedder returns the analyzer's embedding function, or nil when only the
// rule-based stages are configured.
func (e *Extractor) Embedder() EmbedFunc {
	return e.analyzer.Embedder
}

// Analyze runs the four analysis stages over the text and aggregates an
// overall confidence.
func (e *Extractor) Analyze(text string) *model.NLPAnalysis {
	entities := e.extractEntities(text)
	dependencies := extractDependencies(text)
	roles := assignSemanticRoles(text, dependencies)
	relationships := synthesizeRelationships(entities, dependencies, roles)

	analysis := &model.NLPAnalysis{
		Entities:      entities,
		Dependencies:  dependencies,
		SemanticRoles: roles,
		Relationships: relationships,
	}
	analysis.Confidence = aggregateConfidence(analysis)

	return analysis
}

// extractEntities prefers the model-backed extractor when one is
// configured, falling back to the rule-based recognizer on error.
func (e *Extractor) extractEntities(text string) []model.Entity {
	if e.analyzer.EntityExtractor != nil {
		entities, err := e.analyzer.EntityExtractor(text)
		if err == nil {
			return entities
		}
		e.log.Warn("Model-backed entity extraction failed, using rule-based recognizer",
			slog.String("error", err.Error()))
	}
	return extractEntitiesRuleBased(text)
}

// aggregateConfidence combines the average entity and relationship
// confidences with a bounded bonus per extracted dependency. Empty input
// yields zero.
func aggregateConfidence(analysis *model.NLPAnalysis) float64 {
	if len(analysis.Entities) == 0 && len(analysis.Relationships) == 0 {
		return 0
	}

	var entityAvg float64
	for _, entity := range analysis.Entities {
		entityAvg += entity.Confidence
	}
	if len(analysis.Entities) > 0 {
		entityAvg /= float64(len(analysis.Entities))
	}

	var relationshipAvg float64
	for _, relationship := range analysis.Relationships {
		relationshipAvg += relationship.Confidence
	}
	if len(analysis.Relationships) > 0 {
		relationshipAvg /= float64(len(analysis.Relationships))
	}

	bonus := dependencyBonusPerRelation * float64(len(analysis.Dependencies))
	if bonus > dependencyBonusCap {
		bonus = dependencyBonusCap
	}

	confidence := (entityAvg+relationshipAvg)/2 + bonus
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// ExtractTriples extracts candidate triples from text. The structured
// pipeline result wins when it produces anything usable; otherwise the
// pattern fallback layer fills in.
func (e *Extractor) ExtractTriples(text string) []*model.Triple {
	analysis := e.Analyze(text)

	var structured []*model.Triple
	for _, relationship := range analysis.Relationships {
		triple := model.NewTriple(
			relationship.Subject.URI,
			relationship.Predicate,
			relationship.Object.URI,
			relationship.Confidence,
			e.source,
		)
		triple.ExtractionMethod = model.ExtractionMethodAnalysis
		structured = append(structured, triple)
	}

	if len(structured) > 0 {
		return model.MergeTriples(structured)
	}

	return model.MergeTriples(extractWithPatterns(text, e.source))
}
