package model

import (
	"fmt"
	"sort"
	"time"
)

// SourceType classifies where a fact originated: the user's own writing or
// the language model.
type SourceType string

const (
	SourceTypeUserOrganic SourceType = "user_organic"
	SourceTypeAIAssisted  SourceType = "ai_assisted"
)

// EvolutionStage describes how a fact relates to the user's prior knowledge.
type EvolutionStage string

const (
	EvolutionStageInitial     EvolutionStage = "initial"
	EvolutionStageConnected   EvolutionStage = "connected"
	EvolutionStageSynthesized EvolutionStage = "synthesized"
	EvolutionStageGapFilled   EvolutionStage = "gap_filled"
)

// ExtractionMethod records which layer produced a triple.
type ExtractionMethod string

const (
	ExtractionMethodAnalysis ExtractionMethod = "analysis"
	ExtractionMethodPattern  ExtractionMethod = "pattern"
	ExtractionMethodParser   ExtractionMethod = "parser"
)

// Confidence boosts and caps applied during provenance enrichment. These
// values are empirically tuned; downstream behavior depends on the exact
// numbers, so they are fixed constants rather than derived.
const (
	ConfidenceBoostBothFound    = 0.20
	ConfidenceBoostSubjectFound = 0.15
	ConfidenceBoostObjectFound  = 0.10
	ConfidenceCapBothFound      = 0.95
	ConfidenceCapOneFound       = 0.85
)

// Triple represents a new knowledge triple extracted from a model response,
// carrying its provenance classification.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`

	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`

	SourceType       SourceType       `json:"source_type"`
	DerivedFromUser  bool             `json:"derived_from_user"`
	OriginalMemoID   string           `json:"original_memo_id,omitempty"`
	EvolutionStage   EvolutionStage   `json:"evolution_stage"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`
	TemporalContext  time.Time        `json:"temporal_context"`
}

// NewTriple creates a triple with provenance defaults (ai_assisted, initial,
// not derived from user material).
func NewTriple(subject, predicate, object string, confidence float64, source string) *Triple {
	return &Triple{
		Subject:         subject,
		Predicate:       predicate,
		Object:          object,
		Confidence:      confidence,
		Source:          source,
		SourceType:      SourceTypeAIAssisted,
		DerivedFromUser: false,
		EvolutionStage:  EvolutionStageInitial,
		TemporalContext: time.Now().UTC(),
	}
}

// Key returns the identity of the triple for deduplication purposes. Two
// triples with the same exact subject, predicate and object strings are
// considered the same statement.
func (t *Triple) Key() string {
	return t.Subject + "\x1f" + t.Predicate + "\x1f" + t.Object
}

// Validate checks that the triple has non-empty subject, predicate and object.
func (t *Triple) Validate() error {
	if t.Subject == "" {
		return fmt.Errorf("triple subject is empty")
	}
	if t.Predicate == "" {
		return fmt.Errorf("triple predicate is empty")
	}
	if t.Object == "" {
		return fmt.Errorf("triple object is empty")
	}
	return nil
}

// MergeTriples merges any number of triple lists, deduplicating by exact
// (subject, predicate, object) identity. On collision the highest-confidence
// instance wins. The merged list is sorted by confidence descending; equal
// confidences keep their first-seen order.
func MergeTriples(lists ...[]*Triple) []*Triple {
	byKey := make(map[string]*Triple)
	var order []string

	for _, list := range lists {
		for _, triple := range list {
			if triple == nil {
				continue
			}
			key := triple.Key()
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = triple
				order = append(order, key)
				continue
			}
			if triple.Confidence > existing.Confidence {
				byKey[key] = triple
			}
		}
	}

	merged := make([]*Triple, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return merged
}
