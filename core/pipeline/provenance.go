package pipeline

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Camelus33/tedin-sub000/model"
)

// URI prefixes stripped before tracing a term back to the user's memos.
var knownURIPrefixes = []string{"concept:", "h33:", "rdf:", "rdfs:", "schema:", "owl:"}

// Enricher classifies candidate triples by provenance against the user's
// own material.
type Enricher struct {
	log *slog.Logger
}

// NewEnricher creates a provenance enricher.
func NewEnricher(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{log: logger}
}

// Enrich classifies each triple's source type and evolution stage by
// checking whether its subject and object are traceable to the user's
// notes. Confidence is never decreased and never pushed above the caps.
// The returned list is sorted by confidence descending.
func (e *Enricher) Enrich(triples []*model.Triple, bundle *model.ContextBundle) []*model.Triple {
	var notes []model.RelevantNote
	if bundle != nil {
		notes = bundle.RelevantNotes
	}

	for _, triple := range triples {
		subjectIdx, subjectFound := findInMemos(CleanTerm(triple.Subject), notes)
		_, objectFound := findInMemos(CleanTerm(triple.Object), notes)

		switch {
		case subjectFound && objectFound:
			triple.SourceType = model.SourceTypeUserOrganic
			triple.DerivedFromUser = true
			triple.Confidence = boost(triple.Confidence, model.ConfidenceBoostBothFound, model.ConfidenceCapBothFound)
			if triple.ExtractionMethod == model.ExtractionMethodAnalysis {
				triple.EvolutionStage = model.EvolutionStageSynthesized
			} else {
				triple.EvolutionStage = model.EvolutionStageConnected
			}
			triple.OriginalMemoID = strconv.Itoa(subjectIdx)

		case subjectFound:
			triple.SourceType = model.SourceTypeAIAssisted
			triple.DerivedFromUser = true
			triple.Confidence = boost(triple.Confidence, model.ConfidenceBoostSubjectFound, model.ConfidenceCapOneFound)
			triple.EvolutionStage = model.EvolutionStageGapFilled

		case objectFound:
			triple.SourceType = model.SourceTypeAIAssisted
			triple.DerivedFromUser = true
			triple.Confidence = boost(triple.Confidence, model.ConfidenceBoostObjectFound, model.ConfidenceCapOneFound)
			triple.EvolutionStage = model.EvolutionStageGapFilled

		default:
			// Neither found: provenance defaults stand.
		}
	}

	sorted := make([]*model.Triple, len(triples))
	copy(sorted, triples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	return sorted
}

// boost raises confidence by delta up to limit without ever lowering it.
func boost(confidence, delta, limit float64) float64 {
	boosted := confidence + delta
	if boosted > limit {
		boosted = limit
	}
	if boosted < confidence {
		return confidence
	}
	return boosted
}

// CleanTerm normalizes a subject or object for memo matching: known URI
// prefixes are stripped, underscores become spaces, and the result is
// case-folded.
func CleanTerm(value string) string {
	term := strings.TrimSpace(value)

	if strings.HasPrefix(term, "<") && strings.HasSuffix(term, ">") {
		term = strings.TrimSuffix(strings.TrimPrefix(term, "<"), ">")
	}
	if strings.HasPrefix(term, "http://") || strings.HasPrefix(term, "https://") {
		if idx := strings.LastIndexAny(term, "/#"); idx >= 0 {
			term = term[idx+1:]
		}
	}
	for _, prefix := range knownURIPrefixes {
		if strings.HasPrefix(term, prefix) {
			term = strings.TrimPrefix(term, prefix)
			break
		}
	}

	term = strings.ReplaceAll(term, "_", " ")
	term = strings.Join(strings.Fields(term), " ")
	return strings.ToLower(term)
}

// findInMemos returns the index of the first memo the cleaned term is
// traceable to. A term is traceable when it is a substring of the memo
// content, or, as a word-level fallback, when every token of the term
// partially matches some token of the memo (substring either direction).
func findInMemos(term string, notes []model.RelevantNote) (int, bool) {
	if term == "" {
		return 0, false
	}

	for i, note := range notes {
		if foundInMemo(term, note.Content) {
			return i, true
		}
	}
	return 0, false
}

func foundInMemo(term string, content string) bool {
	lowered := strings.ToLower(content)
	if strings.Contains(lowered, term) {
		return true
	}

	memoTokens := strings.Fields(lowered)
	if len(memoTokens) == 0 {
		return false
	}

	for _, termToken := range strings.Fields(term) {
		matched := false
		for _, memoToken := range memoTokens {
			if strings.Contains(memoToken, termToken) || strings.Contains(termToken, memoToken) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
