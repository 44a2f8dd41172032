package pipeline

import (
	"testing"

	"github.com/Camelus33/tedin-sub000/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundleWithNotes(contents ...string) *model.ContextBundle {
	notes := make([]model.RelevantNote, 0, len(contents))
	for _, content := range contents {
		notes = append(notes, model.RelevantNote{Content: content})
	}
	return &model.ContextBundle{RelevantNotes: notes}
}

func TestCleanTerm(t *testing.T) {
	t.Run("Known URI prefixes are stripped", func(t *testing.T) {
		assert.Equal(t, "tensorflow", CleanTerm("concept:TensorFlow"))
		assert.Equal(t, "note", CleanTerm("h33:Note"))
		assert.Equal(t, "type", CleanTerm("rdf:type"))
	})

	t.Run("Full URIs reduce to their local name", func(t *testing.T) {
		assert.Equal(t, "machine learning", CleanTerm("<http://example.org/Machine_Learning>"))
		assert.Equal(t, "deep learning", CleanTerm("https://example.org/ns#Deep_Learning"))
	})

	t.Run("Underscores and whitespace normalize", func(t *testing.T) {
		assert.Equal(t, "hello world", CleanTerm("  Hello_ World "))
	})

	t.Run("Plain terms just case-fold", func(t *testing.T) {
		assert.Equal(t, "인공지능", CleanTerm("인공지능"))
		assert.Equal(t, "graphdb", CleanTerm("GraphDB"))
	})
}

func TestFoundInMemo(t *testing.T) {
	t.Run("Direct substring match", func(t *testing.T) {
		assert.True(t, foundInMemo("tensorflow", "I use TensorFlow daily."))
	})

	t.Run("Word-level fallback matches token by token", func(t *testing.T) {
		assert.True(t, foundInMemo("machine learning", "machine-learning rocks"))
	})

	t.Run("One unmatched token fails the whole term", func(t *testing.T) {
		assert.False(t, foundInMemo("machine learning", "machines are loud"))
	})

	t.Run("Empty memo never matches", func(t *testing.T) {
		assert.False(t, foundInMemo("anything", ""))
	})
}

func TestEnrich(t *testing.T) {
	t.Run("Both terms in a note make the fact user organic", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:TensorFlow", "rdfs:subClassOf", "concept:Library", 0.6, "m")
		triple.ExtractionMethod = model.ExtractionMethodPattern

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("I use TensorFlow as my main library."))

		require.Len(t, enriched, 1)
		result := enriched[0]
		assert.Equal(t, model.SourceTypeUserOrganic, result.SourceType)
		assert.True(t, result.DerivedFromUser)
		assert.InDelta(t, 0.8, result.Confidence, 1e-9)
		assert.Equal(t, model.EvolutionStageConnected, result.EvolutionStage)
		assert.Equal(t, "0", result.OriginalMemoID)
	})

	t.Run("Analysis-extracted facts are synthesized rather than connected", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:TensorFlow", "rdfs:subClassOf", "concept:Library", 0.6, "m")
		triple.ExtractionMethod = model.ExtractionMethodAnalysis

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("I use TensorFlow as my main library."))

		assert.Equal(t, model.EvolutionStageSynthesized, enriched[0].EvolutionStage)
	})

	t.Run("Memo id points at the note containing the subject", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:TensorFlow", "rdfs:subClassOf", "concept:Library", 0.6, "m")

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("Unrelated note about libraries.", "TensorFlow notes."))

		assert.Equal(t, "1", enriched[0].OriginalMemoID)
	})

	t.Run("Subject only fills a gap", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:TensorFlow", "concept:uses", "concept:XLA", 0.6, "m")

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("TensorFlow is great."))

		result := enriched[0]
		assert.Equal(t, model.SourceTypeAIAssisted, result.SourceType)
		assert.True(t, result.DerivedFromUser)
		assert.InDelta(t, 0.75, result.Confidence, 1e-9)
		assert.Equal(t, model.EvolutionStageGapFilled, result.EvolutionStage)
		assert.Empty(t, result.OriginalMemoID)
	})

	t.Run("Object only gets the smaller boost", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:XLA", "concept:supports", "concept:TensorFlow", 0.6, "m")

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("TensorFlow is great."))

		assert.InDelta(t, 0.7, enriched[0].Confidence, 1e-9)
		assert.Equal(t, model.EvolutionStageGapFilled, enriched[0].EvolutionStage)
	})

	t.Run("Ungrounded facts keep their defaults", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:Blazar", "rdfs:subClassOf", "concept:Quasar", 0.6, "m")

		enriched := e.Enrich([]*model.Triple{triple}, bundleWithNotes("Cooking notes."))

		result := enriched[0]
		assert.Equal(t, model.SourceTypeAIAssisted, result.SourceType)
		assert.False(t, result.DerivedFromUser)
		assert.InDelta(t, 0.6, result.Confidence, 1e-9)
		assert.Equal(t, model.EvolutionStageInitial, result.EvolutionStage)
	})

	t.Run("Boosted confidence respects the caps", func(t *testing.T) {
		e := NewEnricher(nil)
		both := model.NewTriple("concept:TensorFlow", "rdfs:subClassOf", "concept:Library", 0.9, "m")
		subjectOnly := model.NewTriple("concept:TensorFlow", "concept:uses", "concept:XLA", 0.8, "m")

		enriched := e.Enrich([]*model.Triple{both, subjectOnly},
			bundleWithNotes("I use TensorFlow as my main library."))

		assert.InDelta(t, model.ConfidenceCapBothFound, enriched[0].Confidence, 1e-9)
		assert.InDelta(t, model.ConfidenceCapOneFound, enriched[1].Confidence, 1e-9)
	})

	t.Run("Confidence never decreases", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:TensorFlow", "concept:uses", "concept:XLA", 0.9, "m")

		enriched := e.Enrich([]*model.Triple{triple},
			bundleWithNotes("TensorFlow is great."))

		assert.InDelta(t, 0.9, enriched[0].Confidence, 1e-9)
	})

	t.Run("Result is sorted by confidence descending", func(t *testing.T) {
		e := NewEnricher(nil)
		low := model.NewTriple("concept:Quasar", "p", "concept:Blazar", 0.3, "m")
		grounded := model.NewTriple("concept:TensorFlow", "rdfs:subClassOf", "concept:Library", 0.5, "m")

		enriched := e.Enrich([]*model.Triple{low, grounded},
			bundleWithNotes("I use TensorFlow as my main library."))

		require.Len(t, enriched, 2)
		assert.Equal(t, "concept:TensorFlow", enriched[0].Subject)
	})

	t.Run("Nil bundle behaves like no notes", func(t *testing.T) {
		e := NewEnricher(nil)
		triple := model.NewTriple("concept:A", "p", "concept:B", 0.5, "m")

		enriched := e.Enrich([]*model.Triple{triple}, nil)
		assert.Equal(t, model.SourceTypeAIAssisted, enriched[0].SourceType)
		assert.InDelta(t, 0.5, enriched[0].Confidence, 1e-9)
	})
}

func TestBoost(t *testing.T) {
	t.Run("Adds delta up to the limit", func(t *testing.T) {
		assert.InDelta(t, 0.7, boost(0.5, 0.2, 0.95), 1e-9)
		assert.InDelta(t, 0.95, boost(0.9, 0.2, 0.95), 1e-9)
	})

	t.Run("Never lowers an already higher confidence", func(t *testing.T) {
		assert.InDelta(t, 0.9, boost(0.9, 0.1, 0.85), 1e-9)
	})
}
