package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTriple(t *testing.T) {
	t.Run("Provenance defaults", func(t *testing.T) {
		triple := NewTriple("concept:Go", "rdf:type", "concept:Language", 0.8, "test-model")

		assert.Equal(t, SourceTypeAIAssisted, triple.SourceType)
		assert.Equal(t, EvolutionStageInitial, triple.EvolutionStage)
		assert.False(t, triple.DerivedFromUser)
		assert.Empty(t, triple.OriginalMemoID)
		assert.Equal(t, "test-model", triple.Source)
		assert.False(t, triple.TemporalContext.IsZero())
	})
}

func TestTripleValidate(t *testing.T) {
	t.Run("Complete triple is valid", func(t *testing.T) {
		triple := NewTriple("s", "p", "o", 0.5, "m")
		assert.NoError(t, triple.Validate())
	})

	t.Run("Empty fields are rejected", func(t *testing.T) {
		assert.Error(t, NewTriple("", "p", "o", 0.5, "m").Validate())
		assert.Error(t, NewTriple("s", "", "o", 0.5, "m").Validate())
		assert.Error(t, NewTriple("s", "p", "", 0.5, "m").Validate())
	})
}

func TestTripleKey(t *testing.T) {
	t.Run("Identity is the exact string triple", func(t *testing.T) {
		a := NewTriple("s", "p", "o", 0.5, "m")
		b := NewTriple("s", "p", "o", 0.9, "other")
		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("Field boundaries are unambiguous", func(t *testing.T) {
		a := NewTriple("ab", "c", "d", 0.5, "m")
		b := NewTriple("a", "bc", "d", 0.5, "m")
		assert.NotEqual(t, a.Key(), b.Key())
	})
}

func TestMergeTriples(t *testing.T) {
	t.Run("Highest confidence wins on collision", func(t *testing.T) {
		low := NewTriple("s", "p", "o", 0.4, "m")
		high := NewTriple("s", "p", "o", 0.9, "m")

		merged := MergeTriples([]*Triple{low}, []*Triple{high})
		require.Len(t, merged, 1)
		assert.Equal(t, 0.9, merged[0].Confidence)
	})

	t.Run("Merging a list with itself is idempotent", func(t *testing.T) {
		list := []*Triple{
			NewTriple("a", "p", "b", 0.9, "m"),
			NewTriple("c", "p", "d", 0.5, "m"),
		}

		once := MergeTriples(list)
		twice := MergeTriples(once, once)

		require.Len(t, twice, len(once))
		for i := range once {
			assert.Equal(t, once[i].Key(), twice[i].Key())
			assert.Equal(t, once[i].Confidence, twice[i].Confidence)
		}
	})

	t.Run("Result is sorted by confidence descending", func(t *testing.T) {
		merged := MergeTriples([]*Triple{
			NewTriple("a", "p", "b", 0.3, "m"),
			NewTriple("c", "p", "d", 0.9, "m"),
			NewTriple("e", "p", "f", 0.6, "m"),
		})

		require.Len(t, merged, 3)
		assert.Equal(t, 0.9, merged[0].Confidence)
		assert.Equal(t, 0.6, merged[1].Confidence)
		assert.Equal(t, 0.3, merged[2].Confidence)
	})

	t.Run("Equal confidences keep first-seen order", func(t *testing.T) {
		merged := MergeTriples([]*Triple{
			NewTriple("first", "p", "o", 0.5, "m"),
			NewTriple("second", "p", "o", 0.5, "m"),
		})

		require.Len(t, merged, 2)
		assert.Equal(t, "first", merged[0].Subject)
		assert.Equal(t, "second", merged[1].Subject)
	})

	t.Run("Nil entries and empty lists are skipped", func(t *testing.T) {
		merged := MergeTriples(nil, []*Triple{nil, NewTriple("s", "p", "o", 0.5, "m")})
		assert.Len(t, merged, 1)
	})
}
