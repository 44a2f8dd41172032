package pipeline

import "github.com/Camelus33/tedin-sub000/model"

// EntityExtractFunc extracts entities from text.
// Returns a list of entities with their labels, positions and confidences.
type EntityExtractFunc func(text string) ([]model.Entity, error)

// EmbedFunc is a function that generates embeddings for text.
type EmbedFunc func(text string) ([]float32, error)

// Analyzer owns the optional model-backed components of the extraction
// pipeline. Heavy models are loaded once, behind an explicitly constructed
// analyzer passed by reference; the rule-based stages are stateless pure
// functions over the input text.
type Analyzer struct {
	EntityExtractor EntityExtractFunc // Optional, falls back to the rule-based recognizer
	Embedder        EmbedFunc         // Optional, used by semantic memo retrieval
}

// NewAnalyzer creates an analyzer with only the rule-based stages enabled.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// SetEntityExtractor sets the model-backed entity extraction function.
func (a *Analyzer) SetEntityExtractor(extractor EntityExtractFunc) {
	a.EntityExtractor = extractor
}

// SetEmbedder sets the embedding function.
func (a *Analyzer) SetEmbedder(embedder EmbedFunc) {
	a.Embedder = embedder
}
