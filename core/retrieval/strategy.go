package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Camelus33/tedin-sub000/core/pipeline"
	"github.com/Camelus33/tedin-sub000/database"
	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
)

const (
	queryTypeSemantic = "semantic_similarity"
	queryTypeHybrid   = "hybrid"

	// semanticScoreScale maps cosine similarity (0..1) into the score range
	// below graph results, so graph hits always rank first in hybrid mode.
	semanticScoreScale = 10.0
)

// Strategy retrieves a context bundle for a concept. Implementations
// degrade to an empty bundle on infrastructure errors instead of failing
// the whole pipeline.
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, concept string) (*model.ContextBundle, error)
}

// GraphStrategy retrieves context from the graph store.
type GraphStrategy struct {
	retriever *Retriever
}

// NewGraphStrategy creates a graph store retrieval strategy.
func NewGraphStrategy(retriever *Retriever) (*GraphStrategy, error) {
	if retriever == nil {
		return nil, helper.NewError("retriever validation", fmt.Errorf("retriever is nil"))
	}
	return &GraphStrategy{retriever: retriever}, nil
}

func (s *GraphStrategy) Name() string {
	return "graph"
}

func (s *GraphStrategy) Retrieve(ctx context.Context, concept string) (*model.ContextBundle, error) {
	return s.retriever.Retrieve(ctx, concept)
}

// SemanticStrategy retrieves context from the memo store by embedding
// similarity.
type SemanticStrategy struct {
	memos     database.MemosDBHandlerFunctions
	embed     pipeline.EmbedFunc
	limit     int
	threshold float64
	log       *slog.Logger
}

// NewSemanticStrategy creates a memo similarity retrieval strategy.
func NewSemanticStrategy(memos database.MemosDBHandlerFunctions, embed pipeline.EmbedFunc, limit int, threshold float64, logger *slog.Logger) (*SemanticStrategy, error) {
	if memos == nil {
		return nil, helper.NewError("memos handler validation", fmt.Errorf("memos handler is nil"))
	}
	if embed == nil {
		return nil, helper.NewError("embedder validation", fmt.Errorf("embedder is nil"))
	}
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SemanticStrategy{
		memos:     memos,
		embed:     embed,
		limit:     limit,
		threshold: threshold,
		log:       logger,
	}, nil
}

func (s *SemanticStrategy) Name() string {
	return "semantic"
}

func (s *SemanticStrategy) Retrieve(ctx context.Context, concept string) (*model.ContextBundle, error) {
	trimmed := strings.TrimSpace(concept)
	if trimmed == "" {
		return nil, helper.NewError("concept validation", fmt.Errorf("concept is empty"))
	}

	start := time.Now()
	bundle := model.EmptyContextBundle(trimmed, queryTypeSemantic)

	embedding, err := s.embed(trimmed)
	if err != nil {
		s.log.Warn("Semantic retrieval degraded to empty bundle",
			slog.String("concept", trimmed),
			slog.String("error", err.Error()),
		)
		bundle.QueryMetadata.ExecutionTimeMs = time.Since(start).Milliseconds()
		return bundle, nil
	}

	memos, err := s.memos.SelectMemosBySimilarity(embedding, s.limit, s.threshold)
	if err != nil {
		s.log.Warn("Semantic retrieval degraded to empty bundle",
			slog.String("concept", trimmed),
			slog.String("error", err.Error()),
		)
		bundle.QueryMetadata.ExecutionTimeMs = time.Since(start).Milliseconds()
		return bundle, nil
	}

	loweredConcept := strings.ToLower(trimmed)
	seenConcepts := map[string]bool{}
	for _, memo := range memos {
		var score float64
		if memo.Similarity != nil {
			score = *memo.Similarity * semanticScoreScale
		}
		bundle.RelevantNotes = append(bundle.RelevantNotes, memo.ToRelevantNote(score))

		for _, tag := range memo.Tags {
			lowered := strings.ToLower(tag)
			if lowered == loweredConcept || seenConcepts[lowered] {
				continue
			}
			seenConcepts[lowered] = true
			bundle.RelatedConcepts = append(bundle.RelatedConcepts, tag)
		}
	}

	bundle.QueryMetadata = model.QueryMetadata{
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		ResultCount:     len(memos),
		QueryType:       queryTypeSemantic,
	}

	return bundle, nil
}

// HybridStrategy combines graph retrieval with semantic memo retrieval.
// Graph results come first; semantic hits not already present are appended
// below them.
type HybridStrategy struct {
	graph    Strategy
	semantic Strategy
}

// NewHybridStrategy creates a strategy that merges graph and semantic
// retrieval.
func NewHybridStrategy(graph Strategy, semantic Strategy) (*HybridStrategy, error) {
	if graph == nil {
		return nil, helper.NewError("graph strategy validation", fmt.Errorf("graph strategy is nil"))
	}
	if semantic == nil {
		return nil, helper.NewError("semantic strategy validation", fmt.Errorf("semantic strategy is nil"))
	}
	return &HybridStrategy{graph: graph, semantic: semantic}, nil
}

func (s *HybridStrategy) Name() string {
	return "hybrid"
}

func (s *HybridStrategy) Retrieve(ctx context.Context, concept string) (*model.ContextBundle, error) {
	graphBundle, err := s.graph.Retrieve(ctx, concept)
	if err != nil {
		return nil, err
	}

	semanticBundle, err := s.semantic.Retrieve(ctx, concept)
	if err != nil {
		return nil, err
	}

	merged := mergeBundles(graphBundle, semanticBundle)
	merged.QueryMetadata.QueryType = queryTypeHybrid
	return merged, nil
}

// mergeBundles appends the second bundle's notes and related concepts
// below the first bundle's, skipping notes whose content is already
// present.
func mergeBundles(first *model.ContextBundle, second *model.ContextBundle) *model.ContextBundle {
	merged := model.EmptyContextBundle(first.TargetConcept, first.QueryMetadata.QueryType)
	merged.RelevantNotes = append(merged.RelevantNotes, first.RelevantNotes...)
	merged.BookExcerpts = append(merged.BookExcerpts, first.BookExcerpts...)
	merged.RelatedConcepts = append(merged.RelatedConcepts, first.RelatedConcepts...)

	seenNotes := map[string]bool{}
	for _, note := range first.RelevantNotes {
		seenNotes[note.Content] = true
	}
	for _, note := range second.RelevantNotes {
		if seenNotes[note.Content] {
			continue
		}
		seenNotes[note.Content] = true
		merged.RelevantNotes = append(merged.RelevantNotes, note)
	}

	seenConcepts := map[string]bool{}
	for _, concept := range first.RelatedConcepts {
		seenConcepts[strings.ToLower(concept)] = true
	}
	for _, concept := range second.RelatedConcepts {
		if seenConcepts[strings.ToLower(concept)] {
			continue
		}
		seenConcepts[strings.ToLower(concept)] = true
		merged.RelatedConcepts = append(merged.RelatedConcepts, concept)
	}

	merged.QueryMetadata = model.QueryMetadata{
		ExecutionTimeMs: first.QueryMetadata.ExecutionTimeMs + second.QueryMetadata.ExecutionTimeMs,
		ResultCount:     first.QueryMetadata.ResultCount + second.QueryMetadata.ResultCount,
		QueryType:       first.QueryMetadata.QueryType,
	}

	return merged
}
