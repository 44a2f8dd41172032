// Package knowledge wires the full context-in, knowledge-out pipeline:
// ranked context retrieval for a concept, parsing of model responses,
// triple extraction, provenance enrichment against the user's own notes,
// and batched writes into the SPARQL triple store.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Camelus33/tedin-sub000/core/graph"
	"github.com/Camelus33/tedin-sub000/core/parser"
	"github.com/Camelus33/tedin-sub000/core/pipeline"
	"github.com/Camelus33/tedin-sub000/core/retrieval"
	"github.com/Camelus33/tedin-sub000/database"
	"github.com/Camelus33/tedin-sub000/graphdb"
	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
	loadSql "github.com/Camelus33/tedin-sub000/sql"
)

// Knowledge provides a unified interface to the whole pipeline.
type Knowledge struct {
	Client    *graphdb.Client
	Writer    *graphdb.TriplesDBHandler
	Retriever *retrieval.Retriever
	Strategy  retrieval.Strategy
	Parser    *parser.Parser
	Extractor *pipeline.Extractor
	Enricher  *pipeline.Enricher
	Concepts  *graph.ConceptGraph
	// Optional memo store for semantic retrieval
	DB    *helper.Database
	Memos *database.MemosDBHandler
	// Logging
	source string
	log    *slog.Logger
}

// ProcessResult is the outcome of processing one model response end to end.
// It is always returned; write failures are reported inside WriteResult
// instead of aborting the pipeline.
type ProcessResult struct {
	Answer        string                   `json:"answer"`
	Triples       []*model.Triple          `json:"triples"`
	ParsingErrors []string                 `json:"parsing_errors,omitempty"`
	WriteResult   *model.BatchUpdateResult `json:"write_result,omitempty"`
}

// New creates a Knowledge instance against the given graph store. source
// identifies the language model whose answers are processed and is stamped
// onto every extracted triple. A nil writerConfig selects the documented
// defaults for the configured namespace.
func New(config *helper.GraphStoreConfiguration, writerConfig *graphdb.WriterConfig, source string) (*Knowledge, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	if config == nil {
		var err error
		config, err = helper.NewGraphStoreConfiguration()
		if err != nil {
			return nil, helper.NewError("load graph store configuration", err)
		}
	}
	if writerConfig == nil {
		writerConfig = graphdb.DefaultWriterConfig(config.Namespace)
	}

	client := graphdb.NewClient(config, logger)

	writer, err := graphdb.NewTriplesDBHandler(client, writerConfig, logger)
	if err != nil {
		return nil, helper.NewError("create triples handler", err)
	}

	retriever, err := retrieval.NewRetriever(client, config, logger)
	if err != nil {
		return nil, helper.NewError("create retriever", err)
	}

	strategy, err := retrieval.NewGraphStrategy(retriever)
	if err != nil {
		return nil, helper.NewError("create graph strategy", err)
	}

	return &Knowledge{
		Client:    client,
		Writer:    writer,
		Retriever: retriever,
		Strategy:  strategy,
		Parser:    parser.NewParser(source, logger),
		Extractor: pipeline.NewExtractor(source, nil, logger),
		Enricher:  pipeline.NewEnricher(logger),
		Concepts:  graph.NewConceptGraph(),
		source:    source,
		log:       logger,
	}, nil
}

// Close closes the memo store connection if one was opened
func (k *Knowledge) Close() error {
	if k.DB != nil && k.DB.Instance != nil {
		return k.DB.Instance.Close()
	}
	return nil
}

// UseDefaultAnalyzer sets up the model-backed analyzer: the distilbert NER
// entity extractor and the all-MiniLM-L6-v2 embedder (384 dimensions).
// Without it the extractor runs on the rule-based recognizer only.
func (k *Knowledge) UseDefaultAnalyzer() error {
	entityExtractor, err := pipeline.DefaultEntityExtractor()
	if err != nil {
		return helper.NewError("create default entity extractor", err)
	}

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	analyzer := pipeline.NewAnalyzer()
	analyzer.SetEntityExtractor(entityExtractor)
	analyzer.SetEmbedder(embedder)

	k.Extractor = pipeline.NewExtractor(k.source, analyzer, k.log)
	return nil
}

// UseMemoStore connects the Postgres memo store and switches retrieval to
// the hybrid strategy: graph results first, memo similarity hits appended
// below them. Requires an embedder, so call UseDefaultAnalyzer first or
// pass a custom analyzer with an embedder.
func (k *Knowledge) UseMemoStore(dbConfig *helper.DatabaseConfiguration, embeddingDim int) error {
	embedder := k.Extractor.Embedder()
	if embedder == nil {
		return helper.NewError("memo store setup", fmt.Errorf("no embedder configured, call UseDefaultAnalyzer first"))
	}

	db := helper.NewDatabase("knowledge", dbConfig, k.log)
	if err := loadSql.Init(db.Instance); err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	memos, err := database.NewMemosDBHandler(db, embeddingDim, false)
	if err != nil {
		return helper.NewError("create memos handler", err)
	}

	graphStrategy, err := retrieval.NewGraphStrategy(k.Retriever)
	if err != nil {
		return helper.NewError("create graph strategy", err)
	}
	semantic, err := retrieval.NewSemanticStrategy(memos, embedder, 10, 0.5, k.log)
	if err != nil {
		return helper.NewError("create semantic strategy", err)
	}
	hybrid, err := retrieval.NewHybridStrategy(graphStrategy, semantic)
	if err != nil {
		return helper.NewError("create hybrid strategy", err)
	}

	k.DB = db
	k.Memos = memos
	k.Strategy = hybrid
	return nil
}

// RetrieveContext builds the ranked context bundle for a concept and feeds
// its tag structure into the in-memory concept graph.
func (k *Knowledge) RetrieveContext(ctx context.Context, concept string) (*model.ContextBundle, error) {
	bundle, err := k.Strategy.Retrieve(ctx, concept)
	if err != nil {
		return nil, helper.NewError("retrieve context", err)
	}

	k.Concepts.AddBundle(bundle)
	return bundle, nil
}

// ProcessResponse runs a raw model response through the full pipeline:
// parse the answer and any explicit triples, extract additional triples
// from the answer text, merge and dedupe, enrich with provenance against
// the bundle, and write the result to the store. It always returns a
// result; infrastructure failures surface inside WriteResult.
func (k *Knowledge) ProcessResponse(ctx context.Context, raw string, format model.ResponseFormat, bundle *model.ContextBundle) *ProcessResult {
	parsed := k.Parser.Parse(raw, format)

	text := parsed.Answer
	if text == "" {
		text = raw
	}
	extracted := k.Extractor.ExtractTriples(text)

	merged := model.MergeTriples(parsed.Triples, extracted)
	enriched := k.Enricher.Enrich(merged, bundle)

	for _, triple := range enriched {
		k.Concepts.AddTriple(triple)
	}

	result := &ProcessResult{
		Answer:        parsed.Answer,
		Triples:       enriched,
		ParsingErrors: k.Parser.ParsingErrors(),
	}

	if len(enriched) == 0 {
		k.log.Info("No triples extracted from response")
		return result
	}

	result.WriteResult = k.Writer.InsertTriples(ctx, enriched)
	k.log.Info("Processed model response",
		slog.Int("triples", len(enriched)),
		slog.Int("successful", result.WriteResult.SuccessfulTriples),
		slog.Int("failed", result.WriteResult.FailedTriples),
	)

	return result
}

// InsertTriple writes a single triple to the store
func (k *Knowledge) InsertTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error) {
	return k.Writer.InsertTriple(ctx, triple)
}

// InsertTriples writes a batch of triples to the store
func (k *Knowledge) InsertTriples(ctx context.Context, triples []*model.Triple) *model.BatchUpdateResult {
	return k.Writer.InsertTriples(ctx, triples)
}

// DeleteTriple removes a single triple from the store
func (k *Knowledge) DeleteTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error) {
	return k.Writer.DeleteTriple(ctx, triple)
}

// UpdateTriple replaces one triple with another
func (k *Knowledge) UpdateTriple(ctx context.Context, oldTriple *model.Triple, newTriple *model.Triple) (*model.UpdateResult, error) {
	return k.Writer.UpdateTriple(ctx, oldTriple, newTriple)
}

// Health reports store connectivity and update capability. When a memo
// store is configured its connection is pinged too.
func (k *Knowledge) Health(ctx context.Context) *model.HealthStatus {
	status := k.Writer.HealthCheck(ctx)

	if k.DB != nil && k.DB.Instance != nil {
		connected := k.DB.Instance.PingContext(ctx) == nil
		status.MemoStoreConnected = &connected
	}

	return status
}

// RelatedConcepts expands a concept through the in-memory concept graph
// accumulated from retrieved bundles and processed triples.
func (k *Knowledge) RelatedConcepts(concept string, maxHops int, limit int) []string {
	return k.Concepts.RelatedConcepts(concept, maxHops, limit)
}
