// Package retrieval builds ranked context bundles for a target concept by
// querying the user's notes and book excerpts in the graph store.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Camelus33/tedin-sub000/graphdb"
	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
)

const (
	// queryTypeNoteBookUnion names the UNION query over notes and books.
	queryTypeNoteBookUnion = "note_book_union"

	// resultLimit bounds the raw rows fetched per concept.
	resultLimit = 50
)

// Retriever queries the graph store for material related to a concept and
// assembles it into a ranked context bundle.
type Retriever struct {
	client    *graphdb.Client
	prefix    string
	namespace string
	log       *slog.Logger
}

// NewRetriever creates a retriever against the given graph store client.
func NewRetriever(client *graphdb.Client, config *helper.GraphStoreConfiguration, logger *slog.Logger) (*Retriever, error) {
	if client == nil {
		return nil, helper.NewError("client validation", fmt.Errorf("graph store client is nil"))
	}
	if config == nil {
		return nil, helper.NewError("config validation", fmt.Errorf("graph store configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		client:    client,
		prefix:    "h33",
		namespace: config.Namespace,
		log:       logger,
	}, nil
}

// Retrieve builds the context bundle for a concept. Retrieval degrades
// instead of failing: transport and query errors yield an empty bundle so
// downstream stages can still run.
func (r *Retriever) Retrieve(ctx context.Context, concept string) (*model.ContextBundle, error) {
	trimmed := strings.TrimSpace(concept)
	if trimmed == "" {
		return nil, helper.NewError("concept validation", fmt.Errorf("concept is empty"))
	}

	start := time.Now()

	rows, err := r.client.Select(ctx, r.buildConceptQuery(trimmed))
	if err != nil {
		r.log.Warn("Context retrieval degraded to empty bundle",
			slog.String("concept", trimmed),
			slog.String("error", err.Error()),
		)
		bundle := model.EmptyContextBundle(trimmed, queryTypeNoteBookUnion)
		bundle.QueryMetadata.ExecutionTimeMs = time.Since(start).Milliseconds()
		return bundle, nil
	}

	results := mergeRows(rows)
	ranked := Rank(trimmed, results)

	bundle := r.assembleBundle(trimmed, ranked)
	bundle.QueryMetadata = model.QueryMetadata{
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		ResultCount:     len(results),
		QueryType:       queryTypeNoteBookUnion,
	}

	r.log.Info("Retrieved context bundle",
		slog.String("concept", trimmed),
		slog.Int("notes", len(bundle.RelevantNotes)),
		slog.Int("books", len(bundle.BookExcerpts)),
	)

	return bundle, nil
}

// buildConceptQuery renders the UNION query over notes and books. The
// concept is matched case-insensitively against content, tags, titles and
// authors. Ordering by type and URI keeps row order deterministic before
// ranking.
func (r *Retriever) buildConceptQuery(concept string) string {
	escaped := graphdb.EscapeLiteral(strings.ToLower(concept))

	var b strings.Builder
	b.WriteString(graphdb.PrefixHeader(r.prefix, r.namespace))
	b.WriteString("SELECT ?uri ?type ?content ?tag ?title ?author ?pageNumber ?createdAt\n")
	b.WriteString("WHERE {\n")
	b.WriteString("  {\n")
	b.WriteString("    ?uri a h33:Note ;\n")
	b.WriteString("         h33:content ?content .\n")
	b.WriteString("    OPTIONAL { ?uri h33:tag ?tag }\n")
	b.WriteString("    OPTIONAL { ?uri h33:createdAt ?createdAt }\n")
	b.WriteString("    BIND(\"note\" AS ?type)\n")
	fmt.Fprintf(&b, "    FILTER(CONTAINS(LCASE(?content), \"%s\") || (BOUND(?tag) && CONTAINS(LCASE(?tag), \"%s\")))\n", escaped, escaped)
	b.WriteString("  }\n")
	b.WriteString("  UNION\n")
	b.WriteString("  {\n")
	b.WriteString("    ?uri a h33:Book ;\n")
	b.WriteString("         h33:content ?content .\n")
	b.WriteString("    OPTIONAL { ?uri h33:tag ?tag }\n")
	b.WriteString("    OPTIONAL { ?uri h33:title ?title }\n")
	b.WriteString("    OPTIONAL { ?uri h33:author ?author }\n")
	b.WriteString("    OPTIONAL { ?uri h33:pageNumber ?pageNumber }\n")
	b.WriteString("    OPTIONAL { ?uri h33:createdAt ?createdAt }\n")
	b.WriteString("    BIND(\"book\" AS ?type)\n")
	fmt.Fprintf(&b, "    FILTER(CONTAINS(LCASE(?content), \"%s\")", escaped)
	fmt.Fprintf(&b, " || (BOUND(?tag) && CONTAINS(LCASE(?tag), \"%s\"))", escaped)
	fmt.Fprintf(&b, " || (BOUND(?title) && CONTAINS(LCASE(?title), \"%s\"))", escaped)
	fmt.Fprintf(&b, " || (BOUND(?author) && CONTAINS(LCASE(?author), \"%s\")))\n", escaped)
	b.WriteString("  }\n")
	b.WriteString("}\n")
	b.WriteString("ORDER BY ?type ?uri\n")
	fmt.Fprintf(&b, "LIMIT %d", resultLimit)

	return b.String()
}

// mergeRows collapses the raw bindings into one result per URI, keeping
// first-seen order. Multi-valued tags arrive as one row per tag and are
// accumulated into a set.
func mergeRows(rows []map[string]string) []*model.GraphQueryResult {
	byURI := map[string]*model.GraphQueryResult{}
	seenTags := map[string]map[string]bool{}
	var ordered []*model.GraphQueryResult

	for _, row := range rows {
		uri := row["uri"]
		if uri == "" {
			continue
		}

		result, ok := byURI[uri]
		if !ok {
			result = &model.GraphQueryResult{
				URI:     uri,
				Type:    model.ResourceType(row["type"]),
				Content: row["content"],
				Title:   row["title"],
				Author:  row["author"],
			}
			if raw, ok := row["pageNumber"]; ok {
				if page, err := strconv.Atoi(raw); err == nil {
					result.PageNumber = page
				}
			}
			if raw, ok := row["createdAt"]; ok {
				if created, err := time.Parse(time.RFC3339, raw); err == nil {
					result.CreatedAt = created
				}
			}
			byURI[uri] = result
			seenTags[uri] = map[string]bool{}
			ordered = append(ordered, result)
		}

		if tag := strings.TrimSpace(row["tag"]); tag != "" && !seenTags[uri][tag] {
			seenTags[uri][tag] = true
			result.Tags = append(result.Tags, tag)
		}
	}

	return ordered
}

// assembleBundle splits ranked results into notes and book excerpts and
// collects related concepts from the tag union, excluding the target
// concept itself.
func (r *Retriever) assembleBundle(concept string, ranked []*model.GraphQueryResult) *model.ContextBundle {
	bundle := model.EmptyContextBundle(concept, queryTypeNoteBookUnion)

	loweredConcept := strings.ToLower(concept)
	seenConcepts := map[string]bool{}

	for _, result := range ranked {
		switch result.Type {
		case model.ResourceTypeNote:
			bundle.RelevantNotes = append(bundle.RelevantNotes, model.RelevantNote{
				Content:        result.Content,
				Tags:           result.Tags,
				RelevanceScore: result.RelevanceScore,
			})
		case model.ResourceTypeBook:
			bundle.BookExcerpts = append(bundle.BookExcerpts, result.Content)
		}

		for _, tag := range result.Tags {
			lowered := strings.ToLower(tag)
			if lowered == loweredConcept || seenConcepts[lowered] {
				continue
			}
			seenConcepts[lowered] = true
			bundle.RelatedConcepts = append(bundle.RelatedConcepts, tag)
		}
	}

	return bundle
}
