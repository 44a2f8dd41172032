package model

import "time"

// ResourceType is the class of a retrieved resource in the graph.
type ResourceType string

const (
	ResourceTypeNote ResourceType = "note"
	ResourceTypeBook ResourceType = "book"
)

// RelevantNote is a read-only projection of a user memo at query time. It
// carries no ownership of the underlying document.
type RelevantNote struct {
	Content        string   `json:"content"`
	Tags           []string `json:"tags"`
	RelevanceScore float64  `json:"relevance_score,omitempty"`
}

// QueryMetadata describes how a context bundle was produced.
type QueryMetadata struct {
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	ResultCount     int    `json:"result_count"`
	QueryType       string `json:"query_type"`
}

// ContextBundle is the ranked package of user material handed to a language
// model as grounding for a target concept.
type ContextBundle struct {
	TargetConcept   string         `json:"target_concept"`
	RelevantNotes   []RelevantNote `json:"relevant_notes"`
	BookExcerpts    []string       `json:"book_excerpts"`
	RelatedConcepts []string       `json:"related_concepts"`
	QueryMetadata   QueryMetadata  `json:"query_metadata"`
}

// EmptyContextBundle returns a bundle with zero notes and zero books for the
// given concept. Used when retrieval degrades on transport or query errors.
func EmptyContextBundle(concept string, queryType string) *ContextBundle {
	return &ContextBundle{
		TargetConcept:   concept,
		RelevantNotes:   []RelevantNote{},
		BookExcerpts:    []string{},
		RelatedConcepts: []string{},
		QueryMetadata: QueryMetadata{
			QueryType: queryType,
		},
	}
}

// GraphQueryResult is one merged row of the retrieval UNION query. Duplicate
// URIs from the underlying query are merged into a single result with tags
// accumulated into a set.
type GraphQueryResult struct {
	URI            string       `json:"uri"`
	Type           ResourceType `json:"type"`
	Content        string       `json:"content"`
	Tags           []string     `json:"tags"`
	Title          string       `json:"title,omitempty"`
	Author         string       `json:"author,omitempty"`
	PageNumber     int          `json:"page_number,omitempty"`
	CreatedAt      time.Time    `json:"created_at,omitempty"`
	RelevanceScore float64      `json:"relevance_score,omitempty"`
}
