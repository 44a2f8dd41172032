package main

import (
	"context"
	"fmt"
	"log"

	knowledge "github.com/Camelus33/tedin-sub000"
	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
)

// A canned model response as it would come back from a chat-completion
// provider after being prompted with the retrieved context bundle.
const sampleResponse = `{
  "answer": "Graph databases store entities as nodes and relationships as edges, which makes multi-hop queries cheap.",
  "triples": [
    {"subject": "concept:GraphDatabase", "predicate": "rdf:type", "object": "concept:Database", "confidence": 0.9},
    {"subject": "concept:GraphDatabase", "predicate": "concept:uses", "object": "concept:Edge", "confidence": 0.8}
  ]
}`

func main() {
	// Graph store configuration from the environment (GRAPH_STORE_ENDPOINT,
	// GRAPH_STORE_USER, GRAPH_STORE_PASSWORD, GRAPH_STORE_NAMESPACE).
	// Defaults target a local Fuseki-style endpoint at
	// http://localhost:3030/knowledge.
	config, err := helper.NewGraphStoreConfiguration()
	if err != nil {
		log.Fatalf("Failed to load graph store configuration: %v", err)
	}

	k, err := knowledge.New(config, nil, "example-model")
	if err != nil {
		log.Fatalf("Failed to create knowledge pipeline: %v", err)
	}
	defer k.Close()

	ctx := context.Background()

	// Verify the store is reachable and writable before doing any work.
	status := k.Health(ctx)
	if !status.Connected {
		log.Fatalf("Graph store not reachable: %s", status.Error)
	}
	fmt.Printf("Store healthy: connected=%t updateCapable=%t (%dms)\n",
		status.Connected, status.UpdateCapable, status.ResponseTimeMs)

	// Retrieve the user's ranked context for a concept.
	concept := "graph databases"
	fmt.Printf("\nRetrieving context for %q...\n", concept)

	bundle, err := k.RetrieveContext(ctx, concept)
	if err != nil {
		log.Fatalf("Failed to retrieve context: %v", err)
	}
	fmt.Printf("Found %d notes, %d book excerpts, %d related concepts (%dms)\n",
		len(bundle.RelevantNotes), len(bundle.BookExcerpts),
		len(bundle.RelatedConcepts), bundle.QueryMetadata.ExecutionTimeMs)
	for i, note := range bundle.RelevantNotes {
		fmt.Printf("  note %d (score %.2f): %s\n", i+1, note.RelevanceScore, note.Content)
	}

	// At this point the bundle would be templated into a prompt and sent to
	// the language model; here we process a canned response instead.
	fmt.Println("\nProcessing model response...")
	result := k.ProcessResponse(ctx, sampleResponse, model.ResponseFormatJSON, bundle)

	fmt.Printf("Answer: %s\n", result.Answer)
	fmt.Printf("Extracted %d triples:\n", len(result.Triples))
	for _, triple := range result.Triples {
		fmt.Printf("  (%s, %s, %s) confidence=%.2f source=%s stage=%s\n",
			triple.Subject, triple.Predicate, triple.Object,
			triple.Confidence, triple.SourceType, triple.EvolutionStage)
	}
	for _, parseErr := range result.ParsingErrors {
		fmt.Printf("  parse warning: %s\n", parseErr)
	}

	if result.WriteResult != nil {
		fmt.Printf("\nWrote %d/%d triples in %dms (%d failed)\n",
			result.WriteResult.SuccessfulTriples, result.WriteResult.TotalTriples,
			result.WriteResult.ExecutionTimeMs, result.WriteResult.FailedTriples)
		for _, writeErr := range result.WriteResult.Errors {
			fmt.Printf("  write error: %s\n", writeErr)
		}
	}

	// The concept graph accumulates structure from bundles and triples.
	related := k.RelatedConcepts("graphdatabase", 2, 5)
	if len(related) > 0 {
		fmt.Printf("\nRelated concepts: %v\n", related)
	}

	fmt.Println("\nBasic example completed successfully!")
}
