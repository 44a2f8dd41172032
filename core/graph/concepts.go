// Package graph holds an in-memory concept co-occurrence graph built from
// context bundles and extracted triples, used to expand a concept into its
// related neighborhood.
package graph

import (
	"sort"
	"strings"

	"github.com/Camelus33/tedin-sub000/core/pipeline"
	"github.com/Camelus33/tedin-sub000/model"
)

// ConceptGraph is an undirected weighted graph over concept labels. Nodes
// are case-folded; the first surface form seen for a node is kept for
// display.
type ConceptGraph struct {
	adjacency map[string]map[string]float64
	surface   map[string]string
}

// NewConceptGraph creates an empty concept graph.
func NewConceptGraph() *ConceptGraph {
	return &ConceptGraph{
		adjacency: map[string]map[string]float64{},
		surface:   map[string]string{},
	}
}

// TraversalResult contains a concept and its distance from the source
type TraversalResult struct {
	Concept  string
	Distance int
	Path     []string // Path from source to this concept
	Weight   float64  // Weight of the edge this concept was reached over
}

// node registers a concept label and returns its key.
func (g *ConceptGraph) node(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return ""
	}
	if _, ok := g.surface[key]; !ok {
		g.surface[key] = strings.TrimSpace(label)
		g.adjacency[key] = map[string]float64{}
	}
	return key
}

// addEdge adds weight to the undirected edge between two labels.
func (g *ConceptGraph) addEdge(a string, b string, weight float64) {
	keyA := g.node(a)
	keyB := g.node(b)
	if keyA == "" || keyB == "" || keyA == keyB {
		return
	}
	g.adjacency[keyA][keyB] += weight
	g.adjacency[keyB][keyA] += weight
}

// AddCoOccurrence links every pair of concepts that appeared together,
// e.g. the tags of a single note.
func (g *ConceptGraph) AddCoOccurrence(concepts []string) {
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			g.addEdge(concepts[i], concepts[j], 1)
		}
	}
}

// AddBundle links the tags of every note in the bundle and links each
// related concept to the bundle's target concept.
func (g *ConceptGraph) AddBundle(bundle *model.ContextBundle) {
	if bundle == nil {
		return
	}
	for _, note := range bundle.RelevantNotes {
		g.AddCoOccurrence(note.Tags)
	}
	for _, related := range bundle.RelatedConcepts {
		g.addEdge(bundle.TargetConcept, related, 1)
	}
}

// AddTriple links a triple's subject and object, weighted by the triple's
// confidence. URI prefixes are stripped so graph nodes line up with the
// plain concept labels coming from tags.
func (g *ConceptGraph) AddTriple(triple *model.Triple) {
	if triple == nil {
		return
	}
	subject := pipeline.CleanTerm(triple.Subject)
	object := pipeline.CleanTerm(triple.Object)
	weight := triple.Confidence
	if weight <= 0 {
		weight = 0.1
	}
	g.addEdge(subject, object, weight)
}

// Size returns the number of concepts in the graph.
func (g *ConceptGraph) Size() int {
	return len(g.adjacency)
}

// neighbors returns the neighbor keys of a node sorted by edge weight
// descending, with alphabetical order as a deterministic tie break.
func (g *ConceptGraph) neighbors(key string) []string {
	edges := g.adjacency[key]
	keys := make([]string, 0, len(edges))
	for neighbor := range edges {
		keys = append(keys, neighbor)
	}
	sort.Slice(keys, func(i, j int) bool {
		if edges[keys[i]] != edges[keys[j]] {
			return edges[keys[i]] > edges[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// BFS performs breadth-first search from a source concept
func (g *ConceptGraph) BFS(source string, maxHops int) []*TraversalResult {
	sourceKey := strings.ToLower(strings.TrimSpace(source))
	if _, ok := g.adjacency[sourceKey]; !ok {
		return nil
	}

	visited := map[string]bool{sourceKey: true}
	queue := []TraversalResult{{
		Concept:  g.surface[sourceKey],
		Distance: 0,
		Path:     []string{g.surface[sourceKey]},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		currentKey := strings.ToLower(current.Concept)
		for _, neighborKey := range g.neighbors(currentKey) {
			// Skip if already visited
			if visited[neighborKey] {
				continue
			}
			visited[neighborKey] = true

			// Create new path
			newPath := make([]string, len(current.Path))
			copy(newPath, current.Path)
			newPath = append(newPath, g.surface[neighborKey])

			queue = append(queue, TraversalResult{
				Concept:  g.surface[neighborKey],
				Distance: current.Distance + 1,
				Path:     newPath,
				Weight:   g.adjacency[currentKey][neighborKey],
			})
		}
	}

	return results
}

// DFS performs depth-first search from a source concept
func (g *ConceptGraph) DFS(source string, maxHops int) []*TraversalResult {
	sourceKey := strings.ToLower(strings.TrimSpace(source))
	if _, ok := g.adjacency[sourceKey]; !ok {
		return nil
	}

	visited := map[string]bool{}
	var results []*TraversalResult
	g.dfsRecursive(sourceKey, 0, maxHops, []string{g.surface[sourceKey]}, 0, visited, &results)
	return results
}

// dfsRecursive is the recursive helper for DFS
func (g *ConceptGraph) dfsRecursive(
	currentKey string,
	distance int,
	maxHops int,
	path []string,
	weight float64,
	visited map[string]bool,
	results *[]*TraversalResult,
) {
	// Mark as visited
	visited[currentKey] = true

	// Add to results
	pathCopy := make([]string, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Concept:  g.surface[currentKey],
		Distance: distance,
		Path:     pathCopy,
		Weight:   weight,
	})

	// Stop if we've reached max hops
	if distance >= maxHops {
		return
	}

	for _, neighborKey := range g.neighbors(currentKey) {
		// Skip if already visited
		if visited[neighborKey] {
			continue
		}

		// Create new path
		newPath := make([]string, len(path))
		copy(newPath, path)
		newPath = append(newPath, g.surface[neighborKey])

		// Recurse
		g.dfsRecursive(neighborKey, distance+1, maxHops, newPath, g.adjacency[currentKey][neighborKey], visited, results)
	}
}

// Neighbors retrieves immediate neighbors (1-hop) of a concept
func (g *ConceptGraph) Neighbors(concept string) []string {
	results := g.BFS(concept, 1)
	if len(results) == 0 {
		return nil
	}

	// Skip the source concept itself (first result)
	neighbors := make([]string, 0, len(results)-1)
	for i := 1; i < len(results); i++ {
		neighbors = append(neighbors, results[i].Concept)
	}

	return neighbors
}

// RelatedConcepts expands a concept to its neighborhood within maxHops,
// nearest first, bounded by limit. The source itself is excluded.
func (g *ConceptGraph) RelatedConcepts(concept string, maxHops int, limit int) []string {
	results := g.BFS(concept, maxHops)
	if len(results) == 0 {
		return nil
	}

	related := make([]string, 0, len(results)-1)
	for i := 1; i < len(results); i++ {
		if limit > 0 && len(related) >= limit {
			break
		}
		related = append(related, results[i].Concept)
	}

	return related
}
