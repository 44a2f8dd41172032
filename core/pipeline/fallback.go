package pipeline

import (
	"regexp"
	"strings"

	"github.com/Camelus33/tedin-sub000/model"
)

// fallbackPattern is one fixed surface pattern mapping a sentence to a
// relation. The pattern layer runs independently of the structured pipeline
// and catches the copula constructions the dependency stage skips.
type fallbackPattern struct {
	pattern    *regexp.Regexp
	predicate  string
	confidence float64
}

const term = `[\pL\pN][\pL\pN _-]*?`

// Patterns are ordered from most to least specific; the first match wins
// per sentence so "A는 B의 일종이다" never also fires the bare 이다 pattern.
var fallbackPatterns = []fallbackPattern{
	{regexp.MustCompile(`^(` + term + `)[은는]\s+(` + term + `)의\s*일종이다$`), "rdfs:subClassOf", 0.6},
	{regexp.MustCompile(`^(` + term + `)[은는]\s+(` + term + `)[을를]\s*포함한다$`), "schema:hasPart", 0.6},
	{regexp.MustCompile(`^(` + term + `)[은는]\s+(` + term + `)에\s*위치한다$`), "schema:location", 0.6},
	{regexp.MustCompile(`^(` + term + `)[은는]\s+(` + term + `)이다$`), "rdf:type", 0.55},
	{regexp.MustCompile(`(?i)^(` + term + `)\s+is\s+a\s+kind\s+of\s+(` + term + `)$`), "rdfs:subClassOf", 0.6},
	{regexp.MustCompile(`(?i)^(` + term + `)\s+is\s+a\s+type\s+of\s+(` + term + `)$`), "rdfs:subClassOf", 0.6},
	{regexp.MustCompile(`(?i)^(` + term + `)\s+is\s+part\s+of\s+(` + term + `)$`), "schema:isPartOf", 0.6},
	{regexp.MustCompile(`(?i)^(` + term + `)\s+is\s+located\s+in\s+(` + term + `)$`), "schema:location", 0.55},
	{regexp.MustCompile(`(?i)^(` + term + `)\s+is\s+an?\s+(` + term + `)$`), "rdf:type", 0.5},
}

// extractWithPatterns runs the fixed relation patterns over each sentence
// and returns the matched triples.
func extractWithPatterns(text string, source string) []*model.Triple {
	var triples []*model.Triple

	for _, sentence := range splitSentences(text) {
		trimmed := strings.TrimRight(strings.TrimSpace(sentence), ".!?")
		for _, fp := range fallbackPatterns {
			match := fp.pattern.FindStringSubmatch(trimmed)
			if match == nil {
				continue
			}
			subject := strings.TrimSpace(match[1])
			object := strings.TrimSpace(match[2])
			if subject == "" || object == "" {
				break
			}
			triple := model.NewTriple(
				ConceptURI(subject),
				fp.predicate,
				ConceptURI(object),
				fp.confidence,
				source,
			)
			triple.ExtractionMethod = model.ExtractionMethodPattern
			triples = append(triples, triple)
			break
		}
	}

	return triples
}
