package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Camelus33/tedin-sub000/model"
)

// Fixed confidences for structured formats that carry none of their own.
const (
	jsonDefaultConfidence    = 0.8
	xmlTripleConfidence      = 0.8
	csvTripleConfidence      = 0.7
	patternTripleConfidence  = 0.8
)

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	xmlTriplePattern   = regexp.MustCompile(`(?s)<triple>\s*<subject>(.*?)</subject>\s*<predicate>(.*?)</predicate>\s*<object>(.*?)</object>\s*</triple>`)
	tripleLinePattern  = regexp.MustCompile(`Subject:\s*(.+?),\s*Predicate:\s*(.+?),\s*Object:\s*([^\n]+?)(?:\.\s*$|$)`)
)

type jsonTripleElement struct {
	Subject    string   `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     string   `json:"object"`
	Confidence *float64 `json:"confidence"`
}

type jsonResponseBody struct {
	Answer  string          `json:"answer"`
	Triples json.RawMessage `json:"triples"`
}

// parseJSONTriples parses a JSON body, stripping an optional fenced code
// block first. An invalid shape yields nil and an error, never a panic.
func parseJSONTriples(text string, source string) ([]*model.Triple, error) {
	body := text
	if match := fencedBlockPattern.FindStringSubmatch(text); match != nil {
		body = match[1]
	}

	var parsed jsonResponseBody
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if len(parsed.Triples) == 0 {
		return []*model.Triple{}, nil
	}

	var elements []jsonTripleElement
	if err := json.Unmarshal(parsed.Triples, &elements); err != nil {
		return nil, fmt.Errorf("triples field is not an array of triples: %w", err)
	}

	triples := make([]*model.Triple, 0, len(elements))
	for i, element := range elements {
		if element.Subject == "" || element.Predicate == "" || element.Object == "" {
			return nil, fmt.Errorf("triple %d is missing subject, predicate or object", i)
		}
		confidence := jsonDefaultConfidence
		if element.Confidence != nil && *element.Confidence >= 0 && *element.Confidence <= 1 {
			confidence = *element.Confidence
		}
		triple := model.NewTriple(element.Subject, element.Predicate, element.Object, confidence, source)
		triple.ExtractionMethod = model.ExtractionMethodParser
		triples = append(triples, triple)
	}

	return triples, nil
}

// parseXMLTriples extracts repeated <triple> blocks.
func parseXMLTriples(text string, source string) ([]*model.Triple, error) {
	matches := xmlTriplePattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil, fmt.Errorf("no <triple> blocks found")
	}

	triples := make([]*model.Triple, 0, len(matches))
	for _, match := range matches {
		subject := strings.TrimSpace(match[1])
		predicate := strings.TrimSpace(match[2])
		object := strings.TrimSpace(match[3])
		if subject == "" || predicate == "" || object == "" {
			continue
		}
		triple := model.NewTriple(subject, predicate, object, xmlTripleConfidence, source)
		triple.ExtractionMethod = model.ExtractionMethodParser
		triples = append(triples, triple)
	}

	return triples, nil
}

// parseCSVTriples parses a CSV body whose header must carry subject,
// predicate and object columns in any order. Rows missing one of the three
// fields are dropped.
func parseCSVTriples(text string, source string) ([]*model.Triple, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV body")
	}

	columns := map[string]int{}
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	subjectCol, hasSubject := columns["subject"]
	predicateCol, hasPredicate := columns["predicate"]
	objectCol, hasObject := columns["object"]
	if !hasSubject || !hasPredicate || !hasObject {
		return nil, fmt.Errorf("CSV header is missing subject, predicate or object columns")
	}

	var triples []*model.Triple
	for _, record := range records[1:] {
		subject := fieldAt(record, subjectCol)
		predicate := fieldAt(record, predicateCol)
		object := fieldAt(record, objectCol)
		if subject == "" || predicate == "" || object == "" {
			continue
		}
		triple := model.NewTriple(subject, predicate, object, csvTripleConfidence, source)
		triple.ExtractionMethod = model.ExtractionMethodParser
		triples = append(triples, triple)
	}

	return triples, nil
}

func fieldAt(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(record[index]), `"`))
}

// parseTripleLines extracts repeated "Subject: X, Predicate: Y, Object: Z"
// lines.
func parseTripleLines(text string, source string) ([]*model.Triple, error) {
	var triples []*model.Triple
	for _, line := range strings.Split(text, "\n") {
		match := tripleLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		subject := strings.TrimSpace(match[1])
		predicate := strings.TrimSpace(match[2])
		object := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(match[3]), "."))
		if subject == "" || predicate == "" || object == "" {
			continue
		}
		triple := model.NewTriple(subject, predicate, object, patternTripleConfidence, source)
		triple.ExtractionMethod = model.ExtractionMethodParser
		triples = append(triples, triple)
	}

	if triples == nil {
		return nil, fmt.Errorf("no Subject/Predicate/Object lines found")
	}
	return triples, nil
}
