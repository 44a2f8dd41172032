// Package parser turns raw model responses of unknown shape into answer
// text plus any explicitly structured triples the model emitted.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/Camelus33/tedin-sub000/model"
)

// Parser parses raw model responses. Parse failures are recorded in a
// per-call error log instead of being raised, so a malformed response never
// blocks the pipeline.
type Parser struct {
	source string
	log    *slog.Logger
	errors []string
}

// NewParser creates a parser. source identifies the model whose responses
// are being parsed and is stamped onto every extracted triple.
func NewParser(source string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		source: source,
		log:    logger,
	}
}

// Parse extracts the answer text and any structured triples from a raw
// response, dispatching on the declared expected format. It always returns
// a response; failures are recorded and retrievable via ParsingErrors.
func (p *Parser) Parse(raw string, format model.ResponseFormat) *model.ParsedResponse {
	p.errors = nil

	answer := extractAnswerText(raw)

	// Structured content usually lives inside the extracted answer; fall
	// back to the raw body when envelope extraction found nothing.
	text := answer
	if text == "" {
		text = raw
	}

	response := &model.ParsedResponse{
		Answer:  answer,
		Triples: []*model.Triple{},
	}

	var triples []*model.Triple
	var err error

	switch format {
	case model.ResponseFormatJSON:
		triples, err = parseJSONTriples(text, p.source)
		p.record("JSON", err)
	case model.ResponseFormatXML:
		triples, err = parseXMLTriples(text, p.source)
		p.record("XML", err)
	case model.ResponseFormatCSV:
		triples, err = parseCSVTriples(text, p.source)
		p.record("CSV", err)
	case model.ResponseFormatTriple:
		triples, err = parseTripleLines(text, p.source)
		p.record("TRIPLE", err)
	case model.ResponseFormatStructured:
		triples = p.parseStructured(text)
	case model.ResponseFormatRawText:
		// No structured parsing; the answer text is the whole result.
	default:
		p.record(string(format), fmt.Errorf("unknown expected format"))
	}

	if triples != nil {
		response.Triples = triples
	}

	return response
}

// parseStructured tries JSON, then TRIPLE, then XML; the first format that
// yields triples wins.
func (p *Parser) parseStructured(text string) []*model.Triple {
	if triples, err := parseJSONTriples(text, p.source); err == nil && len(triples) > 0 {
		return triples
	} else {
		p.record("STRUCTURED/JSON", err)
	}

	if triples, err := parseTripleLines(text, p.source); err == nil && len(triples) > 0 {
		return triples
	} else {
		p.record("STRUCTURED/TRIPLE", err)
	}

	if triples, err := parseXMLTriples(text, p.source); err == nil && len(triples) > 0 {
		return triples
	} else {
		p.record("STRUCTURED/XML", err)
	}

	return nil
}

// ParsingErrors returns the errors recorded by the most recent Parse call.
func (p *Parser) ParsingErrors() []string {
	return p.errors
}

func (p *Parser) record(stage string, err error) {
	if err == nil {
		return
	}
	message := fmt.Sprintf("%s: %v", stage, err)
	p.errors = append(p.errors, message)
	p.log.Debug("Parse failure recorded", slog.String("stage", stage), slog.String("error", err.Error()))
}
