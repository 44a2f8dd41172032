package pipeline

import (
	"strings"

	"github.com/Camelus33/tedin-sub000/graphdb"
	"github.com/Camelus33/tedin-sub000/model"
)

// predicateLexicon maps common verbs to normalized predicate URIs. Korean
// predicates are matched on their dictionary stem; unmapped verbs fall back
// to a sanitized verbatim predicate.
var predicateLexicon = map[string]string{
	"이다":   "rdf:type",
	"일종이다": "rdfs:subClassOf",
	"포함한다": "schema:hasPart",
	"위치한다": "schema:location",
	"유발한다": "concept:causes",
	"사용한다": "concept:uses",
	"만든다":  "concept:creates",

	"is":       "rdf:type",
	"includes": "schema:hasPart",
	"contains": "schema:hasPart",
	"has":      "schema:hasPart",
	"causes":   "concept:causes",
	"uses":     "concept:uses",
	"creates":  "concept:creates",
	"produces": "concept:creates",
	"requires": "concept:requires",
	"enables":  "concept:enables",
	"supports": "concept:supports",
	"improves": "concept:improves",
}

// NormalizePredicate maps a surface verb to its predicate URI. Korean verb
// endings are matched by suffix so conjugated forms still normalize; any
// unmapped verb becomes a sanitized verbatim predicate.
func NormalizePredicate(verb string) string {
	trimmed := strings.TrimSpace(strings.ToLower(verb))
	if uri, ok := predicateLexicon[trimmed]; ok {
		return uri
	}
	for stem, uri := range predicateLexicon {
		if containsHangul(stem) && strings.HasSuffix(trimmed, stem) {
			return uri
		}
	}
	return "concept:" + graphdb.SanitizeLocalName(trimmed)
}

// synthesizeRelationships converts semantic roles and dependencies into
// relationships with normalized predicate URIs. Role-derived relations take
// precedence; dependency pairs only fill in predicates the roles missed.
func synthesizeRelationships(entities []model.Entity, dependencies []model.Dependency, roles []model.SemanticRole) []model.Relationship {
	var relationships []model.Relationship
	covered := make(map[string]bool)

	for _, role := range roles {
		if role.Agent == "" || role.Patient == "" {
			continue
		}
		relationships = append(relationships, model.Relationship{
			Subject:    entityForText(role.Agent, entities),
			Predicate:  NormalizePredicate(role.Predicate),
			Object:     entityForText(role.Patient, entities),
			Confidence: role.Confidence,
			Context:    role.Predicate,
		})
		covered[role.Predicate] = true
	}

	// Dependency pairs for predicates without a full role assignment.
	subjects := make(map[string]model.Dependency)
	objects := make(map[string]model.Dependency)
	for _, dep := range dependencies {
		switch dep.Relation {
		case relationSubject, relationTopic:
			if _, ok := subjects[dep.Head]; !ok {
				subjects[dep.Head] = dep
			}
		case relationObject:
			if _, ok := objects[dep.Head]; !ok {
				objects[dep.Head] = dep
			}
		}
	}
	for head, subject := range subjects {
		if covered[head] {
			continue
		}
		object, ok := objects[head]
		if !ok {
			continue
		}
		relationships = append(relationships, model.Relationship{
			Subject:    entityForText(subject.Dependent, entities),
			Predicate:  NormalizePredicate(head),
			Object:     entityForText(object.Dependent, entities),
			Confidence: (subject.Confidence + object.Confidence) / 2,
			Context:    head,
		})
	}

	return relationships
}
