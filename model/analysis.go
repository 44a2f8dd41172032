package model

// Entity represents a named entity or concept recognized in text.
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Confidence float64 `json:"confidence"`
	URI        string  `json:"uri,omitempty"`
}

// Dependency represents a grammatical relation between a head (usually a
// predicate) and a dependent token.
type Dependency struct {
	Head       string  `json:"head"`
	Dependent  string  `json:"dependent"`
	Relation   string  `json:"relation"` // subject, object, topic, location, manner
	Confidence float64 `json:"confidence"`
}

// SemanticRole assigns argument roles to a single predicate.
type SemanticRole struct {
	Predicate  string  `json:"predicate"`
	Agent      string  `json:"agent,omitempty"`
	Patient    string  `json:"patient,omitempty"`
	Location   string  `json:"location,omitempty"`
	Time       string  `json:"time,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Relationship is a synthesized relation between two entities with a
// normalized predicate URI.
type Relationship struct {
	Subject    Entity  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     Entity  `json:"object"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

// NLPAnalysis is the intermediate form produced by the extraction pipeline.
type NLPAnalysis struct {
	Entities      []Entity       `json:"entities"`
	Dependencies  []Dependency   `json:"dependencies"`
	SemanticRoles []SemanticRole `json:"semantic_roles"`
	Relationships []Relationship `json:"relationships"`
	Confidence    float64        `json:"confidence"`
}
