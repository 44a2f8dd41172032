package model

// ResponseFormat declares the expected shape of a model response.
type ResponseFormat string

const (
	ResponseFormatJSON       ResponseFormat = "JSON"
	ResponseFormatXML        ResponseFormat = "XML"
	ResponseFormatCSV        ResponseFormat = "CSV"
	ResponseFormatTriple     ResponseFormat = "TRIPLE"
	ResponseFormatStructured ResponseFormat = "STRUCTURED"
	ResponseFormatRawText    ResponseFormat = "RAW_TEXT"
)

// ParsedResponse is the result of parsing a raw model response: the
// human-readable answer text plus any explicitly structured triples the
// model emitted.
type ParsedResponse struct {
	Answer  string    `json:"answer"`
	Triples []*Triple `json:"triples"`
}
