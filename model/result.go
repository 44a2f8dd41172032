package model

// Operation is the kind of write issued against the triple store.
type Operation string

const (
	OperationInsert Operation = "INSERT"
	OperationDelete Operation = "DELETE"
	OperationUpdate Operation = "UPDATE"
)

// UpdateResult reports the outcome of a single store operation. It is
// created per call and never persisted.
type UpdateResult struct {
	Success          bool      `json:"success"`
	TriplesProcessed int       `json:"triples_processed"`
	Errors           []string  `json:"errors"`
	ExecutionTimeMs  int64     `json:"execution_time_ms"`
	Operation        Operation `json:"operation"`
}

// BatchUpdateResult aggregates per-chunk results of a batched write.
type BatchUpdateResult struct {
	TotalTriples      int            `json:"total_triples"`
	SuccessfulTriples int            `json:"successful_triples"`
	FailedTriples     int            `json:"failed_triples"`
	Errors            []string       `json:"errors"`
	ExecutionTimeMs   int64          `json:"execution_time_ms"`
	Operations        []UpdateResult `json:"operations"`
}

// HealthStatus reports the outcome of a store health check round trip.
// MemoStoreConnected is nil when no memo store is configured.
type HealthStatus struct {
	Connected          bool   `json:"connected"`
	UpdateCapable      bool   `json:"update_capable"`
	ResponseTimeMs     int64  `json:"response_time_ms"`
	Error              string `json:"error,omitempty"`
	MemoStoreConnected *bool  `json:"memo_store_connected,omitempty"`
}
