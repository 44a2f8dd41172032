package graphdb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
	"github.com/google/uuid"
)

// DuplicatePolicy controls what happens when an insert hits a triple that
// already exists in the store.
type DuplicatePolicy string

const (
	DuplicateSkip   DuplicatePolicy = "skip"
	DuplicateError  DuplicatePolicy = "error"
	DuplicateUpdate DuplicatePolicy = "update"
)

// WriterConfig configures the triple store write handler.
type WriterConfig struct {
	// Namespace is the default namespace URI for bare local names.
	Namespace string
	// Prefix is the prefix label bound to Namespace in every statement.
	Prefix string
	// ChunkSize is the number of triples per INSERT DATA statement.
	ChunkSize int
	// OperationTimeout bounds every network operation.
	OperationTimeout time.Duration
	// ValidateBeforeInsert enables the per-triple ASK duplicate check
	// against the live store.
	ValidateBeforeInsert bool
	// HandleDuplicates selects the duplicate policy.
	HandleDuplicates DuplicatePolicy
	// DedupeInBatch additionally deduplicates a batch in memory before the
	// store-level check. Off by default: with the default settings two
	// identical new triples arriving in the same batch are not caught
	// against each other, only against the live store.
	DedupeInBatch bool
}

// DefaultWriterConfig returns the documented default writer configuration
// for the given namespace.
func DefaultWriterConfig(namespace string) *WriterConfig {
	return &WriterConfig{
		Namespace:            namespace,
		Prefix:               "h33",
		ChunkSize:            50,
		OperationTimeout:     30 * time.Second,
		ValidateBeforeInsert: true,
		HandleDuplicates:     DuplicateSkip,
		DedupeInBatch:        false,
	}
}

// TriplesDBHandlerFunctions defines the interface for triple store write operations.
type TriplesDBHandlerFunctions interface {
	InsertTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error)
	InsertTriples(ctx context.Context, triples []*model.Triple) *model.BatchUpdateResult
	DeleteTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error)
	UpdateTriple(ctx context.Context, oldTriple *model.Triple, newTriple *model.Triple) (*model.UpdateResult, error)
	HealthCheck(ctx context.Context) *model.HealthStatus
}

// TriplesDBHandler writes knowledge triples to the remote store with
// deduplication, batching and partial-failure handling.
type TriplesDBHandler struct {
	client *Client
	config *WriterConfig
	log    *slog.Logger
}

// NewTriplesDBHandler creates a new triple store write handler.
func NewTriplesDBHandler(client *Client, config *WriterConfig, logger *slog.Logger) (*TriplesDBHandler, error) {
	if client == nil {
		return nil, helper.NewError("client validation", fmt.Errorf("sparql client is nil"))
	}
	if config == nil {
		return nil, helper.NewError("config validation", fmt.Errorf("writer config is nil"))
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 50
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Initialized TriplesDBHandler",
		slog.String("namespace", config.Namespace),
		slog.Int("chunk_size", config.ChunkSize),
	)

	return &TriplesDBHandler{
		client: client,
		config: config,
		log:    logger,
	}, nil
}

// prefixHeader declares the prefixes used by formatted statements.
func (h *TriplesDBHandler) prefixHeader() string {
	return PrefixHeader(h.config.Prefix, h.config.Namespace)
}

// statementLine renders a triple as one line of an update statement.
func (h *TriplesDBHandler) statementLine(t *model.Triple) string {
	return fmt.Sprintf("%s %s %s .",
		FormatURI(t.Subject, h.config.Prefix),
		FormatURI(t.Predicate, h.config.Prefix),
		FormatObject(t.Object, h.config.Prefix),
	)
}

// exists issues an ASK for the exact triple against the live store.
func (h *TriplesDBHandler) exists(ctx context.Context, t *model.Triple) (bool, error) {
	query := fmt.Sprintf("%sASK { %s %s %s }",
		h.prefixHeader(),
		FormatURI(t.Subject, h.config.Prefix),
		FormatURI(t.Predicate, h.config.Prefix),
		FormatObject(t.Object, h.config.Prefix),
	)

	opCtx, cancel := context.WithTimeout(ctx, h.config.OperationTimeout)
	defer cancel()
	return h.client.Ask(opCtx, query)
}

// runUpdate executes an update statement under the operation timeout. A
// timed-out operation is abandoned logically; the remote side may or may
// not have applied it, so callers must treat it as unknown state.
func (h *TriplesDBHandler) runUpdate(ctx context.Context, statement string) error {
	opCtx, cancel := context.WithTimeout(ctx, h.config.OperationTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.client.Update(opCtx, statement)
	}()

	select {
	case err := <-done:
		return err
	case <-opCtx.Done():
		return fmt.Errorf("operation timed out after %s: %w", h.config.OperationTimeout, opCtx.Err())
	}
}

func failedResult(op model.Operation, start time.Time, message string) *model.UpdateResult {
	return &model.UpdateResult{
		Success:          false,
		TriplesProcessed: 0,
		Errors:           []string{message},
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
		Operation:        op,
	}
}

// InsertTriple inserts a single triple. Under the skip (or update) policy a
// duplicate is dropped silently: the result reports success with zero
// triples processed. Under the error policy a duplicate aborts the call.
func (h *TriplesDBHandler) InsertTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error) {
	start := time.Now()

	if err := triple.Validate(); err != nil {
		return failedResult(model.OperationInsert, start, err.Error()), helper.NewError("validate triple", err)
	}

	if h.config.ValidateBeforeInsert {
		exists, err := h.exists(ctx, triple)
		if err != nil {
			h.log.Warn("Duplicate check failed, proceeding with insert", slog.String("error", err.Error()))
		} else if exists {
			switch h.config.HandleDuplicates {
			case DuplicateError:
				err := fmt.Errorf("duplicate triple: %s", triple.Key())
				return failedResult(model.OperationInsert, start, err.Error()), helper.NewError("duplicate check", err)
			default: // skip and update behave identically for now
				return &model.UpdateResult{
					Success:          true,
					TriplesProcessed: 0,
					Errors:           []string{},
					ExecutionTimeMs:  time.Since(start).Milliseconds(),
					Operation:        model.OperationInsert,
				}, nil
			}
		}
	}

	statement := h.prefixHeader() + "INSERT DATA {\n" + h.statementLine(triple) + "\n}"
	if err := h.runUpdate(ctx, statement); err != nil {
		return failedResult(model.OperationInsert, start, err.Error()), helper.NewError("insert triple", err)
	}

	return &model.UpdateResult{
		Success:          true,
		TriplesProcessed: 1,
		Errors:           []string{},
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
		Operation:        model.OperationInsert,
	}, nil
}

// InsertTriples inserts a batch of triples. Malformed triples and failed
// chunks are recorded in the batch result without aborting the run; chunks
// execute strictly in order, so a later chunk's duplicate check can see an
// earlier chunk's effects.
func (h *TriplesDBHandler) InsertTriples(ctx context.Context, triples []*model.Triple) *model.BatchUpdateResult {
	start := time.Now()
	batch := &model.BatchUpdateResult{
		TotalTriples: len(triples),
		Errors:       []string{},
		Operations:   []model.UpdateResult{},
	}

	// Validation pass: malformed triples fail individually, well-formed
	// triples are still attempted.
	var valid []*model.Triple
	for i, triple := range triples {
		if triple == nil {
			batch.FailedTriples++
			batch.Errors = append(batch.Errors, fmt.Sprintf("triple %d: nil triple", i))
			continue
		}
		if err := triple.Validate(); err != nil {
			batch.FailedTriples++
			batch.Errors = append(batch.Errors, fmt.Sprintf("triple %d: %v", i, err))
			continue
		}
		valid = append(valid, triple)
	}

	// Optional in-memory dedup closes the batch-internal duplicate gap.
	// A removed duplicate is covered by its retained copy, so it counts as
	// successful up front.
	if h.config.DedupeInBatch {
		seen := make(map[string]bool, len(valid))
		var unique []*model.Triple
		for _, triple := range valid {
			key := triple.Key()
			if seen[key] {
				batch.SuccessfulTriples++
				continue
			}
			seen[key] = true
			unique = append(unique, triple)
		}
		valid = unique
	}

	// Duplicate filter against the live store, once, before the batch is
	// built. Two identical new triples in the same batch are not caught
	// against each other here.
	if h.config.ValidateBeforeInsert {
		var fresh []*model.Triple
		for _, triple := range valid {
			exists, err := h.exists(ctx, triple)
			if err != nil {
				h.log.Warn("Duplicate check failed, keeping triple in batch", slog.String("error", err.Error()))
				fresh = append(fresh, triple)
				continue
			}
			if !exists {
				fresh = append(fresh, triple)
				continue
			}
			switch h.config.HandleDuplicates {
			case DuplicateError:
				batch.FailedTriples++
				batch.Errors = append(batch.Errors, fmt.Sprintf("duplicate triple: %s", triple.Key()))
			default:
				batch.SuccessfulTriples++
			}
		}
		valid = fresh
	}

	// Sequential chunked inserts; a failed chunk never aborts the run.
	for chunkStart := 0; chunkStart < len(valid); chunkStart += h.config.ChunkSize {
		chunkEnd := chunkStart + h.config.ChunkSize
		if chunkEnd > len(valid) {
			chunkEnd = len(valid)
		}
		chunk := valid[chunkStart:chunkEnd]

		chunkTime := time.Now()
		var lines strings.Builder
		for _, triple := range chunk {
			lines.WriteString(h.statementLine(triple))
			lines.WriteString("\n")
		}
		statement := h.prefixHeader() + "INSERT DATA {\n" + lines.String() + "}"

		if err := h.runUpdate(ctx, statement); err != nil {
			batch.FailedTriples += len(chunk)
			batch.Errors = append(batch.Errors, fmt.Sprintf("chunk %d: %v", chunkStart/h.config.ChunkSize, err))
			batch.Operations = append(batch.Operations, *failedResult(model.OperationInsert, chunkTime, err.Error()))
			continue
		}

		batch.SuccessfulTriples += len(chunk)
		batch.Operations = append(batch.Operations, model.UpdateResult{
			Success:          true,
			TriplesProcessed: len(chunk),
			Errors:           []string{},
			ExecutionTimeMs:  time.Since(chunkTime).Milliseconds(),
			Operation:        model.OperationInsert,
		})
	}

	batch.ExecutionTimeMs = time.Since(start).Milliseconds()
	return batch
}

// DeleteTriple removes a single triple from the store.
func (h *TriplesDBHandler) DeleteTriple(ctx context.Context, triple *model.Triple) (*model.UpdateResult, error) {
	start := time.Now()

	if err := triple.Validate(); err != nil {
		return failedResult(model.OperationDelete, start, err.Error()), helper.NewError("validate triple", err)
	}

	statement := h.prefixHeader() + "DELETE DATA {\n" + h.statementLine(triple) + "\n}"
	if err := h.runUpdate(ctx, statement); err != nil {
		return failedResult(model.OperationDelete, start, err.Error()), helper.NewError("delete triple", err)
	}

	return &model.UpdateResult{
		Success:          true,
		TriplesProcessed: 1,
		Errors:           []string{},
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
		Operation:        model.OperationDelete,
	}, nil
}

// UpdateTriple atomically replaces oldTriple with newTriple in a single
// DELETE/INSERT/WHERE statement. The OPTIONAL pattern keeps the insert
// effective even when the old triple is already gone.
func (h *TriplesDBHandler) UpdateTriple(ctx context.Context, oldTriple *model.Triple, newTriple *model.Triple) (*model.UpdateResult, error) {
	start := time.Now()

	if err := oldTriple.Validate(); err != nil {
		return failedResult(model.OperationUpdate, start, err.Error()), helper.NewError("validate old triple", err)
	}
	if err := newTriple.Validate(); err != nil {
		return failedResult(model.OperationUpdate, start, err.Error()), helper.NewError("validate new triple", err)
	}

	oldLine := h.statementLine(oldTriple)
	statement := fmt.Sprintf("%sDELETE { %s }\nINSERT { %s }\nWHERE { OPTIONAL { %s } }",
		h.prefixHeader(),
		oldLine,
		h.statementLine(newTriple),
		oldLine,
	)

	if err := h.runUpdate(ctx, statement); err != nil {
		return failedResult(model.OperationUpdate, start, err.Error()), helper.NewError("update triple", err)
	}

	return &model.UpdateResult{
		Success:          true,
		TriplesProcessed: 1,
		Errors:           []string{},
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
		Operation:        model.OperationUpdate,
	}, nil
}

// HealthCheck verifies connectivity with an ASK and update capability with
// an insert-then-delete round trip of a throwaway triple.
func (h *TriplesDBHandler) HealthCheck(ctx context.Context) *model.HealthStatus {
	start := time.Now()
	status := &model.HealthStatus{}

	opCtx, cancel := context.WithTimeout(ctx, h.config.OperationTimeout)
	defer cancel()
	if _, err := h.client.Ask(opCtx, "ASK {}"); err != nil {
		status.Error = err.Error()
		status.ResponseTimeMs = time.Since(start).Milliseconds()
		return status
	}
	status.Connected = true

	probe := model.NewTriple(
		"health_check_"+uuid.New().String(),
		"health_status",
		"ok",
		1.0,
		"health_check",
	)

	line := h.statementLine(probe)
	if err := h.runUpdate(ctx, h.prefixHeader()+"INSERT DATA {\n"+line+"\n}"); err != nil {
		status.Error = err.Error()
		status.ResponseTimeMs = time.Since(start).Milliseconds()
		return status
	}
	if err := h.runUpdate(ctx, h.prefixHeader()+"DELETE DATA {\n"+line+"\n}"); err != nil {
		status.Error = err.Error()
		status.ResponseTimeMs = time.Since(start).Milliseconds()
		return status
	}

	status.UpdateCapable = true
	status.ResponseTimeMs = time.Since(start).Milliseconds()
	return status
}
