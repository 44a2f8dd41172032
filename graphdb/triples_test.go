package graphdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEndpoint emulates a SPARQL endpoint pair: ASK queries answer with the
// configured boolean and every accepted update statement is recorded.
type fakeEndpoint struct {
	mu          sync.Mutex
	askResult   bool
	failAsk     bool
	failUpdates bool
	updates     []string
}

func (f *fakeEndpoint) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		if update := r.Form.Get("update"); update != "" {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failUpdates {
				http.Error(w, "update refused", http.StatusInternalServerError)
				return
			}
			f.updates = append(f.updates, update)
			w.WriteHeader(http.StatusOK)
			return
		}

		if f.failAsk {
			http.Error(w, "query refused", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/sparql-results+json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"head":    map[string]interface{}{},
			"boolean": f.askResult,
		}))
	}
}

func (f *fakeEndpoint) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeEndpoint) lastUpdate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return ""
	}
	return f.updates[len(f.updates)-1]
}

func newTestHandler(t *testing.T, endpoint *fakeEndpoint, mutate func(*WriterConfig)) *TriplesDBHandler {
	t.Helper()
	server := httptest.NewServer(endpoint.handler(t))
	t.Cleanup(server.Close)

	config := DefaultWriterConfig("http://habitus33.io/concept/")
	if mutate != nil {
		mutate(config)
	}

	client := NewClient(&helper.GraphStoreConfiguration{Endpoint: server.URL}, nil)
	handler, err := NewTriplesDBHandler(client, config, nil)
	require.NoError(t, err)
	return handler
}

func testTriple(subject, object string) *model.Triple {
	return model.NewTriple(subject, "rdf:type", object, 0.8, "test-model")
}

func TestNewTriplesDBHandler(t *testing.T) {
	t.Run("Nil client is rejected", func(t *testing.T) {
		_, err := NewTriplesDBHandler(nil, DefaultWriterConfig("ns"), nil)
		assert.Error(t, err)
	})

	t.Run("Nil config is rejected", func(t *testing.T) {
		client := NewClient(&helper.GraphStoreConfiguration{Endpoint: "http://localhost:3030/x"}, nil)
		_, err := NewTriplesDBHandler(client, nil, nil)
		assert.Error(t, err)
	})

	t.Run("Zero chunk size and timeout fall back to defaults", func(t *testing.T) {
		client := NewClient(&helper.GraphStoreConfiguration{Endpoint: "http://localhost:3030/x"}, nil)
		config := &WriterConfig{Namespace: "ns", Prefix: "h33"}
		_, err := NewTriplesDBHandler(client, config, nil)
		require.NoError(t, err)
		assert.Equal(t, 50, config.ChunkSize)
		assert.Equal(t, 30*time.Second, config.OperationTimeout)
	})
}

func TestInsertTriple(t *testing.T) {
	t.Run("New triple is inserted", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		result, err := h.InsertTriple(context.Background(), testTriple("concept:Go", "concept:Language"))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.TriplesProcessed)
		assert.Equal(t, model.OperationInsert, result.Operation)

		require.Equal(t, 1, endpoint.updateCount())
		assert.Contains(t, endpoint.lastUpdate(), "INSERT DATA")
		assert.Contains(t, endpoint.lastUpdate(), "concept:Go rdf:type concept:Language .")
	})

	t.Run("Duplicate is skipped silently under the skip policy", func(t *testing.T) {
		endpoint := &fakeEndpoint{askResult: true}
		h := newTestHandler(t, endpoint, nil)

		result, err := h.InsertTriple(context.Background(), testTriple("concept:Go", "concept:Language"))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Zero(t, result.TriplesProcessed)
		assert.Zero(t, endpoint.updateCount(), "no update statement for a duplicate")
	})

	t.Run("Duplicate aborts under the error policy", func(t *testing.T) {
		endpoint := &fakeEndpoint{askResult: true}
		h := newTestHandler(t, endpoint, func(c *WriterConfig) { c.HandleDuplicates = DuplicateError })

		result, err := h.InsertTriple(context.Background(), testTriple("concept:Go", "concept:Language"))
		assert.Error(t, err)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("Failed duplicate check proceeds with the insert", func(t *testing.T) {
		endpoint := &fakeEndpoint{failAsk: true}
		h := newTestHandler(t, endpoint, nil)

		result, err := h.InsertTriple(context.Background(), testTriple("concept:Go", "concept:Language"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.TriplesProcessed)
		assert.Equal(t, 1, endpoint.updateCount())
	})

	t.Run("Malformed triple fails before any network call", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		result, err := h.InsertTriple(context.Background(), testTriple("", "concept:Language"))
		assert.Error(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, endpoint.updateCount())
	})

	t.Run("Literal objects are quoted in the statement", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		_, err := h.InsertTriple(context.Background(), testTriple("concept:Go", "a compiled language"))
		require.NoError(t, err)
		assert.Contains(t, endpoint.lastUpdate(), `"a compiled language"`)
	})
}

func TestInsertTriples(t *testing.T) {
	t.Run("Malformed triples fail individually without aborting the batch", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
			testTriple("", "concept:Y"),
			testTriple("concept:C", "concept:Z"),
		})

		assert.Equal(t, 3, batch.TotalTriples)
		assert.Equal(t, 2, batch.SuccessfulTriples)
		assert.Equal(t, 1, batch.FailedTriples)
		require.NotEmpty(t, batch.Errors)
		assert.Contains(t, batch.Errors[0], "triple 1")

		require.Equal(t, 1, endpoint.updateCount())
		assert.Contains(t, endpoint.lastUpdate(), "concept:A")
		assert.Contains(t, endpoint.lastUpdate(), "concept:C")
	})

	t.Run("Batches are chunked in order", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, func(c *WriterConfig) {
			c.ChunkSize = 2
			c.ValidateBeforeInsert = false
		})

		triples := []*model.Triple{
			testTriple("concept:A", "concept:X"),
			testTriple("concept:B", "concept:X"),
			testTriple("concept:C", "concept:X"),
			testTriple("concept:D", "concept:X"),
			testTriple("concept:E", "concept:X"),
		}
		batch := h.InsertTriples(context.Background(), triples)

		assert.Equal(t, 5, batch.SuccessfulTriples)
		assert.Zero(t, batch.FailedTriples)
		require.Equal(t, 3, endpoint.updateCount())
		assert.Contains(t, endpoint.updates[0], "concept:A")
		assert.Contains(t, endpoint.updates[0], "concept:B")
		assert.Contains(t, endpoint.updates[2], "concept:E")
		require.Len(t, batch.Operations, 3)
		assert.Equal(t, 2, batch.Operations[0].TriplesProcessed)
		assert.Equal(t, 1, batch.Operations[2].TriplesProcessed)
	})

	t.Run("Failed chunks are recorded without aborting the run", func(t *testing.T) {
		endpoint := &fakeEndpoint{failUpdates: true}
		h := newTestHandler(t, endpoint, func(c *WriterConfig) { c.ValidateBeforeInsert = false })

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
			testTriple("concept:B", "concept:X"),
		})

		assert.Zero(t, batch.SuccessfulTriples)
		assert.Equal(t, 2, batch.FailedTriples)
		require.NotEmpty(t, batch.Errors)
		assert.Contains(t, batch.Errors[0], "chunk 0")
		require.Len(t, batch.Operations, 1)
		assert.False(t, batch.Operations[0].Success)
	})

	t.Run("Store duplicates are skipped and counted successful", func(t *testing.T) {
		endpoint := &fakeEndpoint{askResult: true}
		h := newTestHandler(t, endpoint, nil)

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
		})

		assert.Equal(t, 1, batch.SuccessfulTriples)
		assert.Zero(t, batch.FailedTriples)
		assert.Zero(t, endpoint.updateCount())
	})

	t.Run("Store duplicates fail under the error policy", func(t *testing.T) {
		endpoint := &fakeEndpoint{askResult: true}
		h := newTestHandler(t, endpoint, func(c *WriterConfig) { c.HandleDuplicates = DuplicateError })

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
		})

		assert.Zero(t, batch.SuccessfulTriples)
		assert.Equal(t, 1, batch.FailedTriples)
		assert.NotEmpty(t, batch.Errors)
	})

	t.Run("Identical new triples in one batch are both inserted by default", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
			testTriple("concept:A", "concept:X"),
		})

		assert.Equal(t, 2, batch.SuccessfulTriples)
		require.Equal(t, 1, endpoint.updateCount())
		assert.Equal(t, 2, strings.Count(endpoint.lastUpdate(), "concept:A rdf:type concept:X ."))
	})

	t.Run("In-batch dedup closes the duplicate gap when enabled", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, func(c *WriterConfig) { c.DedupeInBatch = true })

		batch := h.InsertTriples(context.Background(), []*model.Triple{
			testTriple("concept:A", "concept:X"),
			testTriple("concept:A", "concept:X"),
		})

		assert.Equal(t, 2, batch.SuccessfulTriples)
		assert.Zero(t, batch.FailedTriples)
		require.Equal(t, 1, endpoint.updateCount())
		assert.Equal(t, 1, strings.Count(endpoint.lastUpdate(), "concept:A rdf:type concept:X ."))
	})

	t.Run("Empty batch is a no-op", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		batch := h.InsertTriples(context.Background(), nil)
		assert.Zero(t, batch.TotalTriples)
		assert.Zero(t, endpoint.updateCount())
	})
}

func TestDeleteTriple(t *testing.T) {
	t.Run("Issues a delete data statement", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		result, err := h.DeleteTriple(context.Background(), testTriple("concept:Go", "concept:Language"))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, model.OperationDelete, result.Operation)
		assert.Contains(t, endpoint.lastUpdate(), "DELETE DATA")
	})

	t.Run("Malformed triple is rejected", func(t *testing.T) {
		h := newTestHandler(t, &fakeEndpoint{}, nil)
		_, err := h.DeleteTriple(context.Background(), testTriple("concept:Go", ""))
		assert.Error(t, err)
	})
}

func TestUpdateTriple(t *testing.T) {
	t.Run("Replaces the old statement atomically", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		old := testTriple("concept:Go", "concept:Language")
		updated := testTriple("concept:Go", "concept:CompiledLanguage")

		result, err := h.UpdateTriple(context.Background(), old, updated)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, model.OperationUpdate, result.Operation)

		statement := endpoint.lastUpdate()
		assert.Contains(t, statement, "DELETE { concept:Go rdf:type concept:Language . }")
		assert.Contains(t, statement, "INSERT { concept:Go rdf:type concept:CompiledLanguage . }")
		assert.Contains(t, statement, "WHERE { OPTIONAL")
	})

	t.Run("Either malformed side is rejected", func(t *testing.T) {
		h := newTestHandler(t, &fakeEndpoint{}, nil)
		valid := testTriple("concept:Go", "concept:Language")

		_, err := h.UpdateTriple(context.Background(), testTriple("", "x"), valid)
		assert.Error(t, err)
		_, err = h.UpdateTriple(context.Background(), valid, testTriple("", "x"))
		assert.Error(t, err)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("Healthy store is connected and update capable", func(t *testing.T) {
		endpoint := &fakeEndpoint{}
		h := newTestHandler(t, endpoint, nil)

		status := h.HealthCheck(context.Background())
		assert.True(t, status.Connected)
		assert.True(t, status.UpdateCapable)
		assert.Empty(t, status.Error)
		assert.Equal(t, 2, endpoint.updateCount(), "probe insert and delete")
		assert.Contains(t, endpoint.updates[0], "health_check_")
	})

	t.Run("Query failure reports disconnected", func(t *testing.T) {
		endpoint := &fakeEndpoint{failAsk: true}
		h := newTestHandler(t, endpoint, nil)

		status := h.HealthCheck(context.Background())
		assert.False(t, status.Connected)
		assert.False(t, status.UpdateCapable)
		assert.NotEmpty(t, status.Error)
	})

	t.Run("Update failure reports connected but not update capable", func(t *testing.T) {
		endpoint := &fakeEndpoint{failUpdates: true}
		h := newTestHandler(t, endpoint, nil)

		status := h.HealthCheck(context.Background())
		assert.True(t, status.Connected)
		assert.False(t, status.UpdateCapable)
		assert.NotEmpty(t, status.Error)
	})
}
