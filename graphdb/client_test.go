package graphdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientAgainst(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&helper.GraphStoreConfiguration{Endpoint: server.URL}, nil)
}

func TestSelect(t *testing.T) {
	t.Run("Rows map variable names to bound values", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Contains(t, r.Form.Get("query"), "SELECT")
			w.Header().Set("Content-Type", "application/sparql-results+json")
			w.Write([]byte(`{
				"head": {"vars": ["s", "o"]},
				"results": {"bindings": [
					{"s": {"type": "uri", "value": "http://example.org/a"},
					 "o": {"type": "literal", "value": "hello"}}
				]}
			}`))
		})

		rows, err := client.Select(context.Background(), "SELECT ?s ?o WHERE { ?s ?p ?o }")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "http://example.org/a", rows[0]["s"])
		assert.Equal(t, "hello", rows[0]["o"])
	})

	t.Run("Empty result set yields no rows", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"head": {"vars": []}, "results": {"bindings": []}}`))
		})

		rows, err := client.Select(context.Background(), "SELECT * WHERE {}")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Non-2xx status is an error", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "malformed query", http.StatusBadRequest)
		})

		_, err := client.Select(context.Background(), "SELECT broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("Invalid response body is an error", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		_, err := client.Select(context.Background(), "SELECT * WHERE {}")
		assert.Error(t, err)
	})
}

func TestAsk(t *testing.T) {
	t.Run("Boolean result is returned", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"head": {}, "boolean": true}`))
		})

		found, err := client.Ask(context.Background(), "ASK {}")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Response without a boolean is an error", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"head": {}, "results": {"bindings": []}}`))
		})

		_, err := client.Ask(context.Background(), "ASK {}")
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Statement is form-encoded under the update parameter", func(t *testing.T) {
		var received string
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			received = r.Form.Get("update")
		})

		err := client.Update(context.Background(), "INSERT DATA { <a> <b> <c> }")
		require.NoError(t, err)
		assert.Equal(t, "INSERT DATA { <a> <b> <c> }", received)
	})

	t.Run("Refused update is an error", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "refused", http.StatusInternalServerError)
		})

		assert.Error(t, client.Update(context.Background(), "INSERT DATA {}"))
	})
}

func TestBasicAuth(t *testing.T) {
	t.Run("Credentials are sent when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "admin", user)
			assert.Equal(t, "secret", password)
			w.Write([]byte(`{"head": {}, "boolean": false}`))
		}))
		t.Cleanup(server.Close)

		client := NewClient(&helper.GraphStoreConfiguration{
			Endpoint: server.URL,
			User:     "admin",
			Password: "secret",
		}, nil)

		_, err := client.Ask(context.Background(), "ASK {}")
		require.NoError(t, err)
	})

	t.Run("No auth header without credentials", func(t *testing.T) {
		client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
			_, _, ok := r.BasicAuth()
			assert.False(t, ok)
			w.Write([]byte(`{"head": {}, "boolean": false}`))
		})

		_, err := client.Ask(context.Background(), "ASK {}")
		require.NoError(t, err)
	})
}
