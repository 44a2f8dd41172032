// Package graphdb provides the SPARQL client and the triple store write
// handler for the knowledge graph.
package graphdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Camelus33/tedin-sub000/helper"
)

// Client is a thin HTTP wrapper around a SPARQL 1.1 Query/Update endpoint
// pair. It holds no business logic and no mutable state, so a single
// instance is safe for reuse across calls.
type Client struct {
	queryURL   string
	updateURL  string
	user       string
	password   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a SPARQL client from the given configuration.
func NewClient(config *helper.GraphStoreConfiguration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		queryURL:  config.QueryURL(),
		updateURL: config.UpdateURL(),
		user:      config.User,
		password:  config.Password,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: logger,
	}
}

// sparqlResponse covers both SELECT and ASK result documents in the SPARQL
// 1.1 JSON results format.
type sparqlResponse struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Boolean *bool `json:"boolean,omitempty"`
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Select executes a SPARQL SELECT query and returns one map of variable
// name to bound value per solution row.
func (c *Client) Select(ctx context.Context, query string) ([]map[string]string, error) {
	body, err := c.post(ctx, c.queryURL, "query", query)
	if err != nil {
		return nil, helper.NewError("sparql select", err)
	}

	var parsed sparqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, helper.NewError("parse select results", err)
	}

	rows := make([]map[string]string, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(map[string]string, len(binding))
		for name, term := range binding {
			row[name] = term.Value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Ask executes a SPARQL ASK query and returns the boolean result.
func (c *Client) Ask(ctx context.Context, query string) (bool, error) {
	body, err := c.post(ctx, c.queryURL, "query", query)
	if err != nil {
		return false, helper.NewError("sparql ask", err)
	}

	var parsed sparqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, helper.NewError("parse ask result", err)
	}
	if parsed.Boolean == nil {
		return false, helper.NewError("parse ask result", fmt.Errorf("response carries no boolean"))
	}

	return *parsed.Boolean, nil
}

// Update executes a SPARQL UPDATE statement.
func (c *Client) Update(ctx context.Context, update string) error {
	if _, err := c.post(ctx, c.updateURL, "update", update); err != nil {
		return helper.NewError("sparql update", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, param string, statement string) ([]byte, error) {
	form := url.Values{}
	form.Set(param, statement)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
