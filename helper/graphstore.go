package helper

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// GraphStoreConfiguration holds the connection parameters for the SPARQL
// triple store. Query and Update endpoints are derived from the base
// endpoint URL ({endpoint}/query and {endpoint}/update).
type GraphStoreConfiguration struct {
	Endpoint  string
	User      string
	Password  string
	Namespace string
}

// NewGraphStoreConfiguration loads the graph store configuration from the
// environment. A .env file in the working directory is loaded first if
// present. Defaults target a local development triple store.
func NewGraphStoreConfiguration() (*GraphStoreConfiguration, error) {
	_ = godotenv.Load()

	config := &GraphStoreConfiguration{
		Endpoint:  envOrDefault("GRAPH_STORE_ENDPOINT", "http://localhost:3030/knowledge"),
		User:      envOrDefault("GRAPH_STORE_USER", ""),
		Password:  envOrDefault("GRAPH_STORE_PASSWORD", ""),
		Namespace: envOrDefault("GRAPH_STORE_NAMESPACE", "http://habitus33.io/concept/"),
	}

	if config.Endpoint == "" {
		return nil, fmt.Errorf("graph store endpoint must not be empty")
	}
	config.Endpoint = strings.TrimRight(config.Endpoint, "/")

	return config, nil
}

// QueryURL returns the SPARQL 1.1 Query endpoint.
func (c *GraphStoreConfiguration) QueryURL() string {
	return c.Endpoint + "/query"
}

// UpdateURL returns the SPARQL 1.1 Update endpoint.
func (c *GraphStoreConfiguration) UpdateURL() string {
	return c.Endpoint + "/update"
}
