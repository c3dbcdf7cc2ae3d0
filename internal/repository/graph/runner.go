// Package graph reads the cell type ontology from Neo4j.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultDatabase is the Neo4j database queried when none is configured.
const DefaultDatabase = "neo4j"

// Runner executes a Cypher query and returns the fully buffered result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Config holds Neo4j connection parameters.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Executor runs queries through neo4j.ExecuteQuery.
type Executor struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewExecutor creates a driver for the configured instance.
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	db := cfg.Database
	if db == "" {
		db = DefaultDatabase
	}
	return &Executor{driver: driver, database: db}, nil
}

// Run executes a read query against the configured database.
func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	res, err := neo4j.ExecuteQuery(ctx, e.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return res, nil
}

// Ping verifies connectivity to the server.
func (e *Executor) Ping(ctx context.Context) error {
	if err := e.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify connectivity: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (e *Executor) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := e.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for graph: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the driver.
func (e *Executor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}
