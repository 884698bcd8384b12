package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/roach88/graphstmt/internal/engine"
)

var _ engine.Session = (*Store)(nil)

// Config selects the server, credentials and database.
type Config struct {
	// URI is a neo4j:// or bolt:// URI, optionally with +s or +ssc.
	URI      string
	Username string
	Password string

	// Database is the target database. Empty means the server default.
	Database string
}

// QueryRunner executes one auto-committed query and returns all of its
// records.
type QueryRunner interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// Store is a Neo4j-backed engine.Session.
//
// Thread-safety: safe for concurrent use; the driver pools connections.
type Store struct {
	runner QueryRunner
}

// New wraps an existing QueryRunner.
func New(runner QueryRunner) *Store {
	return &Store{runner: runner}
}

// Open creates a driver for cfg and verifies that the server is reachable.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" || cfg.Password != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}

	return New(&driverRunner{driver: driver, database: cfg.Database}), nil
}

// Execute runs query with params and returns its records.
// Driver and server errors are returned unwrapped.
func (s *Store) Execute(ctx context.Context, query string, params map[string]any) (engine.Result, error) {
	res, err := s.runner.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return toRecords(res), nil
}

// Close releases the driver and its connections.
func (s *Store) Close(ctx context.Context) error {
	return s.runner.Close(ctx)
}

func toRecords(res *neo4j.EagerResult) engine.Records {
	records := make(engine.Records, 0, len(res.Records))
	for _, r := range res.Records {
		rec := make(engine.Record, len(r.Keys))
		for i, key := range r.Keys {
			rec[key] = r.Values[i]
		}
		records = append(records, rec)
	}
	return records
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverRunner) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}
	return neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer, opts...)
}

func (d *driverRunner) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
