// Package neo4j is the concrete Graph Store Adapter: it implements
// graphstore.Store over github.com/neo4j/neo4j-go-driver/v5.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/maraichr/clangdgraph/internal/config"
	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/graphstore"
)

// Adapter wraps a Neo4j driver and implements graphstore.Store.
type Adapter struct {
	driver neo4j.DriverWithContext
}

// New creates an Adapter from configuration and verifies connectivity.
func New(ctx context.Context, cfg config.Neo4jConfig) (*Adapter, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "creating neo4j driver", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, coreerr.Wrap(coreerr.IoError, "verifying neo4j connectivity", err)
	}
	return &Adapter{driver: driver}, nil
}

// Close releases the underlying driver's resources.
func (a *Adapter) Close(ctx context.Context) error {
	return a.driver.Close(ctx)
}

func (a *Adapter) session(ctx context.Context) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

// Reset clears every node and edge. The Orchestrator calls this once per
// full run; it assumes exclusive access to the database.
func (a *Adapter) Reset(ctx context.Context) error {
	session := a.session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, ResetDatabase, nil)
		return struct{}{}, err
	})
	if err != nil {
		return coreerr.Wrap(coreerr.IoError, "resetting database", err)
	}
	return nil
}

// EnsureConstraints creates a uniqueness constraint per entry in spec,
// idempotently (`IF NOT EXISTS`).
func (a *Adapter) EnsureConstraints(ctx context.Context, spec graphstore.ConstraintSpec) error {
	session := a.session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, c := range spec.Constraints {
			cypher := fmt.Sprintf(
				"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
				c.Label, c.Property,
			)
			if _, err := tx.Run(ctx, cypher, nil); err != nil {
				return struct{}{}, fmt.Errorf("constraint %s(%s): %w", c.Label, c.Property, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return coreerr.Wrap(coreerr.IoError, "ensuring constraints", err)
	}
	return nil
}

// Query runs a Cypher statement and flattens every returned record into a
// map keyed by column name. It runs in a write-access session rather than a
// strictly read-only one because Orphan Cleanup's query both deletes and
// returns a count in one statement.
func (a *Adapter) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := a.session(ctx)
	defer session.Close(ctx)

	rows, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(records))
		for i, rec := range records {
			m := make(map[string]any, len(rec.Keys))
			for _, k := range rec.Keys {
				v, _ := rec.Get(k)
				m[k] = v
			}
			out[i] = m
		}
		return out, nil
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "running query", err)
	}
	return rows.([]map[string]any), nil
}

// CreateVectorIndex is exposed for the downstream RAG stage; the core never
// calls it.
func (a *Adapter) CreateVectorIndex(ctx context.Context, label, property string, dims int) error {
	session := a.session(ctx)
	defer session.Close(ctx)

	cypher := fmt.Sprintf(
		`CREATE VECTOR INDEX IF NOT EXISTS FOR (n:%s) ON (n.%s)
OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: $dims, `+"`vector.similarity_function`"+`: 'cosine'}}`,
		label, property,
	)
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, map[string]any{"dims": dims})
		return struct{}{}, err
	})
	if err != nil {
		return coreerr.Wrap(coreerr.IoError, "creating vector index", err)
	}
	return nil
}
