// Package graphstore defines the minimal write-oriented interface the
// Ingestion Planner and Graph Builder passes mutate through, so the rest of
// the pipeline never imports a concrete database driver directly.
package graphstore

import "context"

// Constraint is a single uniqueness constraint target: a label plus the
// property that must be unique within it.
type Constraint struct {
	Label    string
	Property string
}

// ConstraintSpec is the full set of uniqueness constraints the Orchestrator
// asks the Store to ensure exist before any write pass runs.
type ConstraintSpec struct {
	Constraints []Constraint
}

// Mutation is one unit of work submitted to a Store. Cypher is parameterised
// over a $rows list. When Groups is nil, Submit runs Cypher once over the
// full Rows list inside a single transaction (the low-contention,
// single-threaded path used for CONTAINS/INCLUDES edges and unwind-create).
// When Groups is set, Rows is ignored and Submit instead partitions work by
// group. Each group holds every row touching one shared endpoint node, so
// the Store may process groups concurrently without two workers ever
// write-locking the same endpoint (see the Ingestion Planner's
// parallel-merge/parallel-create strategies).
type Mutation struct {
	Cypher          string
	Rows            []map[string]any
	Groups          [][]map[string]any
	ServerBatchSize int // B_s: groups committed per server-side transaction when Groups is set
}

// DefaultConstraints is the uniqueness constraint set clangdgraph relies on:
// File/Folder keyed by path, Function/DataStructure keyed by id.
func DefaultConstraints() ConstraintSpec {
	return ConstraintSpec{Constraints: []Constraint{
		{Label: "File", Property: "path"},
		{Label: "Folder", Property: "path"},
		{Label: "Function", Property: "id"},
		{Label: "DataStructure", Property: "id"},
	}}
}

// Store is the abstract Graph Store Adapter. The pipeline never talks to a
// database driver except through this interface.
type Store interface {
	// Reset clears all nodes and edges. The Orchestrator calls this once at
	// the start of a full run; it assumes exclusive access to the database.
	Reset(ctx context.Context) error
	// EnsureConstraints creates the uniqueness constraints in spec, idempotently.
	EnsureConstraints(ctx context.Context, spec ConstraintSpec) error
	// Submit executes one Mutation. See Mutation's doc for the
	// single-threaded vs. grouped-parallel dispatch.
	Submit(ctx context.Context, m Mutation) error
	// Query runs a Cypher statement and returns its rows. Used by Orphan
	// Cleanup (P5), which both deletes and returns a count in one
	// statement, and by the incremental updater to retract a changed file.
	Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	// CreateVectorIndex is needed only by the downstream RAG stage; the
	// ingestion pipeline itself never calls it.
	CreateVectorIndex(ctx context.Context, label, property string, dims int) error
}
