package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/graphstore"
)

// groupWorkers bounds how many groups run concurrently. The Ingestion
// Planner's parallel-merge/parallel-create strategies rely on each group
// holding every edge that touches a shared endpoint, so two workers never
// contend for the same node's write lock regardless of this width.
const groupWorkers = 8

// Submit dispatches m.Cypher either as a single transaction over m.Rows, or
// (when m.Groups is set) as one transaction per batch of m.ServerBatchSize
// groups, run across groupWorkers goroutines so that groups (and therefore
// their shared endpoints) never overlap between concurrent writers.
func (a *Adapter) Submit(ctx context.Context, m graphstore.Mutation) error {
	if m.Groups == nil {
		return a.submitRows(ctx, m.Cypher, m.Rows)
	}
	return a.submitGroups(ctx, m.Cypher, m.Groups, m.ServerBatchSize)
}

func (a *Adapter) submitRows(ctx context.Context, cypher string, rows []map[string]any) error {
	session := a.session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, map[string]any{"rows": rows})
		return struct{}{}, err
	})
	if err != nil {
		return coreerr.Wrap(coreerr.IngestTimeout, "submitting unwind batch", err)
	}
	return nil
}

// submitGroups commits groups in batches of size batchSize (B_s), spread
// across groupWorkers concurrent sessions. Each transaction UNWINDs one
// batch-of-groups' rows, still via $rows, flattened. The grouping only
// controls which rows share a transaction and a goroutine, not the shape of
// the Cypher itself.
func (a *Adapter) submitGroups(ctx context.Context, cypher string, groups [][]map[string]any, batchSize int) error {
	if batchSize < 1 {
		batchSize = 1
	}

	var batches [][]map[string]any
	for i := 0; i < len(groups); i += batchSize {
		end := min(i+batchSize, len(groups))
		var rows []map[string]any
		for _, g := range groups[i:end] {
			rows = append(rows, g...)
		}
		batches = append(batches, rows)
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(groupWorkers)
	for _, batch := range batches {
		batch := batch
		grp.Go(func() error {
			return a.submitRows(gctx, cypher, batch)
		})
	}
	return grp.Wait()
}
