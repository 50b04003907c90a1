package graphbuilder

import (
	"context"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/graphstore"
)

// cleanupOrphansCypher deletes every node with total degree zero. It runs
// last (Pass P5, optional) so every edge pass has already had a chance to
// give a node a neighbour.
const cleanupOrphansCypher = `MATCH (n) WHERE COUNT { (n)--() } = 0 DETACH DELETE n RETURN count(n) AS deleted`

// CleanupOrphans removes every zero-degree node and returns how many were
// deleted. Callers gate this behind config.PlannerConfig.KeepOrphans.
func CleanupOrphans(ctx context.Context, store graphstore.Store) (int, error) {
	rows, err := store.Query(ctx, cleanupOrphansCypher, nil)
	if err != nil {
		return 0, coreerr.Wrap(coreerr.IngestTimeout, "running orphan cleanup", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	deleted, _ := rows[0]["deleted"].(int64)
	return int(deleted), nil
}
