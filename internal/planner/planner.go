// Package planner implements the Ingestion Planner: the three batching
// strategies (unwind-create, parallel-merge, parallel-create) that convert
// Graph Builder edge batches into graphstore.Mutations, with
// deadlock-avoiding endpoint grouping and two-level client/server batch
// sizing.
package planner

import (
	"github.com/maraichr/clangdgraph/internal/config"
	"github.com/maraichr/clangdgraph/internal/graphbuilder"
	"github.com/maraichr/clangdgraph/internal/graphstore"
	"github.com/maraichr/clangdgraph/internal/graphstore/neo4j"
	"github.com/maraichr/clangdgraph/internal/model"
)

// PlanDefines converts a Pass P3 edge batch into a Mutation under the
// configured strategy, grouping by file path (the shared endpoint every
// defines-edge touches) for the two parallel strategies.
func PlanDefines(edges []graphbuilder.DefinesEdge, cfg config.PlannerConfig) graphstore.Mutation {
	rows := make([]map[string]any, len(edges))
	fileOf := make([]string, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{
			"filePath": e.FilePath,
			"symbolId": e.SymbolID,
			"label":    e.Label,
		}
		fileOf[i] = e.FilePath
	}

	switch cfg.DefinesStrategy {
	case config.StrategyUnwindCreate:
		return graphstore.Mutation{Cypher: neo4j.DefinesUnwindCreate, Rows: rows}
	case config.StrategyParallelMerge:
		return groupedMutation(neo4j.DefinesGroupedMerge, rows, fileOf, cfg.CypherTxSize)
	default: // parallel-create; the orchestrator always starts from an empty graph
		return groupedMutation(neo4j.DefinesGroupedCreate, rows, fileOf, cfg.CypherTxSize)
	}
}

// PlanCalls converts the Call-Graph Extractor's output into a Mutation,
// grouping by caller file (the defines-edge's analogue of a shared
// endpoint for CALLS edges) for the two parallel strategies. Caller file
// is supplied by the orchestrator, which already has the Symbol map
// needed to resolve a caller id to its definition file.
func PlanCalls(relations []model.CallRelation, callerFile func(symbolID string) string, cfg config.PlannerConfig) graphstore.Mutation {
	rows := make([]map[string]any, len(relations))
	groupKey := make([]string, len(relations))
	for i, r := range relations {
		rows[i] = map[string]any{
			"callerId": r.CallerID,
			"calleeId": r.CalleeID,
			"line":     r.Site.StartLine,
			"column":   r.Site.StartCol,
		}
		groupKey[i] = callerFile(r.CallerID)
	}

	switch cfg.CallsStrategy {
	case config.StrategyUnwindCreate:
		return graphstore.Mutation{Cypher: neo4j.CallsUnwindCreate, Rows: rows}
	case config.StrategyParallelMerge:
		return groupedMutation(neo4j.CallsGroupedMerge, rows, groupKey, cfg.CypherTxSize)
	default:
		return groupedMutation(neo4j.CallsGroupedCreate, rows, groupKey, cfg.CypherTxSize)
	}
}

// groupedMutation partitions rows by groupKey[i] (every row sharing a key
// lands in the same group, so the Store may process distinct groups
// concurrently without two workers ever write-locking the same endpoint),
// then computes the server batch size B_s = max(1, cypherTxSize /
// avg-edges-per-group).
func groupedMutation(cypher string, rows []map[string]any, groupKey []string, cypherTxSize int) graphstore.Mutation {
	index := make(map[string]int)
	var groups [][]map[string]any
	for i, row := range rows {
		key := groupKey[i]
		if gi, ok := index[key]; ok {
			groups[gi] = append(groups[gi], row)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []map[string]any{row})
	}

	avgPerGroup := 1
	if len(groups) > 0 {
		avgPerGroup = max(1, len(rows)/len(groups))
	}
	serverBatchSize := max(1, cypherTxSize/avgPerGroup)

	return graphstore.Mutation{
		Cypher:          cypher,
		Groups:          groups,
		ServerBatchSize: serverBatchSize,
	}
}

// Include and node-upsert batches always use single-threaded unwind-merge;
// graphbuilder already builds those Mutations directly (FolderMutation,
// FileMutation, SymbolMutations, IncludeMutation), so the planner has
// nothing further to add for them.
