// Package callgraph resolves each call-site Reference to a CallRelation,
// choosing between two strategies: Container when the index carries
// container provenance, Spatial otherwise.
package callgraph

import "github.com/maraichr/clangdgraph/internal/model"

// Extractor produces the full set of CallRelations from a frozen
// SymbolGraph. Both strategies implement this single interface so the
// Orchestrator never branches on which one is in play.
type Extractor interface {
	Extract(graph *model.SymbolGraph) []model.CallRelation
}

// Select returns the Container strategy when the parser observed a
// non-zero container id anywhere, the Spatial strategy otherwise. The
// choice is made once, before extraction; nothing measures and switches
// mid-run.
func Select(graph *model.SymbolGraph) Extractor {
	if graph.HasContainerField {
		return ContainerStrategy{}
	}
	return SpatialStrategy{}
}
