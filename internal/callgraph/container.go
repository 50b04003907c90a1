package callgraph

import "github.com/maraichr/clangdgraph/internal/model"

// ContainerStrategy resolves calls in O(N_refs) using each reference's
// container_id directly, with no spatial lookup needed. Used when the index
// producer stamped container provenance onto its reference records.
type ContainerStrategy struct{}

// Extract walks every Symbol's reference list once. A reference counts as
// a call when its kind is CallKindModern or CallKindModernRef and it names
// a non-zero container; the callee is the Symbol owning the reference list
// (References live on the symbol they target, per model.Symbol's
// ownership rule), the caller is the Symbol named by container_id.
func (ContainerStrategy) Extract(graph *model.SymbolGraph) []model.CallRelation {
	var relations []model.CallRelation
	for calleeID, callee := range graph.Symbols {
		for _, ref := range callee.References {
			if !model.IsModernCall(ref.Kind) || !ref.HasContainer() {
				continue
			}
			caller, ok := graph.Symbols[ref.ContainerID]
			if !ok {
				// The container points outside the indexed set. Dropped
				// silently (coreerr.UnresolvedContainer).
				continue
			}
			if !caller.IsFunction() {
				// A non-Function container is a data error in the index;
				// dropped the same as an unresolved one.
				continue
			}
			relations = append(relations, model.CallRelation{
				CallerID: caller.ID,
				CalleeID: calleeID,
				Site:     ref.Location,
			})
		}
	}
	return relations
}
