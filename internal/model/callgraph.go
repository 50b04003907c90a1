package model

// CallRelation is a directed caller -> callee edge at a specific call site.
// Duplicates are permitted between the same pair at distinct call sites;
// collapsing multiplicity is an Ingestion Planner concern, not the
// extractor's.
type CallRelation struct {
	CallerID string
	CalleeID string
	Site     Location
}
