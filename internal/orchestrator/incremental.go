package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/maraichr/clangdgraph/internal/callgraph"
	"github.com/maraichr/clangdgraph/internal/config"
	"github.com/maraichr/clangdgraph/internal/graphbuilder"
	"github.com/maraichr/clangdgraph/internal/graphstore"
	neo4jstore "github.com/maraichr/clangdgraph/internal/graphstore/neo4j"
	"github.com/maraichr/clangdgraph/internal/indexparser"
	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/planner"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
	"github.com/maraichr/clangdgraph/internal/vcsdiff"
)

// RunIncremental updates an already-populated graph from the diff between
// two VCS refs: graph state for deleted and modified files is retracted,
// then the same builder passes re-run scoped to the changed-file set plus
// every source file transitively impacted by a changed header. The planner
// strategies are forced to parallel-merge because the database is not
// empty, and the create strategies' duplication semantics are only safe on a
// reset graph.
func (o *Orchestrator) RunIncremental(ctx context.Context, indexPath string, diffs vcsdiff.Provider, oldRef, newRef string) error {
	log := o.log.With(slog.String("run_id", uuid.NewString()))

	changes, err := diffs.Diff(ctx, oldRef, newRef)
	if err != nil {
		return err
	}
	if len(changes.Added)+len(changes.Modified)+len(changes.Deleted) == 0 {
		log.Info("no source changes between refs", slog.String("old", oldRef), slog.String("new", newRef))
		return nil
	}
	log.Info("change set computed",
		slog.Int("added", len(changes.Added)),
		slog.Int("modified", len(changes.Modified)),
		slog.Int("deleted", len(changes.Deleted)))

	if err := o.store.EnsureConstraints(ctx, graphstore.DefaultConstraints()); err != nil {
		return err
	}

	for _, path := range append(append([]string{}, changes.Deleted...), changes.Modified...) {
		if _, err := o.store.Query(ctx, neo4jstore.DeleteFileSubtree, map[string]any{"path": path}); err != nil {
			return err
		}
	}

	graph, err := indexparser.Parse(ctx, indexPath, indexparser.Options{
		Workers:      o.cfg.Parser.Workers,
		CacheDir:     o.cfg.Cache.Dir,
		CacheEnabled: o.cfg.Cache.Enabled,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	rawIncludes, err := o.spans.IncludeEdges(ctx)
	if err != nil {
		return err
	}
	if !graph.HasContainerField {
		spans, err := o.spans.FunctionSpans(ctx)
		if err != nil {
			return err
		}
		matched, unmatched := callgraph.AttachSpans(graph, spans)
		log.Info("attached function spans",
			slog.Int("matched", matched),
			slog.Int("unmatched", unmatched))
	}

	scope := changeScope(changes, graphbuilder.BuildIncludeEdges(rawIncludes, o.norm))
	log.Info("incremental scope resolved", slog.Int("files", len(scope)))

	scoped := o.scopeGraph(graph, scope)
	scopedIncludes := o.scopeIncludes(rawIncludes, scope)

	pcfg := o.cfg.Planner
	pcfg.DefinesStrategy = config.StrategyParallelMerge
	pcfg.CallsStrategy = config.StrategyParallelMerge

	hierarchy, err := graphbuilder.BuildHierarchy(scoped, scopedIncludes, o.norm)
	if err != nil {
		return err
	}
	if err := o.store.Submit(ctx, graphbuilder.FolderMutation(hierarchy, o.norm)); err != nil {
		return err
	}
	if err := o.store.Submit(ctx, graphbuilder.FileMutation(hierarchy, o.norm)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	nodes := graphbuilder.BuildSymbolNodes(scoped, o.norm)
	functions, dataStructures := graphbuilder.SymbolMutations(nodes)
	if err := o.store.Submit(ctx, functions); err != nil {
		return err
	}
	if err := o.store.Submit(ctx, dataStructures); err != nil {
		return err
	}
	log.Info("symbol nodes refreshed", slog.Int("nodes", len(nodes)))

	defines := graphbuilder.BuildDefinesEdges(scoped, o.norm)
	for batch := range clientBatches(len(defines), pcfg.IngestBatchSize) {
		if err := o.store.Submit(ctx, planner.PlanDefines(defines[batch.start:batch.end], pcfg)); err != nil {
			return err
		}
	}

	// Calls are extracted over the full graph, not the scoped one: a
	// retracted callee's incoming edges from unchanged callers were
	// destroyed with its node and must be re-merged, and those callers'
	// symbols live outside the scope.
	callerFile := o.callerFileResolver(graph)
	relations := relationsTouchingScope(callgraph.Select(graph).Extract(graph), callerFile, scope)
	for batch := range clientBatches(len(relations), pcfg.IngestBatchSize) {
		if err := o.store.Submit(ctx, planner.PlanCalls(relations[batch.start:batch.end], callerFile, pcfg)); err != nil {
			return err
		}
	}
	log.Info("call edges refreshed", slog.Int("relations", len(relations)))

	if err := o.store.Submit(ctx, graphbuilder.IncludeMutation(graphbuilder.BuildIncludeEdges(scopedIncludes, o.norm))); err != nil {
		return err
	}
	graph = nil

	if !pcfg.KeepOrphans {
		deleted, err := graphbuilder.CleanupOrphans(ctx, o.store)
		if err != nil {
			return err
		}
		log.Info("orphan cleanup finished", slog.Int("deleted", deleted))
	}

	log.Info("incremental update finished")
	return nil
}

// changeScope is the set of project-relative files whose graph state must
// be rebuilt: every added or modified file, plus every source file that
// transitively includes a changed header.
func changeScope(changes *vcsdiff.ChangeSet, includeEdges []graphbuilder.IncludeEdgeOut) map[string]struct{} {
	scope := make(map[string]struct{})
	var headers []string
	for _, p := range append(append([]string{}, changes.Added...), changes.Modified...) {
		scope[p] = struct{}{}
		if strings.HasSuffix(p, ".h") {
			headers = append(headers, p)
		}
	}
	for _, impacted := range graphbuilder.ImpactedByHeaderChange(includeEdges, headers) {
		for _, p := range impacted {
			scope[p] = struct{}{}
		}
	}
	return scope
}

// scopeGraph returns a SymbolGraph holding only symbols whose definition
// site falls inside the scope set.
func (o *Orchestrator) scopeGraph(graph *model.SymbolGraph, scope map[string]struct{}) *model.SymbolGraph {
	symbols := make(map[string]*model.Symbol)
	for id, sym := range graph.Symbols {
		site := sym.DefinitionSite()
		if site == nil {
			continue
		}
		rel, err := o.norm.RelativeFromURI(site.FileURI)
		if err != nil {
			continue
		}
		if _, ok := scope[rel]; ok {
			symbols[id] = sym
		}
	}
	return &model.SymbolGraph{Symbols: symbols, HasContainerField: graph.HasContainerField}
}

// scopeIncludes keeps only raw include edges whose including file is in
// scope, so an unchanged file's includes are not re-walked.
func (o *Orchestrator) scopeIncludes(raw []spanprovider.RawIncludeEdge, scope map[string]struct{}) []spanprovider.RawIncludeEdge {
	var out []spanprovider.RawIncludeEdge
	for _, e := range raw {
		rel, err := o.norm.RelativeFromAbs(e.IncludingAbsPath)
		if err != nil {
			continue
		}
		if _, ok := scope[rel]; ok {
			out = append(out, e)
		}
	}
	return out
}

// relationsTouchingScope keeps a CallRelation when either endpoint's
// definition file is in scope.
func relationsTouchingScope(relations []model.CallRelation, fileOf func(string) string, scope map[string]struct{}) []model.CallRelation {
	var out []model.CallRelation
	for _, r := range relations {
		if _, ok := scope[fileOf(r.CallerID)]; ok {
			out = append(out, r)
			continue
		}
		if _, ok := scope[fileOf(r.CalleeID)]; ok {
			out = append(out, r)
		}
	}
	return out
}
