// Package orchestrator sequences the ingestion pipeline: parse, file
// hierarchy, symbol nodes, defines edges, call graph, include edges, orphan
// cleanup. Each pass completes before the next reads its output, with a
// cooperative cancellation check between passes.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/maraichr/clangdgraph/internal/callgraph"
	"github.com/maraichr/clangdgraph/internal/config"
	"github.com/maraichr/clangdgraph/internal/graphbuilder"
	"github.com/maraichr/clangdgraph/internal/graphstore"
	"github.com/maraichr/clangdgraph/internal/indexparser"
	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/pathutil"
	"github.com/maraichr/clangdgraph/internal/planner"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

// Orchestrator wires the pipeline's collaborators together for one or more
// runs against the same project and database.
type Orchestrator struct {
	store graphstore.Store
	spans spanprovider.Provider
	norm  *pathutil.Normaliser
	cfg   *config.Config
	log   *slog.Logger
}

// New returns an Orchestrator over the given collaborators.
func New(store graphstore.Store, spans spanprovider.Provider, norm *pathutil.Normaliser, cfg *config.Config, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{store: store, spans: spans, norm: norm, cfg: cfg, log: log}
}

// Run performs a full build: reset the database, parse the index, and run
// passes P1 through P5 in order. commitID is stamped onto the Project node
// when non-empty.
func (o *Orchestrator) Run(ctx context.Context, indexPath, commitID string) error {
	log := o.log.With(slog.String("run_id", uuid.NewString()))

	if err := o.store.Reset(ctx); err != nil {
		return err
	}
	if err := o.store.EnsureConstraints(ctx, graphstore.DefaultConstraints()); err != nil {
		return err
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
	if err := ctx.Err(); err != nil {
		return err
	}

	rawIncludes, err := o.spans.IncludeEdges(ctx)
	if err != nil {
		return err
	}

	if !graph.HasContainerField {
		// The Spatial strategy needs every Function's body span attached
		// before extraction; the Container strategy never consults spans.
		spans, err := o.spans.FunctionSpans(ctx)
		if err != nil {
			return err
		}
		matched, unmatched := callgraph.AttachSpans(graph, spans)
		log.Info("attached function spans",
			slog.Int("matched", matched),
			slog.Int("unmatched", unmatched))
	}

	if err := o.ingestGraph(ctx, graph, rawIncludes, commitID, o.cfg.Planner, log); err != nil {
		return err
	}
	graph = nil // release the symbol map before any downstream stage

	if !o.cfg.Planner.KeepOrphans {
		deleted, err := graphbuilder.CleanupOrphans(ctx, o.store)
		if err != nil {
			return err
		}
		log.Info("orphan cleanup finished", slog.Int("deleted", deleted))
	}

	log.Info("full build finished")
	return nil
}

// ingestGraph runs passes P1-P4 plus the call-graph pass against a frozen
// symbol graph for the full-build entry point. RunIncremental does not use
// it; it runs its own change-scoped sequence of the same passes.
func (o *Orchestrator) ingestGraph(ctx context.Context, graph *model.SymbolGraph, rawIncludes []spanprovider.RawIncludeEdge, commitID string, pcfg config.PlannerConfig, log *slog.Logger) error {
	hierarchy, err := graphbuilder.BuildHierarchy(graph, rawIncludes, o.norm)
	if err != nil {
		return err
	}
	if err := o.store.Submit(ctx, graphbuilder.ProjectMutation(o.norm, commitID)); err != nil {
		return err
	}
	if err := o.store.Submit(ctx, graphbuilder.FolderMutation(hierarchy, o.norm)); err != nil {
		return err
	}
	if err := o.store.Submit(ctx, graphbuilder.FileMutation(hierarchy, o.norm)); err != nil {
		return err
	}
	log.Info("file hierarchy ingested",
		slog.Int("folders", len(hierarchy.Folders)),
		slog.Int("files", len(hierarchy.Files)))
	if err := ctx.Err(); err != nil {
		return err
	}

	nodes := graphbuilder.BuildSymbolNodes(graph, o.norm)
	functions, dataStructures := graphbuilder.SymbolMutations(nodes)
	if err := o.store.Submit(ctx, functions); err != nil {
		return err
	}
	if err := o.store.Submit(ctx, dataStructures); err != nil {
		return err
	}
	log.Info("symbol nodes ingested", slog.Int("nodes", len(nodes)))
	if err := ctx.Err(); err != nil {
		return err
	}

	defines := graphbuilder.BuildDefinesEdges(graph, o.norm)
	for batch := range clientBatches(len(defines), pcfg.IngestBatchSize) {
		chunk := defines[batch.start:batch.end]
		if err := o.store.Submit(ctx, planner.PlanDefines(chunk, pcfg)); err != nil {
			return err
		}
		log.Info("defines edges submitted", slog.Int("done", batch.end), slog.Int("total", len(defines)))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	relations := callgraph.Select(graph).Extract(graph)
	callerFile := o.callerFileResolver(graph)
	for batch := range clientBatches(len(relations), pcfg.IngestBatchSize) {
		chunk := relations[batch.start:batch.end]
		if err := o.store.Submit(ctx, planner.PlanCalls(chunk, callerFile, pcfg)); err != nil {
			return err
		}
		log.Info("calls edges submitted", slog.Int("done", batch.end), slog.Int("total", len(relations)))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	includeEdges := graphbuilder.BuildIncludeEdges(rawIncludes, o.norm)
	if err := o.store.Submit(ctx, graphbuilder.IncludeMutation(includeEdges)); err != nil {
		return err
	}
	log.Info("include edges ingested", slog.Int("edges", len(includeEdges)))
	return nil
}

// callerFileResolver maps a caller symbol id to its project-relative
// definition file, the grouping key the planner's parallel CALLS
// strategies partition by.
func (o *Orchestrator) callerFileResolver(graph *model.SymbolGraph) func(string) string {
	return func(symbolID string) string {
		sym, ok := graph.Symbols[symbolID]
		if !ok {
			return ""
		}
		site := sym.DefinitionSite()
		if site == nil {
			return ""
		}
		rel, err := o.norm.RelativeFromURI(site.FileURI)
		if err != nil {
			return ""
		}
		return rel
	}
}

type batchRange struct{ start, end int }

// clientBatches yields [start,end) index ranges of size at most batchSize
// over n items: the planner's client-side batch level B_c, which controls
// submission (and therefore progress-log) granularity.
func clientBatches(n, batchSize int) func(func(batchRange) bool) {
	if batchSize < 1 {
		batchSize = n
	}
	return func(yield func(batchRange) bool) {
		if n == 0 {
			return
		}
		for start := 0; start < n; start += batchSize {
			end := min(start+batchSize, n)
			if !yield(batchRange{start: start, end: end}) {
				return
			}
		}
	}
}
