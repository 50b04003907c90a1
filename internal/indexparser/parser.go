// Package indexparser turns a clangd YAML index file into a fully
// cross-linked model.SymbolGraph: a single-threaded chunking pass, W
// parallel pure-function parse workers, a merge step, and a single-threaded
// link phase, fronted by a freshness-keyed on-disk cache.
package indexparser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/model"
)

// Options configures a single Parse call.
type Options struct {
	Workers      int
	CacheDir     string
	CacheEnabled bool
	Logger       *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Parse reads indexPath and returns a fully cross-linked SymbolGraph.
func Parse(ctx context.Context, indexPath string, opts Options) (*model.SymbolGraph, error) {
	log := opts.logger()

	info, err := os.Stat(indexPath)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "stat index file", err)
	}

	if opts.CacheEnabled {
		if graph, ok := tryLoadCache(indexPath, info, opts.CacheDir); ok {
			log.Info("index parser cache hit", slog.String("path", indexPath))
			return graph, nil
		}
	}

	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "reading index file", err)
	}
	raw = bytes.ReplaceAll(raw, []byte{'\t'}, []byte{' '})

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	byteChunks := chunks(raw, workers)
	log.Info("index parser chunked input", slog.Int("chunks", len(byteChunks)), slog.Int("workers", workers))

	results := make([]workerResult, len(byteChunks))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, chunk := range byteChunks {
		i, chunk := i, chunk
		grp.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = coreerr.New(coreerr.WorkerCrashed, fmt.Sprintf("parse worker panicked: %v", r))
				}
			}()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := parseChunk(chunk)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	graph, err := merge(results)
	if err != nil {
		return nil, err
	}
	log.Info("index parser merged symbols",
		slog.Int("symbols", graph.Len()),
		slog.Bool("has_container_field", graph.HasContainerField))

	if opts.CacheEnabled {
		if err := writeCache(indexPath, info, opts.CacheDir, graph); err != nil {
			log.Warn("index parser cache write failed", slog.String("error", err.Error()))
		}
	}

	return graph, nil
}

// merge concatenates per-worker symbol maps (failing on id collision) and
// runs the single-threaded link phase that pushes every unlinked reference
// into its target Symbol's reference list.
func merge(results []workerResult) (*model.SymbolGraph, error) {
	merged := make(map[string]*model.Symbol)
	var unlinked []unlinkedRef

	for _, res := range results {
		for id, sym := range res.symbols {
			if _, exists := merged[id]; exists {
				return nil, coreerr.New(coreerr.DuplicateSymbolId, id)
			}
			merged[id] = sym
		}
		unlinked = append(unlinked, res.unlinked...)
	}

	graph := &model.SymbolGraph{Symbols: merged}
	for _, u := range unlinked {
		if u.ref.HasContainer() {
			graph.HasContainerField = true
		}
		sym, ok := merged[u.targetID]
		if !ok {
			// A !Refs document with no matching !Symbol is tolerated;
			// document order in the index stream is not guaranteed either
			// way.
			continue
		}
		sym.References = append(sym.References, u.ref)
	}

	return graph, nil
}
