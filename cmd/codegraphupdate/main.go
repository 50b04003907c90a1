// codegraphupdate performs an incremental update: it diffs two VCS refs,
// retracts graph state for changed files, and re-runs the builder passes
// scoped to the change set against an already-populated database.
//
//	codegraphupdate [flags] <index-path> <project-root>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maraichr/clangdgraph/internal/config"
	neo4jstore "github.com/maraichr/clangdgraph/internal/graphstore/neo4j"
	"github.com/maraichr/clangdgraph/internal/orchestrator"
	"github.com/maraichr/clangdgraph/internal/pathutil"
	"github.com/maraichr/clangdgraph/internal/spanprovider/treesitter"
	"github.com/maraichr/clangdgraph/internal/vcsdiff"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	workers := flag.Int("workers", cfg.Parser.Workers, "parser worker count")
	cypherTxSize := flag.Int("cypher-tx-size", cfg.Planner.CypherTxSize, "server-side transaction batch target")
	ingestBatchSize := flag.Int("ingest-batch-size", cfg.Planner.IngestBatchSize, "client-side submission batch target")
	keepOrphans := flag.Bool("keep-orphans", cfg.Planner.KeepOrphans, "skip orphan-node cleanup")
	oldRef := flag.String("old-ref", "", "VCS ref the graph currently reflects")
	newRef := flag.String("new-ref", "HEAD", "VCS ref to update the graph to")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <index-path> <project-root>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	indexPath, projectRoot := flag.Arg(0), flag.Arg(1)

	if *oldRef == "" {
		fmt.Fprintln(os.Stderr, "--old-ref is required")
		os.Exit(2)
	}

	cfg.Parser.Workers = *workers
	cfg.Planner.CypherTxSize = *cypherTxSize
	cfg.Planner.IngestBatchSize = *ingestBatchSize
	cfg.Planner.KeepOrphans = *keepOrphans

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	norm, err := pathutil.New(projectRoot)
	if err != nil {
		logger.Error("failed to resolve project root", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := neo4jstore.New(ctx, cfg.Neo4j)
	if err != nil {
		logger.Error("failed to connect to neo4j", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close(context.Background())
	logger.Info("connected to neo4j", slog.String("uri", cfg.Neo4j.URI))

	orch := orchestrator.New(store, treesitter.New(norm.Root()), norm, cfg, logger)
	diffs := vcsdiff.New(norm.Root())
	if err := orch.RunIncremental(ctx, indexPath, diffs, *oldRef, *newRef); err != nil {
		logger.Error("incremental update failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
