// codegraphindex performs a full build: it resets the graph database, parses
// a clangd YAML index, and materialises the code knowledge graph.
//
//	codegraphindex [flags] <index-path> <project-root>
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
	definesStrategy := flag.String("defines-strategy", string(cfg.Planner.DefinesStrategy),
		"defines-edge strategy: unwind-create, parallel-merge or parallel-create")
	callsStrategy := flag.String("calls-strategy", string(cfg.Planner.CallsStrategy),
		"calls-edge strategy: unwind-create, parallel-merge or parallel-create")
	cypherTxSize := flag.Int("cypher-tx-size", cfg.Planner.CypherTxSize, "server-side transaction batch target")
	ingestBatchSize := flag.Int("ingest-batch-size", cfg.Planner.IngestBatchSize, "client-side submission batch target")
	keepOrphans := flag.Bool("keep-orphans", cfg.Planner.KeepOrphans, "skip orphan-node cleanup")
	commitID := flag.String("commit", "", "VCS commit id to stamp onto the Project node")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <index-path> <project-root>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	indexPath, projectRoot := flag.Arg(0), flag.Arg(1)

	for _, s := range []string{*definesStrategy, *callsStrategy} {
		switch config.DefinesStrategy(s) {
		case config.StrategyUnwindCreate, config.StrategyParallelMerge, config.StrategyParallelCreate:
		default:
			fmt.Fprintf(os.Stderr, "unknown strategy %q\n", s)
			os.Exit(2)
		}
	}

	cfg.Parser.Workers = *workers
	cfg.Planner.DefinesStrategy = config.DefinesStrategy(*definesStrategy)
	cfg.Planner.CallsStrategy = config.DefinesStrategy(*callsStrategy)
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
	if err := orch.Run(ctx, indexPath, *commitID); err != nil {
		logger.Error("full build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
