package config

import (
	"os"
	"strconv"
)

// Config aggregates every environment-tunable knob of the ingestion pipeline.
// CLI flags in cmd/ take precedence over the values loaded here.
type Config struct {
	Neo4j   Neo4jConfig
	Parser  ParserConfig
	Planner PlannerConfig
	Cache   CacheConfig
}

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

// ParserConfig controls the YAML index parser's worker pool.
type ParserConfig struct {
	Workers int
}

// DefinesStrategy selects how DEFINES (and, independently, CALLS) edges are
// submitted to the graph store.
type DefinesStrategy string

const (
	StrategyUnwindCreate   DefinesStrategy = "unwind-create"
	StrategyParallelMerge  DefinesStrategy = "parallel-merge"
	StrategyParallelCreate DefinesStrategy = "parallel-create"
)

// PlannerConfig controls batching and edge-ingestion strategy.
type PlannerConfig struct {
	DefinesStrategy DefinesStrategy
	CallsStrategy   DefinesStrategy
	CypherTxSize    int
	IngestBatchSize int
	KeepOrphans     bool
}

// CacheConfig controls the on-disk parsed-index cache.
type CacheConfig struct {
	Dir     string
	Enabled bool
}

func Load() (*Config, error) {
	cypherTxSize := getEnvInt("CODEGRAPH_CYPHER_TX_SIZE", 2000)
	workers := getEnvInt("CODEGRAPH_PARSE_WORKERS", 1)

	cfg := &Config{
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:     getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "codegraph"),
		},
		Parser: ParserConfig{
			Workers: workers,
		},
		Planner: PlannerConfig{
			DefinesStrategy: DefinesStrategy(getEnv("CODEGRAPH_DEFINES_STRATEGY", string(StrategyParallelCreate))),
			CallsStrategy:   DefinesStrategy(getEnv("CODEGRAPH_CALLS_STRATEGY", string(StrategyParallelCreate))),
			CypherTxSize:    cypherTxSize,
			IngestBatchSize: getEnvInt("CODEGRAPH_INGEST_BATCH_SIZE", cypherTxSize*workers),
			KeepOrphans:     getEnvBool("CODEGRAPH_KEEP_ORPHANS", false),
		},
		Cache: CacheConfig{
			Dir:     getEnv("CODEGRAPH_CACHE_DIR", ".codegraph-cache"),
			Enabled: getEnvBool("CODEGRAPH_CACHE_ENABLED", true),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
