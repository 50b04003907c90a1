package planner

import (
	"fmt"
	"testing"

	"github.com/maraichr/clangdgraph/internal/config"
	"github.com/maraichr/clangdgraph/internal/graphbuilder"
	"github.com/maraichr/clangdgraph/internal/graphstore/neo4j"
	"github.com/maraichr/clangdgraph/internal/model"
)

func definesFixture() []graphbuilder.DefinesEdge {
	// 30 edges over 3 files, 10 per file.
	var edges []graphbuilder.DefinesEdge
	for f := 0; f < 3; f++ {
		for i := 0; i < 10; i++ {
			edges = append(edges, graphbuilder.DefinesEdge{
				FilePath: fmt.Sprintf("src/f%d.c", f),
				SymbolID: fmt.Sprintf("%016x", f*10+i),
				Label:    "Function",
			})
		}
	}
	return edges
}

func TestPlanDefines_UnwindCreateIsUngrouped(t *testing.T) {
	cfg := config.PlannerConfig{DefinesStrategy: config.StrategyUnwindCreate, CypherTxSize: 2000}
	m := PlanDefines(definesFixture(), cfg)

	if m.Groups != nil {
		t.Fatal("unwind-create must not group")
	}
	if len(m.Rows) != 30 {
		t.Fatalf("expected 30 rows, got %d", len(m.Rows))
	}
	if m.Cypher != neo4j.DefinesUnwindCreate {
		t.Fatal("unexpected cypher for unwind-create")
	}
}

func TestPlanDefines_ParallelStrategiesGroupByFile(t *testing.T) {
	for _, strategy := range []config.DefinesStrategy{config.StrategyParallelMerge, config.StrategyParallelCreate} {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := config.PlannerConfig{DefinesStrategy: strategy, CypherTxSize: 2000}
			m := PlanDefines(definesFixture(), cfg)

			if len(m.Groups) != 3 {
				t.Fatalf("expected 3 groups (one per file), got %d", len(m.Groups))
			}
			for _, group := range m.Groups {
				file := group[0]["filePath"]
				for _, row := range group {
					if row["filePath"] != file {
						t.Fatalf("group mixes files %v and %v", file, row["filePath"])
					}
				}
			}
		})
	}
}

func TestPlanDefines_MergeVersusCreateCypher(t *testing.T) {
	merge := PlanDefines(definesFixture(), config.PlannerConfig{
		DefinesStrategy: config.StrategyParallelMerge, CypherTxSize: 2000,
	})
	create := PlanDefines(definesFixture(), config.PlannerConfig{
		DefinesStrategy: config.StrategyParallelCreate, CypherTxSize: 2000,
	})
	if merge.Cypher != neo4j.DefinesGroupedMerge {
		t.Fatal("parallel-merge picked the wrong cypher")
	}
	if create.Cypher != neo4j.DefinesGroupedCreate {
		t.Fatal("parallel-create picked the wrong cypher")
	}
}

func TestPlanDefines_ServerBatchSizeFormula(t *testing.T) {
	// 30 rows over 3 groups: avg 10 edges/group. B_s = max(1, 40/10) = 4.
	cfg := config.PlannerConfig{DefinesStrategy: config.StrategyParallelCreate, CypherTxSize: 40}
	m := PlanDefines(definesFixture(), cfg)
	if m.ServerBatchSize != 4 {
		t.Fatalf("expected server batch size 4, got %d", m.ServerBatchSize)
	}

	// A tx size smaller than one group still commits one group at a time.
	cfg.CypherTxSize = 3
	m = PlanDefines(definesFixture(), cfg)
	if m.ServerBatchSize != 1 {
		t.Fatalf("expected server batch size floor of 1, got %d", m.ServerBatchSize)
	}
}

func TestPlanCalls_GroupsByCallerFile(t *testing.T) {
	relations := []model.CallRelation{
		{CallerID: "a", CalleeID: "b", Site: model.Location{StartLine: 12, StartCol: 9}},
		{CallerID: "a", CalleeID: "c", Site: model.Location{StartLine: 14, StartCol: 3}},
		{CallerID: "d", CalleeID: "b", Site: model.Location{StartLine: 7, StartCol: 1}},
	}
	callerFile := func(id string) string {
		if id == "d" {
			return "src/other.c"
		}
		return "src/x.c"
	}

	cfg := config.PlannerConfig{CallsStrategy: config.StrategyParallelCreate, CypherTxSize: 2000}
	m := PlanCalls(relations, callerFile, cfg)

	if len(m.Groups) != 2 {
		t.Fatalf("expected 2 groups (one per caller file), got %d", len(m.Groups))
	}
	total := 0
	for _, g := range m.Groups {
		total += len(g)
	}
	if total != 3 {
		t.Fatalf("grouping lost rows: %d of 3", total)
	}
}

func TestPlanCalls_UnwindCreatePreservesSites(t *testing.T) {
	relations := []model.CallRelation{
		{CallerID: "a", CalleeID: "b", Site: model.Location{StartLine: 12, StartCol: 9}},
	}
	cfg := config.PlannerConfig{CallsStrategy: config.StrategyUnwindCreate, CypherTxSize: 2000}
	m := PlanCalls(relations, func(string) string { return "src/x.c" }, cfg)

	if m.Groups != nil {
		t.Fatal("unwind-create must not group")
	}
	if m.Rows[0]["line"] != 12 || m.Rows[0]["column"] != 9 {
		t.Fatalf("call site dropped from row: %+v", m.Rows[0])
	}
}
