package graphbuilder

import (
	"testing"

	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/pathutil"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

func newNormaliser(t *testing.T) *pathutil.Normaliser {
	t.Helper()
	norm, err := pathutil.New("/proj")
	if err != nil {
		t.Fatal(err)
	}
	return norm
}

func defAt(uri string, line, col int) *model.Location {
	return &model.Location{FileURI: uri, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1}
}

func testGraph() *model.SymbolGraph {
	return &model.SymbolGraph{Symbols: map[string]*model.Symbol{
		"AAAAAAAAAAAAAAAA": {
			ID: "AAAAAAAAAAAAAAAA", Name: "A", Kind: model.KindFunction,
			Definition: defAt("file:///proj/src/x.c", 10, 5),
		},
		"1111111111111111": {
			ID: "1111111111111111", Name: "config", Kind: model.KindStruct,
			Definition: defAt("file:///proj/include/deep/types.h", 3, 8),
		},
		"2222222222222222": {
			ID: "2222222222222222", Name: "counter", Kind: model.KindVariable,
			Definition: defAt("file:///proj/src/x.c", 5, 1),
		},
		"3333333333333333": {
			ID: "3333333333333333", Name: "external", Kind: model.KindFunction,
			Definition: defAt("file:///usr/include/stdio.h", 100, 1),
		},
		"4444444444444444": {
			ID: "4444444444444444", Name: "siteless", Kind: model.KindFunction,
		},
	}}
}

func TestBuildHierarchy_FoldersParentFirst(t *testing.T) {
	norm := newNormaliser(t)
	h, err := BuildHierarchy(testGraph(), nil, norm)
	if err != nil {
		t.Fatal(err)
	}

	depthOf := func(path string) int {
		d := 1
		for _, c := range path {
			if c == '/' {
				d++
			}
		}
		return d
	}
	for i := 1; i < len(h.Folders); i++ {
		if depthOf(h.Folders[i-1].Path) > depthOf(h.Folders[i].Path) {
			t.Fatalf("folders not in ascending depth order: %q before %q",
				h.Folders[i-1].Path, h.Folders[i].Path)
		}
	}

	want := map[string]bool{"src": false, "include": false, "include/deep": false}
	for _, f := range h.Folders {
		if _, ok := want[f.Path]; ok {
			want[f.Path] = true
		} else {
			t.Fatalf("unexpected folder %q", f.Path)
		}
	}
	for path, seen := range want {
		if !seen {
			t.Fatalf("missing folder %q", path)
		}
	}
}

func TestBuildHierarchy_ExternalPathsFiltered(t *testing.T) {
	norm := newNormaliser(t)
	h, err := BuildHierarchy(testGraph(), nil, norm)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range h.Files {
		if f.Path == "" || f.Path[0] == '/' || f.Path == ".." {
			t.Fatalf("non-relative file path %q leaked into hierarchy", f.Path)
		}
	}
	for _, f := range h.Files {
		if f.Path == "usr/include/stdio.h" || f.Path == "../usr/include/stdio.h" {
			t.Fatalf("external file %q should have been filtered", f.Path)
		}
	}
}

func TestBuildHierarchy_InvisibleHeaderFromIncludes(t *testing.T) {
	// include/h.h defines no symbol but is included by src/x.c: it must
	// still get a file node.
	norm := newNormaliser(t)
	includes := []spanprovider.RawIncludeEdge{
		{IncludingAbsPath: "/proj/src/x.c", IncludedAbsPath: "/proj/include/h.h"},
	}
	h, err := BuildHierarchy(testGraph(), includes, norm)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range h.Files {
		if f.Path == "include/h.h" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a file node for the invisible header include/h.h")
	}
}

func TestBuildSymbolNodes_SkipsNonNodeKinds(t *testing.T) {
	norm := newNormaliser(t)
	nodes := BuildSymbolNodes(testGraph(), norm)

	byID := make(map[string]SymbolNode)
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if _, ok := byID["2222222222222222"]; ok {
		t.Fatal("Variable symbol must not become a node")
	}

	fn, ok := byID["AAAAAAAAAAAAAAAA"]
	if !ok {
		t.Fatal("expected a node for Function A")
	}
	if fn.Label != "Function" || fn.Path != "src/x.c" || fn.Line != 10 {
		t.Fatalf("unexpected node %+v", fn)
	}

	ds, ok := byID["1111111111111111"]
	if !ok {
		t.Fatal("expected a node for struct config")
	}
	if ds.Label != "DataStructure" || ds.Path != "include/deep/types.h" {
		t.Fatalf("unexpected node %+v", ds)
	}
}

func TestBuildSymbolNodes_EmitsNodeWithoutResolvableSite(t *testing.T) {
	norm := newNormaliser(t)
	nodes := BuildSymbolNodes(testGraph(), norm)

	byID := make(map[string]SymbolNode)
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// An externally-defined symbol still gets a node, keeping its absolute
	// path.
	ext, ok := byID["3333333333333333"]
	if !ok {
		t.Fatal("expected a node for the externally-defined function")
	}
	if ext.Path != "/usr/include/stdio.h" {
		t.Fatalf("expected the external node to keep its absolute path, got %q", ext.Path)
	}

	// A symbol with neither declaration nor definition gets a node with
	// path and location unset.
	bare, ok := byID["4444444444444444"]
	if !ok {
		t.Fatal("expected a node for the site-less function")
	}
	if bare.Path != "" || bare.Line != 0 || bare.Column != 0 {
		t.Fatalf("expected empty path/location on the site-less node, got %+v", bare)
	}
}

func TestBuildDefinesEdges_InProjectDefinitionsOnly(t *testing.T) {
	norm := newNormaliser(t)
	edges := BuildDefinesEdges(testGraph(), norm)

	byID := make(map[string]DefinesEdge)
	for _, e := range edges {
		if e.FilePath == "" || e.SymbolID == "" || e.Label == "" {
			t.Fatalf("incomplete defines edge %+v", e)
		}
		byID[e.SymbolID] = e
	}

	// Exactly the two in-project-defined node symbols get an edge; the
	// external and site-less ones keep their node but have no File to
	// anchor to.
	if len(edges) != 2 {
		t.Fatalf("expected 2 defines edges, got %d", len(edges))
	}
	if e := byID["AAAAAAAAAAAAAAAA"]; e.FilePath != "src/x.c" {
		t.Fatalf("unexpected edge for A: %+v", e)
	}
	if e := byID["1111111111111111"]; e.FilePath != "include/deep/types.h" {
		t.Fatalf("unexpected edge for config: %+v", e)
	}
}

func TestBuildIncludeEdges_FiltersExternal(t *testing.T) {
	norm := newNormaliser(t)
	raw := []spanprovider.RawIncludeEdge{
		{IncludingAbsPath: "/proj/src/x.c", IncludedAbsPath: "/proj/include/h.h"},
		{IncludingAbsPath: "/proj/src/x.c", IncludedAbsPath: "/usr/include/stdio.h"},
		{IncludingAbsPath: "/other/y.c", IncludedAbsPath: "/proj/include/h.h"},
	}

	edges := BuildIncludeEdges(raw, norm)
	if len(edges) != 1 {
		t.Fatalf("expected 1 in-project edge, got %d", len(edges))
	}
	if edges[0].IncludingPath != "src/x.c" || edges[0].IncludedPath != "include/h.h" {
		t.Fatalf("unexpected edge %+v", edges[0])
	}
}

func TestImpactedByHeaderChange_TransitiveIncluders(t *testing.T) {
	edges := []IncludeEdgeOut{
		{IncludingPath: "src/a.c", IncludedPath: "include/mid.h"},
		{IncludingPath: "include/mid.h", IncludedPath: "include/base.h"},
		{IncludingPath: "src/b.c", IncludedPath: "include/base.h"},
		{IncludingPath: "src/unrelated.c", IncludedPath: "include/other.h"},
	}

	impacted := ImpactedByHeaderChange(edges, []string{"include/base.h"})
	got := impacted["include/base.h"]

	want := map[string]bool{"src/a.c": false, "src/b.c": false}
	for _, p := range got {
		if _, ok := want[p]; !ok {
			t.Fatalf("unexpected impacted file %q", p)
		}
		want[p] = true
	}
	for p, seen := range want {
		if !seen {
			t.Fatalf("missing impacted file %q", p)
		}
	}
}

func TestImpactedByHeaderChange_CppTranslationUnits(t *testing.T) {
	edges := []IncludeEdgeOut{
		{IncludingPath: "src/a.cpp", IncludedPath: "include/base.h"},
		{IncludingPath: "src/b.cc", IncludedPath: "include/base.h"},
		{IncludingPath: "src/c.cxx", IncludedPath: "include/base.h"},
		{IncludingPath: "include/wrap.h", IncludedPath: "include/base.h"},
	}

	impacted := ImpactedByHeaderChange(edges, []string{"include/base.h"})
	got := impacted["include/base.h"]

	want := map[string]bool{"src/a.cpp": false, "src/b.cc": false, "src/c.cxx": false}
	for _, p := range got {
		if _, ok := want[p]; !ok {
			t.Fatalf("unexpected impacted file %q", p)
		}
		want[p] = true
	}
	for p, seen := range want {
		if !seen {
			t.Fatalf("missing impacted translation unit %q", p)
		}
	}
}
