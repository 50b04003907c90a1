package callgraph

import (
	"testing"

	"github.com/maraichr/clangdgraph/internal/model"
)

func site(line, col int) model.Location {
	return model.Location{FileURI: "file:///proj/src/x.c", StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1}
}

func functionSymbol(id, name string) *model.Symbol {
	return &model.Symbol{ID: id, Name: name, Kind: model.KindFunction}
}

func TestContainerStrategy_ResolvesCall(t *testing.T) {
	a := functionSymbol("AAAAAAAAAAAAAAAA", "A")
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	b.References = []model.Reference{
		{Kind: model.CallKindModern, Location: site(12, 9), ContainerID: a.ID},
	}
	graph := &model.SymbolGraph{
		Symbols:           map[string]*model.Symbol{a.ID: a, b.ID: b},
		HasContainerField: true,
	}

	relations := ContainerStrategy{}.Extract(graph)
	if len(relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(relations))
	}
	r := relations[0]
	if r.CallerID != a.ID || r.CalleeID != b.ID {
		t.Fatalf("expected A-CALLS->B, got %s-CALLS->%s", r.CallerID, r.CalleeID)
	}
	if r.Site.StartLine != 12 || r.Site.StartCol != 9 {
		t.Fatalf("unexpected call site %d:%d", r.Site.StartLine, r.Site.StartCol)
	}
}

func TestContainerStrategy_FiltersNonCallKinds(t *testing.T) {
	a := functionSymbol("AAAAAAAAAAAAAAAA", "A")
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	for _, kind := range []int{0, 1, 2, 4, 8, 12, 16, 24} {
		b.References = append(b.References, model.Reference{
			Kind: kind, Location: site(12, 9), ContainerID: a.ID,
		})
	}
	graph := &model.SymbolGraph{Symbols: map[string]*model.Symbol{a.ID: a, b.ID: b}}

	// 4 and 12 are legacy call bits, consumed only by the Spatial strategy;
	// the Container strategy accepts exactly 20 and 28.
	if got := (ContainerStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected no relations from non-modern kinds, got %d", len(got))
	}
}

func TestContainerStrategy_DropsUnresolvedContainer(t *testing.T) {
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	b.References = []model.Reference{
		{Kind: model.CallKindModern, Location: site(12, 9), ContainerID: "DDDDDDDDDDDDDDDD"},
	}
	graph := &model.SymbolGraph{Symbols: map[string]*model.Symbol{b.ID: b}}

	if got := (ContainerStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected unresolved container to be dropped, got %d relations", len(got))
	}
}

func TestContainerStrategy_DropsNonFunctionContainer(t *testing.T) {
	v := &model.Symbol{ID: "EEEEEEEEEEEEEEEE", Name: "global", Kind: model.KindVariable}
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	b.References = []model.Reference{
		{Kind: model.CallKindModernRef, Location: site(12, 9), ContainerID: v.ID},
	}
	graph := &model.SymbolGraph{Symbols: map[string]*model.Symbol{v.ID: v, b.ID: b}}

	if got := (ContainerStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected non-Function container to be dropped, got %d relations", len(got))
	}
}

func TestContainerStrategy_ZeroContainerIgnored(t *testing.T) {
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	b.References = []model.Reference{
		{Kind: model.CallKindModern, Location: site(12, 9), ContainerID: model.NoContainerID},
		{Kind: model.CallKindModern, Location: site(13, 9)},
	}
	graph := &model.SymbolGraph{Symbols: map[string]*model.Symbol{b.ID: b}}

	if got := (ContainerStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected zero/absent container to be ignored, got %d relations", len(got))
	}
}

func TestSelect_PicksStrategyFromContainerFlag(t *testing.T) {
	withContainer := &model.SymbolGraph{HasContainerField: true}
	if _, ok := Select(withContainer).(ContainerStrategy); !ok {
		t.Fatal("expected ContainerStrategy when HasContainerField is set")
	}
	without := &model.SymbolGraph{}
	if _, ok := Select(without).(SpatialStrategy); !ok {
		t.Fatal("expected SpatialStrategy when HasContainerField is unset")
	}
}
