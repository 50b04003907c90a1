package callgraph

import (
	"testing"

	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

const xcURI = "file:///proj/src/x.c"

// twoFunctionGraph builds Function A defined at 10:5 and Function B at
// 20:5, with one legacy-call reference to B at the given site.
func twoFunctionGraph(callLine, callCol int) *model.SymbolGraph {
	a := functionSymbol("AAAAAAAAAAAAAAAA", "A")
	a.Definition = &model.Location{FileURI: xcURI, StartLine: 10, StartCol: 5, EndLine: 10, EndCol: 6}
	b := functionSymbol("BBBBBBBBBBBBBBBB", "B")
	b.Definition = &model.Location{FileURI: xcURI, StartLine: 20, StartCol: 5, EndLine: 20, EndCol: 6}
	b.References = []model.Reference{
		{Kind: model.CallKindLegacyRef, Location: model.Location{
			FileURI: xcURI, StartLine: callLine, StartCol: callCol, EndLine: callLine, EndCol: callCol + 1,
		}},
	}
	return &model.SymbolGraph{Symbols: map[string]*model.Symbol{a.ID: a, b.ID: b}}
}

func twoFunctionSpans() []spanprovider.FunctionSpan {
	return []spanprovider.FunctionSpan{
		{
			Name:         "A",
			NameLocation: model.Location{FileURI: xcURI, StartLine: 10, StartCol: 5, EndLine: 10, EndCol: 6},
			BodyLocation: model.Location{FileURI: xcURI, StartLine: 10, StartCol: 10, EndLine: 18, EndCol: 1},
		},
		{
			Name:         "B",
			NameLocation: model.Location{FileURI: xcURI, StartLine: 20, StartCol: 5, EndLine: 20, EndCol: 6},
			BodyLocation: model.Location{FileURI: xcURI, StartLine: 20, StartCol: 10, EndLine: 25, EndCol: 1},
		},
	}
}

func TestAttachSpans_MatchesByCompositeKey(t *testing.T) {
	graph := twoFunctionGraph(12, 9)

	matched, unmatched := AttachSpans(graph, twoFunctionSpans())
	if matched != 2 || unmatched != 0 {
		t.Fatalf("expected 2 matched / 0 unmatched, got %d / %d", matched, unmatched)
	}

	body := graph.Symbols["AAAAAAAAAAAAAAAA"].BodyLocation
	if body == nil {
		t.Fatal("expected A to carry a body location")
	}
	if body.StartLine != 10 || body.EndLine != 18 {
		t.Fatalf("unexpected body span %d-%d", body.StartLine, body.EndLine)
	}
}

func TestAttachSpans_CountsMismatches(t *testing.T) {
	graph := twoFunctionGraph(12, 9)
	// Only A's span is reported; B stays span-less and is unresolvable as a
	// caller.
	_, unmatched := AttachSpans(graph, twoFunctionSpans()[:1])
	if unmatched != 1 {
		t.Fatalf("expected 1 unmatched symbol, got %d", unmatched)
	}
	if graph.Symbols["BBBBBBBBBBBBBBBB"].BodyLocation != nil {
		t.Fatal("expected B to stay span-less")
	}
}

func TestSpatialStrategy_CallInsideBody(t *testing.T) {
	graph := twoFunctionGraph(12, 9)
	AttachSpans(graph, twoFunctionSpans())

	relations := SpatialStrategy{}.Extract(graph)
	if len(relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(relations))
	}
	r := relations[0]
	if r.CallerID != "AAAAAAAAAAAAAAAA" || r.CalleeID != "BBBBBBBBBBBBBBBB" {
		t.Fatalf("expected A-CALLS->B, got %s-CALLS->%s", r.CallerID, r.CalleeID)
	}
}

func TestSpatialStrategy_CallOutsideEveryBody(t *testing.T) {
	// Line 19 is between A's body (10-18) and B's body (20-25).
	graph := twoFunctionGraph(19, 1)
	AttachSpans(graph, twoFunctionSpans())

	if got := (SpatialStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected no relations for a site outside every body, got %d", len(got))
	}
}

func TestSpatialStrategy_IgnoresModernKinds(t *testing.T) {
	graph := twoFunctionGraph(12, 9)
	graph.Symbols["BBBBBBBBBBBBBBBB"].References[0].Kind = model.CallKindModern
	AttachSpans(graph, twoFunctionSpans())

	if got := (SpatialStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected modern kinds to be ignored by the spatial strategy, got %d", len(got))
	}
}

func TestSpatialStrategy_SitesAlwaysInsideCallerBody(t *testing.T) {
	cases := []struct {
		name      string
		line, col int
		caller    string
	}{
		{"first line of body", 10, 10, "AAAAAAAAAAAAAAAA"},
		{"middle of body", 15, 3, "AAAAAAAAAAAAAAAA"},
		{"last line of body", 18, 1, "AAAAAAAAAAAAAAAA"},
		{"second function", 22, 5, "BBBBBBBBBBBBBBBB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			graph := twoFunctionGraph(tc.line, tc.col)
			AttachSpans(graph, twoFunctionSpans())

			relations := SpatialStrategy{}.Extract(graph)
			if len(relations) != 1 {
				t.Fatalf("expected 1 relation, got %d", len(relations))
			}
			if relations[0].CallerID != tc.caller {
				t.Fatalf("expected caller %s, got %s", tc.caller, relations[0].CallerID)
			}
			body := graph.Symbols[tc.caller].BodyLocation
			site := relations[0].Site
			if !withinBody(site, *body) {
				t.Fatalf("site %d:%d not inside caller body %d:%d-%d:%d",
					site.StartLine, site.StartCol,
					body.StartLine, body.StartCol, body.EndLine, body.EndCol)
			}
		})
	}
}

func TestSpatialStrategy_BeforeColumnOfBodyStart(t *testing.T) {
	// Same line as A's body start but an earlier column: outside.
	graph := twoFunctionGraph(10, 5)
	AttachSpans(graph, twoFunctionSpans())

	if got := (SpatialStrategy{}).Extract(graph); len(got) != 0 {
		t.Fatalf("expected a site before the body's start column to be outside, got %d", len(got))
	}
}
