// Package graphbuilder turns a frozen model.SymbolGraph, plus the
// Span/Include Provider's file-tree facts, into node and edge batches ready
// for the Ingestion Planner. Passes P1-P4 neither talk to a database nor
// touch the filesystem; Pass P5 (CleanupOrphans) runs its query through a
// graphstore.Store.
package graphbuilder

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/pathutil"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

// FolderNode is one Pass P1 folder, carrying its parent so ingestion can
// MERGE the CONTAINS edge in the same row. ParentPath is empty for a
// depth-0 folder, whose parent is the project root itself.
type FolderNode struct {
	Path       string
	Name       string
	ParentPath string
}

// FileNode is one Pass P1 file, likewise carrying its parent folder (or
// empty for a root-level file).
type FileNode struct {
	Path       string
	Name       string
	ParentPath string
}

// Hierarchy is Pass P1's output: every folder and file that must exist,
// folders pre-sorted parent-before-child.
type Hierarchy struct {
	Folders []FolderNode
	Files   []FileNode
}

// SymbolNode is one Pass P2 node: a Function or DataStructure, with the
// project-relative path and location of its definition (or, absent a
// definition, its canonical declaration).
type SymbolNode struct {
	ID         string
	Name       string
	Kind       model.SymbolKind
	Label      string // "Function" or "DataStructure"
	Signature  string
	ReturnType string
	Scope      string
	Path       string
	Line       int
	Column     int
	Body       *model.RelativeLocation
}

// DefinesEdge is one Pass P3 edge, carrying enough of the symbol's identity
// for the label-typed MATCH the Ingestion Planner's unwind-create strategy
// relies on for its 100x speedup over an untyped match.
type DefinesEdge struct {
	FilePath string
	SymbolID string
	Label    string // "Function" or "DataStructure"
}

// IncludeEdgeOut is one Pass P4 edge, both endpoints already normalised to
// project-relative paths.
type IncludeEdgeOut struct {
	IncludingPath string
	IncludedPath  string
}

func labelFor(kind model.SymbolKind) string {
	if kind == model.KindFunction {
		return "Function"
	}
	return "DataStructure"
}

// definitionSite resolves the (path, location) pair a node's path and
// location properties come from: the definition if present, else the
// canonical declaration. In-project sites yield a project-relative path;
// out-of-project sites keep the absolute path so the node still records
// where the symbol lives.
func definitionSite(s *model.Symbol, norm *pathutil.Normaliser) (path string, loc model.Location, ok bool) {
	site := s.DefinitionSite()
	if site == nil {
		return "", model.Location{}, false
	}
	abs, err := norm.URIToAbs(site.FileURI)
	if err != nil {
		return "", model.Location{}, false
	}
	if rel, err := norm.RelativeFromAbs(abs); err == nil {
		return rel, *site, true
	}
	return abs, *site, true
}

// relativeDefinitionSite is the stricter form DEFINES edges key on: only
// an in-project site qualifies, since there is no File node for an
// external path to anchor the edge to.
func relativeDefinitionSite(s *model.Symbol, norm *pathutil.Normaliser) (path string, ok bool) {
	site := s.DefinitionSite()
	if site == nil {
		return "", false
	}
	rel, err := norm.RelativeFromURI(site.FileURI)
	if err != nil {
		return "", false
	}
	return rel, true
}

// BuildHierarchy runs Pass P1. Sources of truth are every declaration and
// definition site in the symbol graph, plus both endpoints of every raw
// include edge: the union catches "invisible headers" with no
// defined symbol of their own.
func BuildHierarchy(graph *model.SymbolGraph, rawIncludes []spanprovider.RawIncludeEdge, norm *pathutil.Normaliser) (Hierarchy, error) {
	files := make(map[string]struct{})

	addLocation := func(loc *model.Location) {
		if loc == nil {
			return
		}
		rel, err := norm.RelativeFromURI(loc.FileURI)
		if err != nil {
			return // outside the project; filtered silently (PathOutsideProject)
		}
		files[rel] = struct{}{}
	}

	for _, s := range graph.Symbols {
		addLocation(s.Declaration)
		addLocation(s.Definition)
	}

	for _, e := range rawIncludes {
		if rel, err := norm.RelativeFromAbs(e.IncludingAbsPath); err == nil {
			files[rel] = struct{}{}
		}
		if rel, err := norm.RelativeFromAbs(e.IncludedAbsPath); err == nil {
			files[rel] = struct{}{}
		}
	}

	folderSet := make(map[string]struct{})
	for f := range files {
		for _, folder := range pathutil.AncestorFolders(f) {
			folderSet[folder] = struct{}{}
		}
	}

	return Hierarchy{
		Folders: sortedFolders(folderSet),
		Files:   sortedFiles(files),
	}, nil
}

// sortedFolders orders folders by ascending depth (part count) then
// lexically, so every parent is emitted before its children.
func sortedFolders(set map[string]struct{}) []FolderNode {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := depth(paths[i]), depth(paths[j])
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	out := make([]FolderNode, 0, len(paths))
	for _, p := range paths {
		out = append(out, FolderNode{
			Path:       p,
			Name:       filepath.Base(p),
			ParentPath: parentOf(p),
		})
	}
	return out
}

func sortedFiles(set map[string]struct{}) []FileNode {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]FileNode, 0, len(paths))
	for _, p := range paths {
		out = append(out, FileNode{
			Path:       p,
			Name:       filepath.Base(p),
			ParentPath: parentOf(p),
		})
	}
	return out
}

func depth(relPath string) int {
	if relPath == "" {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}

// parentOf returns the parent folder of a project-relative path, or "" at
// depth 0 (the parent is the project root).
func parentOf(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." {
		return ""
	}
	return dir
}

// BuildSymbolNodes runs Pass P2: one node per Function/Class/Struct/
// Union/Enum symbol. Symbols of any other kind are skipped, per
// SymbolKind.IsGraphNode. The node is emitted even when the symbol has no
// resolvable site; path and location are then simply left unset.
func BuildSymbolNodes(graph *model.SymbolGraph, norm *pathutil.Normaliser) []SymbolNode {
	var nodes []SymbolNode
	for _, s := range graph.Symbols {
		if !s.Kind.IsGraphNode() {
			continue
		}
		node := SymbolNode{
			ID:         s.ID,
			Name:       s.Name,
			Kind:       s.Kind,
			Label:      labelFor(s.Kind),
			Signature:  s.Signature,
			ReturnType: s.ReturnType,
			Scope:      s.Scope,
			Body:       s.BodyLocation,
		}
		if path, loc, ok := definitionSite(s, norm); ok {
			node.Path = path
			node.Line = loc.StartLine
			node.Column = loc.StartCol
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// BuildDefinesEdges runs Pass P3: one edge per Function/DataStructure
// symbol whose definition site resolves inside the project. Site-less and
// externally-defined symbols keep their node from P2 but get no edge.
func BuildDefinesEdges(graph *model.SymbolGraph, norm *pathutil.Normaliser) []DefinesEdge {
	var edges []DefinesEdge
	for _, s := range graph.Symbols {
		if !s.Kind.IsGraphNode() {
			continue
		}
		path, ok := relativeDefinitionSite(s, norm)
		if !ok {
			continue
		}
		edges = append(edges, DefinesEdge{
			FilePath: path,
			SymbolID: s.ID,
			Label:    labelFor(s.Kind),
		})
	}
	return edges
}

// BuildIncludeEdges runs Pass P4: every raw include edge normalised to
// project-relative paths, with edges crossing the project boundary on
// either end dropped silently (PathOutsideProject).
func BuildIncludeEdges(rawIncludes []spanprovider.RawIncludeEdge, norm *pathutil.Normaliser) []IncludeEdgeOut {
	var edges []IncludeEdgeOut
	for _, e := range rawIncludes {
		including, err := norm.RelativeFromAbs(e.IncludingAbsPath)
		if err != nil {
			continue
		}
		included, err := norm.RelativeFromAbs(e.IncludedAbsPath)
		if err != nil {
			continue
		}
		edges = append(edges, IncludeEdgeOut{IncludingPath: including, IncludedPath: included})
	}
	return edges
}
