package graphbuilder

import (
	"path/filepath"

	"github.com/maraichr/clangdgraph/internal/graphstore"
	"github.com/maraichr/clangdgraph/internal/graphstore/neo4j"
	"github.com/maraichr/clangdgraph/internal/pathutil"
)

// ProjectMutation builds the Pass P1 zeroth step: the combined
// Project+Folder node for the project root.
func ProjectMutation(norm *pathutil.Normaliser, commitID string) graphstore.Mutation {
	root := norm.Root()
	name := filepath.Base(root)
	if name == "." || name == "/" {
		name = "Project"
	}
	return graphstore.Mutation{
		Cypher: neo4j.MergeProjectNode,
		Rows: []map[string]any{{
			"path":   root,
			"name":   name,
			"commit": commitID,
		}},
	}
}

// FolderMutation builds the rest of Pass P1's folder half. h.Folders must
// already be sorted ascending by depth (BuildHierarchy guarantees this) so
// a single UNWIND pass sees every parent before its children.
func FolderMutation(h Hierarchy, norm *pathutil.Normaliser) graphstore.Mutation {
	rows := make([]map[string]any, len(h.Folders))
	for i, f := range h.Folders {
		rows[i] = map[string]any{
			"path":       f.Path,
			"name":       f.Name,
			"parentPath": parentOrRoot(f.ParentPath, norm),
		}
	}
	return graphstore.Mutation{Cypher: neo4j.MergeFolders, Rows: rows}
}

// FileMutation builds the rest of Pass P1's file half.
func FileMutation(h Hierarchy, norm *pathutil.Normaliser) graphstore.Mutation {
	rows := make([]map[string]any, len(h.Files))
	for i, f := range h.Files {
		rows[i] = map[string]any{
			"path":       f.Path,
			"name":       f.Name,
			"parentPath": parentOrRoot(f.ParentPath, norm),
		}
	}
	return graphstore.Mutation{Cypher: neo4j.MergeFiles, Rows: rows}
}

// parentOrRoot resolves a depth-0 node's parentPath to the project root, so
// MergeFolders/MergeFiles' single `(parent:Folder OR parent:Project)` MATCH
// also finds the Project node created by ProjectMutation.
func parentOrRoot(parentPath string, norm *pathutil.Normaliser) string {
	if parentPath == "" {
		return norm.Root()
	}
	return parentPath
}

// SymbolMutations builds Pass P2: separate Function and DataStructure
// batches, since each targets a distinct label.
func SymbolMutations(nodes []SymbolNode) (functions, dataStructures graphstore.Mutation) {
	var functionRows, dataStructureRows []map[string]any
	for _, n := range nodes {
		row := map[string]any{
			"id":     n.ID,
			"name":   n.Name,
			"kind":   string(n.Kind),
			"path":   n.Path,
			"line":   n.Line,
			"column": n.Column,
		}
		if n.Label == "Function" {
			row["signature"] = n.Signature
			row["returnType"] = n.ReturnType
			row["scope"] = n.Scope
			if n.Body != nil {
				row["bodyStartLine"] = n.Body.StartLine
				row["bodyStartCol"] = n.Body.StartCol
				row["bodyEndLine"] = n.Body.EndLine
				row["bodyEndCol"] = n.Body.EndCol
			}
			functionRows = append(functionRows, row)
		} else {
			dataStructureRows = append(dataStructureRows, row)
		}
	}
	return graphstore.Mutation{Cypher: neo4j.MergeFunctionNodes, Rows: functionRows},
		graphstore.Mutation{Cypher: neo4j.MergeDataStructureNodes, Rows: dataStructureRows}
}

// IncludeMutation builds Pass P4: a single unwind-merge batch. INCLUDES
// volume is low enough that grouping buys nothing.
func IncludeMutation(edges []IncludeEdgeOut) graphstore.Mutation {
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{
			"including": e.IncludingPath,
			"included":  e.IncludedPath,
		}
	}
	return graphstore.Mutation{Cypher: neo4j.MergeIncludes, Rows: rows}
}
