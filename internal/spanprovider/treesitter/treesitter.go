// Package treesitter is the concrete Span/Include Provider: it walks every
// .c/.h file under a project root with a tree-sitter C grammar, extracting
// function_definition body spans and preproc_include edges.
package treesitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/model"
	"github.com/maraichr/clangdgraph/internal/spanprovider"
)

// Provider walks a source tree rooted at Root, parsing every .c/.h file with
// tree-sitter's C grammar.
type Provider struct {
	root string
}

// New returns a Provider rooted at projectRoot.
func New(projectRoot string) *Provider {
	return &Provider{root: projectRoot}
}

func sourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".c", ".h":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "walking project tree", err)
	}
	return files, nil
}

func fileURI(absPath string) string {
	return "file://" + filepath.ToSlash(absPath)
}

// FunctionSpans walks every .c/.h file and returns every function
// definition's name site and body span.
func (p *Provider) FunctionSpans(ctx context.Context) ([]spanprovider.FunctionSpan, error) {
	files, err := sourceFiles(p.root)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	var spans []spanprovider.FunctionSpan
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.IoError, fmt.Sprintf("reading %s", path), err)
		}
		tree, err := parser.ParseCtx(ctx, nil, src)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.IoError, fmt.Sprintf("parsing %s", path), err)
		}
		uri := fileURI(path)
		spans = append(spans, extractFunctionSpans(tree.RootNode(), src, uri)...)
		tree.Close()
	}
	return spans, nil
}

func extractFunctionSpans(root *sitter.Node, src []byte, uri string) []spanprovider.FunctionSpan {
	var spans []spanprovider.FunctionSpan
	walk(root, func(n *sitter.Node) {
		if n.Type() != "function_definition" {
			return
		}
		declarator := n.ChildByFieldName("declarator")
		if declarator == nil {
			return
		}
		ident := findIdentifier(declarator)
		if ident == nil {
			return
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		spans = append(spans, spanprovider.FunctionSpan{
			Name:         ident.Content(src),
			NameLocation: nodeLocation(ident, uri),
			BodyLocation: nodeLocation(body, uri),
		})
	})
	return spans
}

// findIdentifier recursively descends a declarator subtree for the
// identifier naming the function (pointer and array declarators nest the
// identifier arbitrarily deep).
func findIdentifier(n *sitter.Node) *sitter.Node {
	if n.Type() == "identifier" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if ident := findIdentifier(n.Child(i)); ident != nil {
			return ident
		}
	}
	return nil
}

func nodeLocation(n *sitter.Node, uri string) model.Location {
	start, end := n.StartPoint(), n.EndPoint()
	return model.Location{
		FileURI:   uri,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

// IncludeEdges walks every .c/.h file and returns every #include directive
// as an absolute-path (including, included) pair, resolved relative to the
// including file's directory (the common case for project-local headers).
// An angle-bracket include is kept only when a file exists at that resolved
// path, so system headers such as <stdio.h> yield no edge; a quoted include
// is kept as resolved, and one that lands outside the project is filtered
// out downstream by the Path Normaliser.
func (p *Provider) IncludeEdges(ctx context.Context) ([]spanprovider.RawIncludeEdge, error) {
	files, err := sourceFiles(p.root)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	var edges []spanprovider.RawIncludeEdge
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.IoError, fmt.Sprintf("reading %s", path), err)
		}
		tree, err := parser.ParseCtx(ctx, nil, src)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.IoError, fmt.Sprintf("parsing %s", path), err)
		}
		edges = append(edges, extractIncludes(tree.RootNode(), src, path)...)
		tree.Close()
	}
	return edges, nil
}

func extractIncludes(root *sitter.Node, src []byte, includingPath string) []spanprovider.RawIncludeEdge {
	var edges []spanprovider.RawIncludeEdge
	dir := filepath.Dir(includingPath)
	walk(root, func(n *sitter.Node) {
		if n.Type() != "preproc_include" {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			var included string
			switch child.Type() {
			case "string_literal":
				included = strings.Trim(child.Content(src), `"`)
			case "system_lib_string":
				included = strings.Trim(child.Content(src), "<>")
				if _, err := os.Stat(filepath.Join(dir, included)); err != nil {
					continue
				}
			default:
				continue
			}
			edges = append(edges, spanprovider.RawIncludeEdge{
				IncludingAbsPath: includingPath,
				IncludedAbsPath:  filepath.Clean(filepath.Join(dir, included)),
			})
		}
	})
	return edges
}

func walk(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}
