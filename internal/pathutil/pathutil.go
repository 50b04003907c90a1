// Package pathutil converts between the file-URI form a clangd index uses,
// absolute filesystem paths, and project-relative paths, and classifies a
// path as belonging to the project or not.
package pathutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/maraichr/clangdgraph/internal/coreerr"
)

// Normaliser converts between the three path representations used across
// the pipeline, anchored at a single absolute project root.
type Normaliser struct {
	root string // absolute, cleaned, no trailing separator
}

// New returns a Normaliser anchored at projectRoot (need not yet exist).
func New(projectRoot string) (*Normaliser, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "resolving project root", err)
	}
	return &Normaliser{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute project root.
func (n *Normaliser) Root() string {
	return n.root
}

// URIToAbs converts a file:// URI to an absolute filesystem path.
func (n *Normaliser) URIToAbs(fileURI string) (string, error) {
	u, err := url.Parse(fileURI)
	if err != nil {
		return "", coreerr.Wrap(coreerr.PathOutsideProject, fmt.Sprintf("parsing file URI %q", fileURI), err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", coreerr.New(coreerr.PathOutsideProject, fmt.Sprintf("unsupported URI scheme in %q", fileURI))
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", coreerr.Wrap(coreerr.PathOutsideProject, fmt.Sprintf("unescaping URI path %q", fileURI), err)
	}
	return filepath.Clean(decoded), nil
}

// RelativeFromAbs converts an absolute path into a project-relative path.
// Fails with coreerr.PathOutsideProject if the path is not under the root
// or its relative form contains a ".." component.
func (n *Normaliser) RelativeFromAbs(abs string) (string, error) {
	rel, err := filepath.Rel(n.root, filepath.Clean(abs))
	if err != nil {
		return "", coreerr.Wrap(coreerr.PathOutsideProject, fmt.Sprintf("relativising %q against %q", abs, n.root), err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", coreerr.New(coreerr.PathOutsideProject, fmt.Sprintf("%q escapes project root %q", abs, n.root))
	}
	return filepath.ToSlash(rel), nil
}

// RelativeFromURI is the common-case composition of URIToAbs then
// RelativeFromAbs.
func (n *Normaliser) RelativeFromURI(fileURI string) (string, error) {
	abs, err := n.URIToAbs(fileURI)
	if err != nil {
		return "", err
	}
	return n.RelativeFromAbs(abs)
}

// IsInProject reports whether a project-relative path (as returned by
// RelativeFromAbs) stays within the project.
func IsInProject(rel string) bool {
	if rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !strings.Contains(rel, "/../")
}

// AncestorFolders returns every ancestor directory of a project-relative
// file path, ordered from shallowest to deepest (ascending depth), suitable
// for emitting folder nodes parent-before-child.
func AncestorFolders(relPath string) []string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." || dir == "" {
		return nil
	}
	parts := strings.Split(dir, "/")
	folders := make([]string, 0, len(parts))
	cur := ""
	for _, p := range parts {
		if cur == "" {
			cur = p
		} else {
			cur = cur + "/" + p
		}
		folders = append(folders, cur)
	}
	return folders
}
