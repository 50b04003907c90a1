// Package vcsdiff is the git-backed Diff Provider consumed by the
// incremental-update entry point: it turns two refs into a ChangeSet of
// added/modified/deleted .c/.h files by parsing the raw, null-delimited
// `git diff-tree` output with rename/copy resolution at 100% similarity.
package vcsdiff

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/maraichr/clangdgraph/internal/coreerr"
)

// ChangeSet is the categorised result of diffing oldRef..newRef, already
// filtered to .c/.h files and with renames and copies resolved: a rename
// is a deletion of the old path plus an addition of the new one; a copy is
// purely an addition.
type ChangeSet struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// Provider is the abstract Diff Provider the incremental orchestrator
// depends on, so a non-git backend (or a test double) can stand in.
type Provider interface {
	Diff(ctx context.Context, oldRef, newRef string) (*ChangeSet, error)
}

// GitProvider shells out to the system git binary rooted at RepoRoot.
type GitProvider struct {
	RepoRoot string
}

// New returns a GitProvider rooted at repoRoot.
func New(repoRoot string) *GitProvider {
	return &GitProvider{RepoRoot: repoRoot}
}

// Diff runs `git diff-tree --find-copies-harder -M100% -C100% --raw -z
// --no-color oldRef newRef` and parses its null-delimited raw output.
func (p *GitProvider) Diff(ctx context.Context, oldRef, newRef string) (*ChangeSet, error) {
	cmd := exec.CommandContext(ctx, "git", "diff-tree",
		"--find-copies-harder", "-M100%", "-C100%",
		"-r", "--raw", "-z", "--no-color",
		oldRef, newRef,
	)
	cmd.Dir = p.RepoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, coreerr.Wrap(coreerr.IoError, "running git diff-tree: "+stderr.String(), err)
	}

	return parseRawDiff(stdout.String()), nil
}

// parseRawDiff walks the NUL-delimited `--raw -z` stream record by record,
// then folds renames and copies into added/modified/deleted.
func parseRawDiff(output string) *ChangeSet {
	fields := strings.Split(output, "\x00")

	var added, modified, deleted []string
	renamedPaths := make(map[string]struct{})

	i := 0
	for i < len(fields)-1 {
		line := fields[i]
		if line == "" {
			i++
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 5 {
			i++
			continue
		}
		changeType := parts[4]

		switch {
		case strings.HasPrefix(changeType, "R"):
			if i+2 >= len(fields) {
				i++
				continue
			}
			src, dst := fields[i+1], fields[i+2]
			if isSourceFile(src) || isSourceFile(dst) {
				deleted = append(deleted, src)
				added = append(added, dst)
			}
			renamedPaths[src] = struct{}{}
			renamedPaths[dst] = struct{}{}
			i += 3
		case strings.HasPrefix(changeType, "C"):
			if i+2 >= len(fields) {
				i++
				continue
			}
			dst := fields[i+2]
			if isSourceFile(dst) {
				added = append(added, dst)
			}
			renamedPaths[dst] = struct{}{}
			i += 3
		case changeType == "A":
			dst := fields[i+1]
			if _, skip := renamedPaths[dst]; !skip && isSourceFile(dst) {
				added = append(added, dst)
			}
			i += 2
		case changeType == "D":
			src := fields[i+1]
			if _, skip := renamedPaths[src]; !skip && isSourceFile(src) {
				deleted = append(deleted, src)
			}
			i += 2
		case changeType == "M":
			dst := fields[i+1]
			if _, skip := renamedPaths[dst]; !skip && isSourceFile(dst) {
				modified = append(modified, dst)
			}
			i += 2
		default:
			i += 2
		}
	}

	return &ChangeSet{
		Added:    dedup(added),
		Modified: dedup(modified),
		Deleted:  dedup(deleted),
	}
}

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".c") || strings.HasSuffix(path, ".h")
}

func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
