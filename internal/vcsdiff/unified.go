package vcsdiff

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// FromUnifiedDiff builds a ChangeSet from a unified-diff text already in
// hand (e.g. a CI webhook's patch payload) rather than from a live git
// checkout, the complement to GitProvider.Diff for callers that cannot
// shell out to git. A file present only on the "a/" side is a deletion, a
// file present only on the "b/" side is an addition, and a file present on
// both is a modification, each filtered to .c/.h.
func FromUnifiedDiff(patch string) (*ChangeSet, error) {
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}

	var added, modified, deleted []string
	for _, fd := range fileDiffs {
		oldPath := stripGitPrefix(fd.OrigName)
		newPath := stripGitPrefix(fd.NewName)

		switch {
		case oldPath == "/dev/null" || oldPath == "":
			if isSourceFile(newPath) {
				added = append(added, newPath)
			}
		case newPath == "/dev/null" || newPath == "":
			if isSourceFile(oldPath) {
				deleted = append(deleted, oldPath)
			}
		default:
			if isSourceFile(newPath) {
				modified = append(modified, newPath)
			}
		}
	}

	return &ChangeSet{
		Added:    dedup(added),
		Modified: dedup(modified),
		Deleted:  dedup(deleted),
	}, nil
}

func stripGitPrefix(name string) string {
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}
