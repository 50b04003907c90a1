package graphbuilder

import "strings"

// ImpactedByHeaderChange walks a reverse-include adjacency built from
// `edges` and returns, for each header in `headers`, every translation unit
// (.c, .cpp, .cc or .cxx file) that transitively includes it; headers reached
// along the way are walked but not returned. The incremental updater favours this over a
// graph round-trip because the edge set is already in memory during a run.
func ImpactedByHeaderChange(edges []IncludeEdgeOut, headers []string) map[string][]string {
	reverse := make(map[string][]string)
	for _, e := range edges {
		reverse[e.IncludedPath] = append(reverse[e.IncludedPath], e.IncludingPath)
	}

	results := make(map[string][]string, len(headers))
	for _, header := range headers {
		visited := map[string]struct{}{header: {}}
		queue := []string{header}
		var impacted []string

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, dependent := range reverse[current] {
				if _, seen := visited[dependent]; seen {
					continue
				}
				visited[dependent] = struct{}{}
				impacted = append(impacted, dependent)
				queue = append(queue, dependent)
			}
		}

		results[header] = sourceFilesOnly(impacted)
	}
	return results
}

// sourceFilesOnly keeps only compilable translation units. A transitively
// impacted header with no source file above it needs no rebuild and is
// dropped.
func sourceFilesOnly(paths []string) []string {
	var out []string
	for _, p := range paths {
		if isTranslationUnit(p) {
			out = append(out, p)
		}
	}
	return out
}

func isTranslationUnit(path string) bool {
	for _, ext := range []string{".c", ".cpp", ".cc", ".cxx"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
