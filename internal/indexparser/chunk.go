package indexparser

import "bytes"

var docSeparator = []byte("\n---")

// documentOffsets returns the byte offset at which each YAML document in
// content begins. The first offset is always 0.
func documentOffsets(content []byte) []int {
	offsets := []int{0}
	pos := 0
	for {
		idx := bytes.Index(content[pos:], docSeparator)
		if idx < 0 {
			break
		}
		sepStart := pos + idx + 1 // skip the leading '\n', point at "---"
		offsets = append(offsets, sepStart)
		pos = sepStart + len(docSeparator) - 1
	}
	return offsets
}

// chunks splits content into at most workers*k byte slices, each holding a
// whole number of complete YAML documents (never splitting a document), for
// k in [2,4]. workers must be >= 1.
func chunks(content []byte, workers int) [][]byte {
	offsets := documentOffsets(content)
	numDocs := len(offsets)
	if numDocs == 0 || len(bytes.TrimSpace(content)) == 0 {
		return nil
	}

	const k = 3
	target := workers * k
	if target < 1 {
		target = 1
	}
	if target > numDocs {
		target = numDocs
	}

	docsPerChunk := (numDocs + target - 1) / target
	var out [][]byte
	for i := 0; i < numDocs; i += docsPerChunk {
		end := i + docsPerChunk
		var endOffset int
		if end >= numDocs {
			endOffset = len(content)
		} else {
			endOffset = offsets[end]
		}
		out = append(out, content[offsets[i]:endOffset])
	}
	return out
}
