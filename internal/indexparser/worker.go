package indexparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/model"
)

// unlinkedRef is a reference whose target Symbol has not yet been resolved;
// produced by a worker, consumed by the single-threaded link phase.
type unlinkedRef struct {
	targetID string
	ref      model.Reference
}

// workerResult is what one parse worker returns: symbols with empty
// reference lists, plus every reference it saw, unlinked.
type workerResult struct {
	symbols  map[string]*model.Symbol
	unlinked []unlinkedRef
}

// parseChunk is a pure function of its input: no shared state, no side
// effects, safe to run concurrently with any number of sibling workers.
func parseChunk(chunk []byte) (workerResult, error) {
	res := workerResult{symbols: make(map[string]*model.Symbol)}

	dec := yaml.NewDecoder(bytes.NewReader(chunk))
	docIndex := 0
	for {
		var doc rawDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return workerResult{}, coreerr.Wrap(coreerr.YamlSyntaxError,
				fmt.Sprintf("document %d in chunk", docIndex), err)
		}
		docIndex++

		switch {
		case doc.isSymbolDoc():
			sym := doc.toSymbol()
			res.symbols[sym.ID] = sym
		case doc.isRefsDoc():
			for _, r := range doc.References {
				res.unlinked = append(res.unlinked, unlinkedRef{
					targetID: *doc.ID,
					ref: model.Reference{
						Kind:        r.Kind,
						Location:    r.Location.toLocation(),
						ContainerID: r.Container,
					},
				})
			}
		default:
			// unrecognised or irrelevant document shape: skipped silently.
		}
	}

	return res, nil
}
