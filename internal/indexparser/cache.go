package indexparser

import (
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/maraichr/clangdgraph/internal/coreerr"
	"github.com/maraichr/clangdgraph/internal/model"
)

const cacheMagic = "CGCACHE1"

// cacheHeader is checked before trusting a cache file's payload. Beyond the
// mtime-newer-than-input freshness test, the input's size is cross-checked
// so a same-mtime but truncated/replaced input is not silently trusted.
type cacheHeader struct {
	Magic      string
	InputMTime int64
	InputSize  int64
}

type cachePayload struct {
	Symbols           map[string]*model.Symbol
	HasContainerField bool
}

func cachePath(indexPath, cacheDir string) string {
	base := filepath.Base(indexPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".cgcache"
	if cacheDir == "" {
		return filepath.Join(filepath.Dir(indexPath), name)
	}
	return filepath.Join(cacheDir, name)
}

// tryLoadCache returns (graph, true) on a valid cache hit. Any failure
// (missing file, stale mtime, mismatched header, corrupt payload) is
// treated per the CacheCorrupted policy: discard and fall back to a full
// parse, never propagated as a fatal error.
func tryLoadCache(indexPath string, info fs.FileInfo, cacheDir string) (*model.SymbolGraph, bool) {
	path := cachePath(indexPath, cacheDir)

	cacheInfo, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if !cacheInfo.ModTime().After(info.ModTime()) {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)

	var hdr cacheHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, false
	}
	if hdr.Magic != cacheMagic || hdr.InputMTime != info.ModTime().UnixNano() || hdr.InputSize != info.Size() {
		return nil, false
	}

	var payload cachePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, false
	}

	return &model.SymbolGraph{Symbols: payload.Symbols, HasContainerField: payload.HasContainerField}, true
}

func writeCache(indexPath string, info fs.FileInfo, cacheDir string, graph *model.SymbolGraph) error {
	dir := cacheDir
	if dir == "" {
		dir = filepath.Dir(indexPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return coreerr.Wrap(coreerr.IoError, "creating cache dir", err)
	}

	path := cachePath(indexPath, cacheDir)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return coreerr.Wrap(coreerr.IoError, "creating cache file", err)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return coreerr.Wrap(coreerr.IoError, "opening zstd writer", err)
	}

	enc := gob.NewEncoder(zw)
	hdr := cacheHeader{Magic: cacheMagic, InputMTime: info.ModTime().UnixNano(), InputSize: info.Size()}
	if err := enc.Encode(hdr); err != nil {
		zw.Close()
		f.Close()
		return coreerr.Wrap(coreerr.IoError, "encoding cache header", err)
	}

	payload := cachePayload{Symbols: graph.Symbols, HasContainerField: graph.HasContainerField}
	if err := enc.Encode(payload); err != nil {
		zw.Close()
		f.Close()
		return coreerr.Wrap(coreerr.IoError, "encoding cache payload", err)
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return coreerr.Wrap(coreerr.IoError, "closing zstd writer", err)
	}
	if err := f.Close(); err != nil {
		return coreerr.Wrap(coreerr.IoError, "closing cache file", err)
	}
	return os.Rename(tmp, path)
}
