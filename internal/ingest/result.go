package ingest

import (
	"path"
	"path/filepath"
	"strings"

	"codedoc/internal/chunker"
)

// Result is the outcome of one ingestion run.
type Result struct {
	FilesIngested int
	Chunks        []chunker.Chunk
	Index         *CrossReferenceIndex

	byKey map[chunker.Key]int
}

func newResult() *Result {
	return &Result{
		Index: NewCrossReferenceIndex(),
		byKey: make(map[chunker.Key]int),
	}
}

func (r *Result) add(chunks ...chunker.Chunk) {
	for _, c := range chunks {
		r.byKey[c.Key()] = len(r.Chunks)
		r.Chunks = append(r.Chunks, c)
		r.Index.Add(c)
	}
}

// Lookup returns the chunk stored under key.
func (r *Result) Lookup(key chunker.Key) (chunker.Chunk, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return chunker.Chunk{}, false
	}
	return r.Chunks[i], true
}

// Related returns the chunks c points at: the definitions of functions it
// calls, then the module docstrings of files an import resolves to (see
// importMatches). The list may contain duplicates.
func (r *Result) Related(c chunker.Chunk) []chunker.Chunk {
	if r == nil {
		return nil
	}
	var related []chunker.Chunk
	for _, name := range c.Calls {
		for _, key := range r.Index.Functions(name) {
			if rc, ok := r.Lookup(key); ok {
				related = append(related, rc)
			}
		}
	}
	for _, imp := range c.Imports {
		if imp == "" {
			continue
		}
		for _, rc := range r.Chunks {
			if rc.ChunkType == chunker.TypeModuleDocstring && importMatches(rc.FilePath, imp) {
				related = append(related, rc)
			}
		}
	}
	return related
}

// importMatches reports whether filePath is a plausible target of imp. The
// import name matches as a substring of the path, or after normalising:
// relative specifiers ("./utils", "../lib/math.js") match the path without
// extension or a directory's index file, slash paths ("codedoc/internal/store")
// match on their last segment against the file's directory, and dotted
// modules ("pkg.mod") match as "pkg/mod".
func importMatches(filePath, imp string) bool {
	if strings.Contains(filePath, imp) {
		return true
	}
	p := filepath.ToSlash(filePath)
	stem := strings.TrimSuffix(p, path.Ext(p))
	dir := path.Dir(p)

	switch {
	case strings.HasPrefix(imp, "."):
		rel := imp
		for {
			trimmed := strings.TrimPrefix(strings.TrimPrefix(rel, "./"), "../")
			if trimmed == rel {
				break
			}
			rel = trimmed
		}
		if scriptExts[path.Ext(rel)] {
			rel = strings.TrimSuffix(rel, path.Ext(rel))
		}
		if rel == "" || rel == "." || rel == ".." {
			return false
		}
		if strings.HasSuffix(stem, "/"+rel) {
			return true
		}
		return path.Base(stem) == "index" && strings.HasSuffix(dir, "/"+rel)
	case strings.Contains(imp, "/"):
		last := path.Base(strings.TrimSuffix(imp, "/"))
		return last != "" && last != "." && path.Base(dir) == last
	case strings.Contains(imp, "."):
		mod := strings.ReplaceAll(imp, ".", "/")
		return strings.HasSuffix(stem, "/"+mod) || strings.HasSuffix(dir, "/"+mod)
	}
	return false
}

// scriptExts are stripped from relative import specifiers before matching.
var scriptExts = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
}

// Merge combines an earlier result with a newer one. Files present in next
// replace their chunks from prev.
func Merge(prev, next *Result) *Result {
	if prev == nil {
		return next
	}
	if next == nil {
		return prev
	}
	replaced := make(map[string]bool)
	for _, c := range next.Chunks {
		replaced[c.FilePath] = true
	}
	out := newResult()
	files := make(map[string]bool)
	for _, c := range prev.Chunks {
		if !replaced[c.FilePath] {
			out.add(c)
			files[c.FilePath] = true
		}
	}
	out.add(next.Chunks...)
	out.FilesIngested = len(files) + next.FilesIngested
	return out
}
