package chunker

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps file-type tags to source parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]SourceParser // extension (without dot) → parser
	langs   map[string]string       // extension (without dot) → language name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]SourceParser),
		langs:   make(map[string]string),
	}
}

// Register adds a parser for the given extensions under a language name.
func (r *Registry) Register(name string, p SourceParser, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		r.parsers[ext] = p
		r.langs[ext] = name
	}
}

// Lookup returns the parser for a file-type tag (".py") or a path, or nil.
func (r *Registry) Lookup(fileType string) (SourceParser, string) {
	ext := normalizeExt(fileType)
	if e := filepath.Ext(fileType); e != "" {
		ext = normalizeExt(e)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[ext]
	if !ok {
		return nil, ""
	}
	return p, r.langs[ext]
}

// LanguageName returns the language name for a file type, or "".
func (r *Registry) LanguageName(fileType string) string {
	_, lang := r.Lookup(fileType)
	return lang
}

// Extensions returns every registered extension with its leading dot, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
