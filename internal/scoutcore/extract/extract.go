// Package extract implements the AST Fact Extractor: a pure function from
// source bytes to facts.ModuleFacts. Nothing in this package may reach for
// an LLM, a network client, or a cache — every fact here is derivable from
// parsing alone, and the same input always produces the same output.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"scout/internal/scoutcore/facts"
	"scout/internal/logging"
)

// Extractor turns the raw bytes of one source file into ModuleFacts.
type Extractor interface {
	// Language returns a short lowercase identifier ("go", "py", "rs", ...).
	Language() string
	// SupportedExtensions lists the file extensions this extractor handles,
	// each including the leading dot.
	SupportedExtensions() []string
	// Extract parses content and returns the facts for path. path is used
	// only to populate ModuleFacts.Path; it is never read from disk here.
	Extract(path string, content []byte) (*facts.ModuleFacts, error)
}

// Registry routes a file to the Extractor registered for its extension.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	fallback   Extractor
}

// NewRegistry returns an empty registry. Use DefaultRegistry for one
// pre-populated with every built-in extractor.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register associates e with each of its supported extensions, replacing
// any extractor already registered for that extension.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.SupportedExtensions() {
		r.extractors[normalizeExt(ext)] = e
	}
}

// SetFallback installs the extractor used when no extension-specific one is
// registered. DefaultRegistry installs a regex-based extractor here.
func (r *Registry) SetFallback(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = e
}

// For returns the extractor for path's extension, or the fallback if none
// matches. The returned bool is false only when neither exists.
func (r *Registry) For(path string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.extractors[normalizeExt(filepath.Ext(path))]; ok {
		return e, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Extract routes path/content to the appropriate Extractor and recomputes
// the resulting ModuleFacts.Checksum before returning it.
func (r *Registry) Extract(path string, content []byte) (*facts.ModuleFacts, error) {
	e, ok := r.For(path)
	if !ok {
		return nil, fmt.Errorf("extract: no extractor for %s", path)
	}
	logging.ExtractDebug("extract: routing %s to %s extractor", path, e.Language())
	mf, err := e.Extract(path, content)
	if err != nil {
		return nil, fmt.Errorf("extract: %s: %w", path, err)
	}
	mf.Recompute()
	return mf, nil
}

// DefaultRegistry returns a Registry with every built-in extractor wired in:
// go/ast for Go, Tree-sitter for Python/JavaScript/TypeScript/Rust, and a
// regex-based fallback for everything else.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoExtractor())
	r.Register(NewTreeSitterExtractor(languagePython))
	r.Register(NewTreeSitterExtractor(languageJavaScript))
	r.Register(NewTreeSitterExtractor(languageTypeScript))
	r.Register(NewTreeSitterExtractor(languageRust))
	r.SetFallback(NewRegexExtractor())
	return r
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
