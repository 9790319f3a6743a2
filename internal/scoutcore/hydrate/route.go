package hydrate

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"scout/internal/scoutcore/facts"
)

// SymbolLookup is the subset of the symbol index that routing needs,
// satisfied by internal/scoutcore/index.Index. Declaring it here (rather
// than importing the index package) keeps hydrate free of a dependency on
// SQLite.
type SymbolLookup interface {
	// FindByName returns file paths containing a symbol named exactly name.
	FindByName(name string) []string
}

// gateKeywords are the terms that, when present in a query, boost any
// candidate file whose path contains "scout".
var gateKeywords = []string{"gate", "confidence", "hallucination"}

// capsSymbolRE extracts CAPS-cased identifiers from a query, used to spot
// an explicit symbol reference like "ERR_NOT_FOUND" or "GateDecision".
var capsSymbolRE = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*\b`)

type scoredFile struct {
	path  string
	score float64
}

// RouteQueryToFiles combines a symbol-index lookup (cheap, targeted) with
// scope expansion, returning up to 15 candidate file paths under scope,
// highest score first. lookup may be nil, in which case only scope
// expansion runs.
func RouteQueryToFiles(query, scope, repoRoot string, lookup SymbolLookup) []string {
	scored := make(map[string]float64)

	for _, sym := range capsSymbolRE.FindAllString(query, -1) {
		if lookup == nil {
			break
		}
		for _, path := range lookup.FindByName(sym) {
			scored[path] += 2.0
		}
		scored = boostFactsContaining(scored, repoRoot, sym, 2.0)
	}

	for _, path := range expandScope(scope, repoRoot) {
		if _, ok := scored[path]; !ok {
			scored[path] = 0.1
		}
	}

	lowerQuery := strings.ToLower(query)
	for _, kw := range gateKeywords {
		if strings.Contains(lowerQuery, kw) {
			for path := range scored {
				if strings.Contains(path, "scout") {
					scored[path] += 1.0
				}
			}
		}
	}

	var ranked []scoredFile
	for path, score := range scored {
		ranked = append(ranked, scoredFile{path: path, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].path < ranked[j].path
	})

	const cap = 15
	if len(ranked) > cap {
		ranked = ranked[:cap]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.path
	}
	return out
}

// boostFactsContaining scans .docs/*.facts.json sidecars under repoRoot for
// any symbol matching name and adds delta to that file's score. Missing or
// unreadable sidecars are silently skipped — routing is best-effort.
func boostFactsContaining(scored map[string]float64, repoRoot, name string, delta float64) map[string]float64 {
	_ = filepath.Walk(repoRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, facts.FactsSuffix) {
			return nil
		}
		mf, loadErr := facts.Load(path)
		if loadErr != nil {
			return nil
		}
		if _, ok := mf.Symbols.Get(name); ok {
			rel, relErr := filepath.Rel(repoRoot, mf.Path)
			if relErr != nil {
				rel = mf.Path
			}
			scored[rel] += delta
		}
		return nil
	})
	return scored
}

// expandScope walks scope (a directory or single file, relative to
// repoRoot) and returns every source-like file found, excluding sidecar
// directories.
func expandScope(scope, repoRoot string) []string {
	root := filepath.Join(repoRoot, scope)
	info, err := os.Stat(root)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		rel, _ := filepath.Rel(repoRoot, root)
		return []string{rel}
	}

	var files []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".docs" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	return files
}
