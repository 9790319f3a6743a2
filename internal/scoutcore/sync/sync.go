// Package sync implements the repo sync pipeline: walk a scope, re-extract
// and re-synthesize docs for changed (or all) recognized source files, and
// update the dependency graph and symbol index to match. A supplemental
// fsnotify-based watcher re-syncs each changed file on its own.
package sync

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"scout/internal/logging"
	"scout/internal/scoutcore/extract"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/graph"
	"scout/internal/scoutcore/index"
	"scout/internal/scoutcore/scouterr"
	"scout/internal/scoutcore/synth"
)

// Synthesizer is the subset of synth.Synthesizer's contract Engine needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, mf *facts.ModuleFacts, central bool) (tldr, deep string, err error)
}

var _ Synthesizer = (*synth.Synthesizer)(nil)

// Engine runs the core sync pipeline: extract -> diff against the
// dependency graph -> re-synthesize docs -> update the symbol index.
type Engine struct {
	RepoRoot  string
	Registry  *extract.Registry
	Graph     *graph.Graph
	Index     *index.Index
	Synth     Synthesizer
}

// Result is sync's return value: the count of regenerated docs plus any
// per-file parse errors recorded. A parse error for one file is never
// fatal to the run - it's recorded in Skipped and the walk continues.
type Result struct {
	Regenerated int
	Skipped     []SkippedFile
}

// SkippedFile records one file that failed extraction during a sync pass.
type SkippedFile struct {
	Path string
	Err  *scouterr.Error
}

// Sync implements sync(scope, changed_only): walks scope (a repo-relative
// subpath), re-extracting and re-synthesizing every recognized source file
// whose content hash differs from the dependency graph's record
// (changedOnly=true), or every recognized file unconditionally
// (changedOnly=false).
func (e *Engine) Sync(ctx context.Context, scope string, changedOnly bool) (Result, error) {
	var result Result
	root := filepath.Join(e.RepoRoot, scope)

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if info.Name() == ".docs" || info.Name() == ".scout" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(e.RepoRoot, path)
		if err != nil {
			return nil
		}

		if _, ok := e.Registry.For(relPath); !ok {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logging.SyncWarn("sync: io error reading %s: %v", relPath, err)
			return nil
		}

		regenerated, skip := e.syncOne(ctx, relPath, content, changedOnly)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
		}
		if regenerated {
			result.Regenerated++
		}
		return nil
	})
	if err != nil {
		return result, scouterr.Wrap(scouterr.IOError, "sync: walk failed", err)
	}

	return result, nil
}

func (e *Engine) syncOne(ctx context.Context, relPath string, content []byte, changedOnly bool) (regenerated bool, skipped *SkippedFile) {
	mf, err := e.Registry.Extract(relPath, content)
	if err != nil {
		logging.SyncWarn("sync: parse_error on %s: %v", relPath, err)
		return false, &SkippedFile{Path: relPath, Err: scouterr.Wrap(scouterr.ParseError, "could not parse "+relPath, err)}
	}

	ref := facts.SymbolRef{Path: relPath}
	if changedOnly && !e.hashChanged(ref, mf.Checksum) {
		return false, nil
	}

	if err := facts.Save(facts.FactsPath(filepath.Join(e.RepoRoot, relPath)), mf); err != nil {
		logging.SyncWarn("sync: io_error saving facts for %s: %v", relPath, err)
		return false, &SkippedFile{Path: relPath, Err: scouterr.Wrap(scouterr.IOError, "could not save facts for "+relPath, err)}
	}

	var deps []facts.SymbolRef
	for _, imp := range mf.Imports {
		deps = append(deps, facts.SymbolRef{Path: imp})
	}
	e.Graph.AddOrUpdate(ref, mf.Checksum, deps)

	if e.Index != nil {
		if err := e.Index.ReplaceFile(relPath, mf); err != nil {
			logging.SyncWarn("sync: index update failed for %s: %v", relPath, err)
		}
	}

	if e.Synth != nil {
		central := e.isCentral(ref)
		if _, _, err := e.Synth.Synthesize(ctx, mf, central); err != nil {
			logging.SyncWarn("sync: doc synthesis failed for %s: %v", relPath, err)
		}
	}

	return true, nil
}

func (e *Engine) hashChanged(ref facts.SymbolRef, newHash string) bool {
	oldHash, known := e.Graph.Hash(ref)
	return !known || oldHash != newHash
}

// isCentral reports whether a depth-2 BFS from ref reaches more nodes than
// a depth-1 BFS, i.e. whether ref has dependencies two hops away. This is
// not the signal hydrate uses to decide whether to load a .deep.md.
func (e *Engine) isCentral(ref facts.SymbolRef) bool {
	shallow := e.Graph.GetContextPackage([]facts.SymbolRef{ref}, 1)
	deep := e.Graph.GetContextPackage([]facts.SymbolRef{ref}, 2)
	return len(deep) > len(shallow)
}

func isIgnoredDir(name string) bool {
	return name == ".git" || name == ".scout" || name == ".docs" || strings.HasPrefix(name, ".")
}
