package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scout/internal/scoutcore/extract"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/graph"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newEngine(root string) *Engine {
	return &Engine{
		RepoRoot: root,
		Registry: extract.DefaultRegistry(),
		Graph:    graph.New(),
	}
}

func TestSync_FirstPassRegeneratesEveryRecognizedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() {}\n")
	writeFile(t, filepath.Join(root, "b.go"), "package b\n\nfunc B() {}\n")

	e := newEngine(root)
	result, err := e.Sync(context.Background(), ".", false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Regenerated != 2 {
		t.Errorf("expected 2 regenerated files, got %d", result.Regenerated)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("expected no skipped files, got %v", result.Skipped)
	}
}

func TestSync_ChangedOnlySkipsUnmodifiedFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "package a\n\nfunc A() {}\n")

	e := newEngine(root)
	if _, err := e.Sync(context.Background(), ".", true); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	result, err := e.Sync(context.Background(), ".", true)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if result.Regenerated != 0 {
		t.Errorf("expected 0 regenerated on unchanged second pass, got %d", result.Regenerated)
	}
}

func TestSync_ChangedOnlyReRegeneratesModifiedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeFile(t, path, "package a\n\nfunc A() {}\n")

	e := newEngine(root)
	if _, err := e.Sync(context.Background(), ".", true); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	writeFile(t, path, "package a\n\nfunc A() {}\n\nfunc C() {}\n")

	result, err := e.Sync(context.Background(), ".", true)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if result.Regenerated != 1 {
		t.Errorf("expected 1 regenerated after modification, got %d", result.Regenerated)
	}
}

func TestSync_ParseErrorOnOneFileDoesNotHaltRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.go"), "package good\n\nfunc Good() {}\n")
	// An unparseable Go file: the go/ast extractor will fail on it, but the
	// regex fallback never does, so force a genuine parse_error by writing
	// a file whose extension the Go extractor claims but whose content
	// cannot be parsed as Go source.
	writeFile(t, filepath.Join(root, "bad.go"), "package bad\n\nfunc ( broken {\n")

	e := newEngine(root)
	result, err := e.Sync(context.Background(), ".", false)
	if err != nil {
		t.Fatalf("Sync returned a fatal error instead of recording a per-file skip: %v", err)
	}
	if result.Regenerated != 1 {
		t.Errorf("expected the good file to still regenerate, got %d", result.Regenerated)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected exactly 1 skipped file, got %d: %v", len(result.Skipped), result.Skipped)
	}
	if result.Skipped[0].Path != "bad.go" {
		t.Errorf("expected bad.go to be the skipped file, got %s", result.Skipped[0].Path)
	}
}

func TestSync_SkipsDotDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".docs", "stale.facts.json"), "{}")
	writeFile(t, filepath.Join(root, ".scout", "audit.jsonl"), "{}")
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() {}\n")

	e := newEngine(root)
	result, err := e.Sync(context.Background(), ".", false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Regenerated != 1 {
		t.Errorf("expected only a.go to regenerate, got %d", result.Regenerated)
	}
}

func TestIsCentral_ReportsTrueWhenDeeperBFSReachesMoreNodes(t *testing.T) {
	root := t.TempDir()
	e := newEngine(root)

	leaf := facts.SymbolRef{Path: "leaf.go"}
	mid := facts.SymbolRef{Path: "mid.go"}
	hub := facts.SymbolRef{Path: "hub.go"}

	e.Graph.AddOrUpdate(leaf, "hash-leaf", nil)
	e.Graph.AddOrUpdate(mid, "hash-mid", []facts.SymbolRef{leaf})
	e.Graph.AddOrUpdate(hub, "hash-hub", []facts.SymbolRef{mid})

	if e.isCentral(leaf) {
		t.Errorf("expected leaf (no dependencies) to not be central")
	}
	if !e.isCentral(hub) {
		t.Errorf("expected hub (reaches mid then leaf) to be central")
	}
}

func TestIsIgnoredDir(t *testing.T) {
	cases := map[string]bool{
		".git": true, ".scout": true, ".docs": true, ".hidden": true,
		"pkg": false, "cmd": false,
	}
	for name, want := range cases {
		if got := isIgnoredDir(name); got != want {
			t.Errorf("isIgnoredDir(%q) = %v, want %v", name, got, want)
		}
	}
}
