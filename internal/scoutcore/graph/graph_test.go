package graph

import (
	"path/filepath"
	"testing"

	"scout/internal/scoutcore/facts"
)

func ref(path string) facts.SymbolRef { return facts.SymbolRef{Path: path} }

func TestAddOrUpdate_BidirectionalEdges(t *testing.T) {
	g := New()
	g.AddOrUpdate(ref("a.go"), "hash-a", []facts.SymbolRef{ref("b.go")})

	pkg := g.GetContextPackage([]facts.SymbolRef{ref("a.go")}, 1)
	if len(pkg) != 2 {
		t.Fatalf("expected 2 nodes (a, b), got %d", len(pkg))
	}
	if b := g.nodes["b.go"]; b == nil || len(b.UsedBy) != 1 || b.UsedBy[0] != "a.go" {
		t.Errorf("expected b.go used_by=[a.go], got %+v", b)
	}
}

func TestAddOrUpdate_HashMismatchCascades(t *testing.T) {
	g := New()
	g.AddOrUpdate(ref("a.go"), "hash-1", nil)
	g.AddOrUpdate(ref("b.go"), "hash-1", []facts.SymbolRef{ref("a.go")})

	// b depends on a; changing a's hash should invalidate a (hash_mismatch)
	// and cascade to b (cascade).
	g.AddOrUpdate(ref("a.go"), "hash-2", nil)

	tm := g.GetTrustMetadata([]facts.SymbolRef{ref("a.go"), ref("b.go")})
	if tm.TotalSymbols != 2 {
		t.Fatalf("expected 2 symbols, got %d", tm.TotalSymbols)
	}
	if tm.StaleRatio != 1.0 {
		t.Errorf("expected stale_ratio=1.0, got %v", tm.StaleRatio)
	}
	if !tm.InvalidationCascadeTriggered {
		t.Error("expected cascade to be triggered")
	}
	if len(tm.InvalidationReasons) != 2 {
		t.Errorf("expected 2 distinct reasons, got %v", tm.InvalidationReasons)
	}
}

func TestGetTrustMetadata_EmptyInput(t *testing.T) {
	g := New()
	tm := g.GetTrustMetadata(nil)
	if tm.TotalSymbols != 0 || tm.StaleRatio != 0.0 || tm.InvalidationCascadeTriggered {
		t.Errorf("expected zero-value metadata for empty input, got %+v", tm)
	}
}

func TestGetContextPackage_BFSOrderAndDepth(t *testing.T) {
	g := New()
	// seed -> mid -> leaf
	g.AddOrUpdate(ref("seed.go"), "h", []facts.SymbolRef{ref("mid.go")})
	g.AddOrUpdate(ref("mid.go"), "h", []facts.SymbolRef{ref("leaf.go")})

	pkg := g.GetContextPackage([]facts.SymbolRef{ref("seed.go")}, 1)
	if len(pkg) != 2 {
		t.Fatalf("expected depth-1 BFS to reach 2 nodes, got %d (%v)", len(pkg), pkg)
	}

	pkg = g.GetContextPackage([]facts.SymbolRef{ref("seed.go")}, 2)
	if len(pkg) != 3 {
		t.Fatalf("expected depth-2 BFS to reach 3 nodes, got %d (%v)", len(pkg), pkg)
	}
	if pkg[0].Path != "seed.go" || pkg[1].Path != "mid.go" || pkg[2].Path != "leaf.go" {
		t.Errorf("expected BFS order seed, mid, leaf, got %v", pkg)
	}
}

func TestMarkStale_CascadesTransitivelyThroughChain(t *testing.T) {
	// A depends on B, B depends on C.
	g := New()
	g.AddOrUpdate(ref("a.go"), "h", []facts.SymbolRef{ref("b.go")})
	g.AddOrUpdate(ref("b.go"), "h", []facts.SymbolRef{ref("c.go")})
	g.AddOrUpdate(ref("c.go"), "h", nil)

	g.MarkStale(ref("c.go"), "hash_mismatch")

	tm := g.GetTrustMetadata([]facts.SymbolRef{ref("a.go"), ref("b.go"), ref("c.go")})
	if tm.TotalSymbols != 3 || tm.StaleRatio != 1.0 {
		t.Fatalf("expected all 3 nodes stale after transitive cascade, got %+v", tm)
	}
	if !tm.InvalidationCascadeTriggered {
		t.Error("expected cascade to be triggered")
	}
}

func TestGetContextPackage_DepthCutoffOnFiveNodeChain(t *testing.T) {
	g := New()
	g.AddOrUpdate(ref("a.go"), "h", []facts.SymbolRef{ref("b.go")})
	g.AddOrUpdate(ref("b.go"), "h", []facts.SymbolRef{ref("c.go")})
	g.AddOrUpdate(ref("c.go"), "h", []facts.SymbolRef{ref("d.go")})
	g.AddOrUpdate(ref("d.go"), "h", []facts.SymbolRef{ref("e.go")})

	pkg := g.GetContextPackage([]facts.SymbolRef{ref("a.go")}, 2)
	got := make(map[string]bool)
	for _, r := range pkg {
		got[r.Path] = true
	}
	want := map[string]bool{"a.go": true, "b.go": true, "c.go": true}
	if len(got) != len(want) {
		t.Fatalf("expected exactly {a,b,c}, got %v", got)
	}
	for p := range want {
		if !got[p] {
			t.Errorf("expected %s in result, got %v", p, got)
		}
	}
}

func TestGetStats_Orphaned(t *testing.T) {
	g := New()
	g.AddOrUpdate(ref("gone.go"), "h", nil)

	stats := g.GetStats(func(path string) bool { return false })
	if stats.Total != 1 || stats.Orphaned != 1 {
		t.Errorf("expected 1 orphaned node, got %+v", stats)
	}
}

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	g := New()
	g.AddOrUpdate(ref("a.go"), "hash-a", []facts.SymbolRef{ref("b.go")})

	path := filepath.Join(t.TempDir(), "dependency_graph.v2.json")
	if err := g.SaveCache(path); err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}

	loaded := New()
	if err := loaded.LoadCache(path); err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	pkg := loaded.GetContextPackage([]facts.SymbolRef{ref("a.go")}, 1)
	if len(pkg) != 2 {
		t.Fatalf("expected round-tripped graph to retain edges, got %d nodes", len(pkg))
	}
}

func TestLoadCache_MissingFileIsEmptyNotError(t *testing.T) {
	g := New()
	err := g.LoadCache(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("expected no error for missing cache, got %v", err)
	}
	stats := g.GetStats(nil)
	if stats.Total != 0 {
		t.Errorf("expected empty graph, got %+v", stats)
	}
}
