// Package graph implements the persistent, invalidation-aware dependency
// graph: a symbol-level adjacency structure with bidirectional edges,
// cascade invalidation, and BFS traversal, held in memory and persisted as
// a single versioned JSON cache file. A workspace-local graph has no need
// for a query engine, so an in-memory structure with JSON persistence is
// enough.
package graph

import (
	"sort"
	"sync"
	"time"

	"scout/internal/logging"
	"scout/internal/scoutcore/facts"
)

// CacheVersion is bumped whenever the on-disk format changes incompatibly.
const CacheVersion = 2

// Node is one entry in the dependency graph: a symbol ref, its last-known
// AST checksum, and its invalidation state.
type Node struct {
	Ref              facts.SymbolRef `json:"ref"`
	ASTHash          string          `json:"ast_hash"`
	DependsOn        []string        `json:"depends_on"`
	UsedBy           []string        `json:"used_by"`
	Invalid          bool            `json:"invalid"`
	InvalidReason    string          `json:"invalid_reason,omitempty"`
	InvalidatedAt    *time.Time      `json:"invalidated_at,omitempty"`
}

// key returns the adjacency-map key for a node: its SymbolRef's string form.
func key(ref facts.SymbolRef) string { return ref.String() }

// TrustMetadata is the aggregate computed by GetTrustMetadata.
type TrustMetadata struct {
	TotalSymbols               int        `json:"total_symbols"`
	StaleRatio                 float64    `json:"stale_ratio"`
	InvalidationCascadeTriggered bool     `json:"invalidation_cascade_triggered"`
	InvalidationReasons         []string  `json:"invalidation_reasons"`
	OldestInvalidation          *time.Time `json:"oldest_invalidation"`
}

// Stats is the aggregate computed by GetStats.
type Stats struct {
	Total       int `json:"total"`
	Stale       int `json:"stale"`
	Orphaned    int `json:"orphaned"`
	CacheVersion int `json:"cache_version"`
}

// Graph is a dependency graph over facts.SymbolRef nodes. It is safe for
// concurrent use; every exported method takes g.mu.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	// order preserves node insertion order for deterministic iteration over
	// the whole graph. BFS does not consult it; it follows each node's
	// DependsOn slice, which keeps edges in the order they were added.
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddOrUpdate inserts ref or refreshes an existing node. If astHash differs
// from the stored value, the node is marked invalid with reason
// "hash_mismatch" and invalidation cascades through the transitive closure
// of its UsedBy edges, each newly invalidated node marked with reason
// "cascade".
func (g *Graph) AddOrUpdate(ref facts.SymbolRef, astHash string, dependsOn []facts.SymbolRef) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := key(ref)
	n, exists := g.nodes[k]
	if !exists {
		n = &Node{Ref: ref, ASTHash: astHash}
		g.nodes[k] = n
		g.order = append(g.order, k)
	}

	hashChanged := exists && n.ASTHash != astHash
	n.ASTHash = astHash

	deps := make([]string, 0, len(dependsOn))
	for _, d := range dependsOn {
		dk := key(d)
		deps = append(deps, dk)
		dn, ok := g.nodes[dk]
		if !ok {
			dn = &Node{Ref: d}
			g.nodes[dk] = dn
			g.order = append(g.order, dk)
		}
		dn.UsedBy = appendUnique(dn.UsedBy, k)
	}
	n.DependsOn = deps

	if hashChanged {
		g.invalidateLocked(k, "hash_mismatch")
		g.cascadeLocked(k, "cascade")
	}
}

// MarkStale invalidates ref with reason and cascades to its direct and
// indirect users.
func (g *Graph) MarkStale(ref facts.SymbolRef, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key(ref)
	if _, ok := g.nodes[k]; !ok {
		return
	}
	g.invalidateLocked(k, reason)
	g.cascadeLocked(k, "cascade")
}

func (g *Graph) invalidateLocked(k, reason string) {
	n := g.nodes[k]
	if n == nil {
		return
	}
	now := time.Now().UTC()
	n.Invalid = true
	n.InvalidReason = reason
	n.InvalidatedAt = &now
	logging.GraphDebug("graph: invalidated %s reason=%s", k, reason)
}

// cascadeLocked invalidates the transitive closure of k's used_by edges:
// every node that (directly or indirectly) depends on k becomes invalid
// with reason. Each node is visited exactly once per originating
// invalidation event, so cycles in the dependency graph terminate the walk
// rather than looping it.
func (g *Graph) cascadeLocked(k, reason string) {
	visited := map[string]bool{k: true}
	queue := []string{k}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := g.nodes[cur]
		if n == nil {
			continue
		}
		for _, userKey := range n.UsedBy {
			if visited[userKey] {
				continue
			}
			visited[userKey] = true
			if user, ok := g.nodes[userKey]; ok && !user.Invalid {
				g.invalidateLocked(userKey, reason)
			}
			queue = append(queue, userKey)
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// GetContextPackage performs a BFS from seeds, visiting each node at most
// once and stopping at depth maxDepth (seeds are at depth 0, inclusive).
// Nodes are returned in BFS order; within one level, in the insertion
// order of each node's adjacency set, so the same seeds always yield the
// same ordering.
func (g *Graph) GetContextPackage(seeds []facts.SymbolRef, maxDepth int) []facts.SymbolRef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]bool)
	var result []facts.SymbolRef

	type queueItem struct {
		k     string
		depth int
	}
	var queue []queueItem
	for _, s := range seeds {
		k := key(s)
		if visited[k] {
			continue
		}
		visited[k] = true
		queue = append(queue, queueItem{k: k, depth: 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n, ok := g.nodes[cur.k]
		if !ok {
			continue
		}
		result = append(result, n.Ref)

		if cur.depth >= maxDepth {
			continue
		}
		for _, depKey := range n.DependsOn {
			if visited[depKey] {
				continue
			}
			visited[depKey] = true
			queue = append(queue, queueItem{k: depKey, depth: cur.depth + 1})
		}
	}

	return result
}

// GetTrustMetadata aggregates invalidation state over nodes. Empty input
// yields all zero/false/empty values.
func (g *Graph) GetTrustMetadata(nodes []facts.SymbolRef) TrustMetadata {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tm := TrustMetadata{}
	if len(nodes) == 0 {
		return tm
	}

	reasonSet := make(map[string]bool)
	staleCount := 0
	var oldest *time.Time

	for _, ref := range nodes {
		n, ok := g.nodes[key(ref)]
		if !ok {
			continue
		}
		tm.TotalSymbols++
		if n.Invalid {
			staleCount++
			if n.InvalidReason == "cascade" {
				tm.InvalidationCascadeTriggered = true
			}
			if n.InvalidReason != "" {
				reasonSet[n.InvalidReason] = true
			}
			if n.InvalidatedAt != nil && (oldest == nil || n.InvalidatedAt.Before(*oldest)) {
				oldest = n.InvalidatedAt
			}
		}
	}

	if tm.TotalSymbols > 0 {
		tm.StaleRatio = float64(staleCount) / float64(tm.TotalSymbols)
	}
	for r := range reasonSet {
		tm.InvalidationReasons = append(tm.InvalidationReasons, r)
	}
	sort.Strings(tm.InvalidationReasons)
	tm.OldestInvalidation = oldest

	return tm
}

// Hash returns the last-recorded AST checksum for ref, and whether ref is
// known to the graph at all. Used by sync's changed_only diff to decide
// whether a file needs re-extraction without mutating graph state.
func (g *Graph) Hash(ref facts.SymbolRef) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[key(ref)]
	if !ok {
		return "", false
	}
	return n.ASTHash, true
}

// GetStats returns total/stale/orphaned counts. orphaned counts nodes whose
// ref.Path no longer exists on disk, per exists.
func (g *Graph) GetStats(exists func(path string) bool) Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{CacheVersion: CacheVersion}
	for _, k := range g.order {
		n := g.nodes[k]
		if n == nil {
			continue
		}
		s.Total++
		if n.Invalid {
			s.Stale++
		}
		if exists != nil && !exists(n.Ref.Path) {
			s.Orphaned++
		}
	}
	return s
}
