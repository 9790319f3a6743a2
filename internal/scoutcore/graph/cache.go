package graph

import (
	"encoding/json"
	"os"
	"path/filepath"

	"scout/internal/logging"
)

// cacheFile is the on-disk shape persisted by SaveCache/LoadCache: a
// versioned JSON blob so a future format change can detect and reject an
// older cache instead of silently misreading it.
type cacheFile struct {
	Version int              `json:"version"`
	Nodes   map[string]*Node `json:"nodes"`
	Order   []string         `json:"order"`
}

// DefaultCachePath returns "~/.scout/dependency_graph.v2.json".
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".scout", "dependency_graph.v2.json"), nil
}

// SaveCache writes g to path atomically: marshal, write to a temp file in
// the same directory, then rename over the destination.
func (g *Graph) SaveCache(path string) error {
	g.mu.RLock()
	cf := cacheFile{Version: CacheVersion, Nodes: g.nodes, Order: g.order}
	data, err := json.MarshalIndent(cf, "", "  ")
	g.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".depgraph-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	logging.GraphDebug("graph: saved cache to %s (%d nodes)", path, len(cf.Nodes))
	return nil
}

// LoadCache reads path into g, replacing its contents. A missing file
// leaves g as an empty graph without error. A corrupt file is logged and
// also leaves g empty, so a damaged cache degrades to "nothing cached yet"
// instead of failing startup.
func (g *Graph) LoadCache(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.GraphDebug("graph: no cache file at %s, starting empty", path)
			return nil
		}
		return err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		logging.GraphError("graph: corrupt cache at %s, starting empty: %v", path, err)
		return nil
	}

	if cf.Nodes == nil {
		cf.Nodes = make(map[string]*Node)
	}

	g.mu.Lock()
	g.nodes = cf.Nodes
	g.order = cf.Order
	g.mu.Unlock()

	logging.GraphDebug("graph: loaded cache from %s (%d nodes, version=%d)", path, len(cf.Nodes), cf.Version)
	return nil
}
