// Package index implements the Symbol Index: a ctags-style symbol list
// loaded into SQLite with columns (name, file, line, kind), indexed on
// name and name LIKE, supporting ranked navigation queries. No LLM
// involvement anywhere in this package. sql.Open runs with WAL and
// busy-timeout pragmas, a schema string executed once at open, behind a
// mutex-guarded *sql.DB wrapper.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"scout/internal/scoutcore/facts"
)

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	name TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	kind TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_name_like ON symbols(name COLLATE NOCASE);
`

// Index wraps a SQLite-backed symbol table.
type Index struct {
	mu sync.RWMutex
	db *sql.DB
}

// DefaultPath returns $repoRoot/.scout/index.db.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".scout", "index.db")
}

// Open creates or opens the symbol index at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("index: failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: failed to initialize schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// ReplaceFile deletes every symbol recorded for file, then inserts the
// symbols in mf (ctags-style re-indexing of one source file after a
// sync pass).
func (idx *Index) ReplaceFile(file string, mf *facts.ModuleFacts) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM symbols WHERE file = ?`, file); err != nil {
		return fmt.Errorf("index: delete existing symbols: %w", err)
	}

	if mf != nil {
		stmt, err := tx.Prepare(`INSERT INTO symbols (name, file, line, kind) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, name := range mf.Symbols.Names() {
			sym, _ := mf.Symbols.Get(name)
			if _, err := stmt.Exec(sym.Name, file, sym.DefinedAt, string(sym.Kind)); err != nil {
				return fmt.Errorf("index: insert symbol %s: %w", sym.Name, err)
			}
		}
	}

	return tx.Commit()
}

// Candidate is one ranked navigation result.
type Candidate struct {
	Name string
	File string
	Line int
	Kind string
}

// QueryForNav returns up to limit ranked navigation candidates matching
// query: exact match ranks above prefix, which ranks above substring, and
// ties within one rank are broken by file path for deterministic output.
func (idx *Index) QueryForNav(query string, limit int) ([]Candidate, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rows, err := idx.db.Query(`SELECT name, file, line, kind FROM symbols WHERE name LIKE ?`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()

	type ranked struct {
		Candidate
		rank int
	}
	var results []ranked
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Name, &c.File, &c.Line, &c.Kind); err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		results = append(results, ranked{Candidate: c, rank: rankOf(c.Name, query)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].rank != results[j].rank {
			return results[i].rank < results[j].rank
		}
		return results[i].File < results[j].File
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make([]Candidate, len(results))
	for i, r := range results {
		out[i] = r.Candidate
	}
	return out, nil
}

// rankOf assigns 0 (exact), 1 (prefix), or 2 (substring, the loosest the
// LIKE query can have matched).
func rankOf(name, query string) int {
	if name == query {
		return 0
	}
	if strings.HasPrefix(name, query) {
		return 1
	}
	return 2
}

// FindByName implements hydrate.SymbolLookup: returns every file a symbol
// of this exact name was defined in.
func (idx *Index) FindByName(name string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rows, err := idx.db.Query(`SELECT DISTINCT file FROM symbols WHERE name = ? ORDER BY file`, name)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err == nil {
			files = append(files, f)
		}
	}
	return files
}
