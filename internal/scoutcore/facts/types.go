// Package facts defines the structured, deterministic truth that the AST
// extractor produces: SymbolRef, SymbolFact, ControlFlowFact and the
// ModuleFacts envelope that is persisted as <file>.facts.json.
//
// Nothing in this package may depend on an LLM, a network client, or a
// cache; every value here is derivable purely from source bytes.
package facts

import "fmt"

// SymbolKind enumerates the kinds of symbols the extractor records.
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindClass    SymbolKind = "class"
	KindMethod   SymbolKind = "method"
	KindConstant SymbolKind = "constant"
	KindVariable SymbolKind = "variable"
	KindImport   SymbolKind = "import"
)

// SymbolRef is the stable identity used for cache keys, graph nodes, and
// lock entries: a relative filesystem path plus an optional symbol name.
// An empty Symbol denotes the entire file.
type SymbolRef struct {
	Path   string `json:"path"`
	Symbol string `json:"symbol,omitempty"`
}

// String renders the display form "path::symbol", or just "path" when the
// ref denotes the whole file.
func (r SymbolRef) String() string {
	if r.Symbol == "" {
		return r.Path
	}
	return fmt.Sprintf("%s::%s", r.Path, r.Symbol)
}

// Equal reports structural equality on both fields.
func (r SymbolRef) Equal(other SymbolRef) bool {
	return r.Path == other.Path && r.Symbol == other.Symbol
}

// SymbolFact is a fact recorded about one named symbol. Every field is
// derived purely from parsing; no LLM input is permitted to populate any
// of them.
type SymbolFact struct {
	Kind      SymbolKind `json:"kind"`
	Name      string     `json:"name"`
	DefinedAt int        `json:"defined_at"`
	UsedAt    []int      `json:"used_at"`
	Value     *string    `json:"value,omitempty"`
	Signature *string    `json:"signature,omitempty"`
	Parent    *string    `json:"parent,omitempty"`
}

// ControlFlowFact summarizes the structure of one function/method scope:
// its raise/panic sites, guard predicates, and loop count.
type ControlFlowFact struct {
	Scope  string   `json:"scope"`
	Raises []string `json:"raises"`
	Guards []string `json:"guards"`
	Loops  int      `json:"loops"`
}
