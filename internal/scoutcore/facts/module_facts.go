package facts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ModuleFacts is the atomic unit of cached truth for one source file.
type ModuleFacts struct {
	Path            string             `json:"path"`
	Checksum        string             `json:"checksum"`
	ModuleDocstring string             `json:"module_docstring"`
	Imports         []string           `json:"imports"`
	Symbols         *SymbolTable       `json:"symbols"`
	ControlFlow     []ControlFlowFact  `json:"control_flow"`
}

// NewModuleFacts returns an empty ModuleFacts for path, ready for the
// extractor to populate.
func NewModuleFacts(path string) *ModuleFacts {
	return &ModuleFacts{
		Path:    path,
		Symbols: NewSymbolTable(),
	}
}

// canonicalSymbol is the wire shape used only for checksum computation:
// used_at is sorted ascending so two structurally identical symbols hash
// the same regardless of the order references were discovered in.
type canonicalSymbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	DefinedAt int        `json:"defined_at"`
	UsedAt    []int      `json:"used_at"`
	Value     *string    `json:"value,omitempty"`
	Signature *string    `json:"signature,omitempty"`
	Parent    *string    `json:"parent,omitempty"`
}

type canonicalForm struct {
	Path            string             `json:"path"`
	ModuleDocstring string             `json:"module_docstring"`
	Imports         []string           `json:"imports"`
	Symbols         []canonicalSymbol  `json:"symbols"`
	ControlFlow     []ControlFlowFact  `json:"control_flow"`
}

// ComputeChecksum returns the content-addressed digest over the canonical
// JSON serialization of m: symbols ordered by DefinedAt, used_at sorted
// ascending, imports sorted ascending (rendered as a sorted array, since
// Imports is logically a set). It does not mutate m or set m.Checksum;
// callers that want the field populated call Recompute.
func (m *ModuleFacts) ComputeChecksum() string {
	cf := canonicalForm{
		Path:            m.Path,
		ModuleDocstring: m.ModuleDocstring,
		ControlFlow:     append([]ControlFlowFact(nil), m.ControlFlow...),
	}

	imports := append([]string(nil), m.Imports...)
	sort.Strings(imports)
	cf.Imports = imports

	if m.Symbols != nil {
		m.Symbols.Each(func(name string, f SymbolFact) {
			usedAt := append([]int(nil), f.UsedAt...)
			sort.Ints(usedAt)
			cf.Symbols = append(cf.Symbols, canonicalSymbol{
				Name:      name,
				Kind:      f.Kind,
				DefinedAt: f.DefinedAt,
				UsedAt:    usedAt,
				Value:     f.Value,
				Signature: f.Signature,
				Parent:    f.Parent,
			})
		})
	}
	sort.SliceStable(cf.Symbols, func(i, j int) bool {
		return cf.Symbols[i].DefinedAt < cf.Symbols[j].DefinedAt
	})

	// ControlFlow is not sorted: it is hashed in the order the extractor
	// produced it, which is deterministic from a single top-to-bottom parse.

	data, err := json.Marshal(cf)
	if err != nil {
		// json.Marshal can only fail here on an unsupported type, which
		// canonicalForm never contains; this is unreachable in practice.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Recompute sets m.Checksum to ComputeChecksum() and returns it.
func (m *ModuleFacts) Recompute() string {
	m.Checksum = m.ComputeChecksum()
	return m.Checksum
}
