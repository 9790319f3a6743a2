package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SymbolTable is an insertion-ordered map from symbol name to SymbolFact.
// Go's map type does not preserve iteration order, and serialized facts
// must match the top-to-bottom parse order of the source file, so this
// type tracks insertion order explicitly alongside the lookup map.
type SymbolTable struct {
	order []string
	byKey map[string]SymbolFact
}

// NewSymbolTable returns an empty, ready-to-use table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byKey: make(map[string]SymbolFact)}
}

// Set inserts or updates the fact for name. Updating an existing key keeps
// its original position in insertion order, matching how a single top-to-
// bottom parse pass never revisits an earlier line for the same symbol.
func (t *SymbolTable) Set(name string, fact SymbolFact) {
	if _, exists := t.byKey[name]; !exists {
		t.order = append(t.order, name)
	}
	t.byKey[name] = fact
}

// Get returns the fact for name and whether it was present.
func (t *SymbolTable) Get(name string) (SymbolFact, bool) {
	f, ok := t.byKey[name]
	return f, ok
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.order)
}

// Names returns symbol names in insertion order.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Each calls fn for every symbol in insertion order.
func (t *SymbolTable) Each(fn func(name string, fact SymbolFact)) {
	for _, name := range t.order {
		fn(name, t.byKey[name])
	}
}

// MarshalJSON emits the table as a JSON object in insertion order. The
// standard library marshals Go maps in sorted key order, which would
// scramble parse order, so the object body is built manually.
func (t *SymbolTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(t.byKey[name])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a table from a JSON object, using
// json.Decoder.Token to recover the original key order rather than
// decoding into a plain map (which would discard it).
func (t *SymbolTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("symbol table: expected '{', got %v", tok)
	}

	*t = SymbolTable{byKey: make(map[string]SymbolFact)}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("symbol table: expected string key, got %v", keyTok)
		}
		var fact SymbolFact
		if err := dec.Decode(&fact); err != nil {
			return fmt.Errorf("symbol table: decoding %q: %w", name, err)
		}
		t.Set(name, fact)
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	return nil
}
