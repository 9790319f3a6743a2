package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"scout/internal/scoutcore/facts"
	"scout/internal/logging"
)

type language string

const (
	languagePython     language = "py"
	languageJavaScript language = "js"
	languageTypeScript language = "ts"
	languageRust       language = "rs"
)

// nodeKinds maps this language's grammar to the handful of node types
// TreeSitterExtractor cares about, since each Tree-sitter grammar names
// its nodes differently.
type nodeKinds struct {
	function []string
	class    []string
	loop     []string
	guard    []string
	raise    []string // call/throw-like node types treated as Raises
}

var kindsByLanguage = map[language]nodeKinds{
	languagePython: {
		function: []string{"function_definition"},
		class:    []string{"class_definition"},
		loop:     []string{"for_statement", "while_statement"},
		guard:    []string{"if_statement"},
		raise:    []string{"raise_statement"},
	},
	languageJavaScript: {
		function: []string{"function_declaration", "method_definition"},
		class:    []string{"class_declaration"},
		loop:     []string{"for_statement", "for_in_statement", "while_statement"},
		guard:    []string{"if_statement"},
		raise:    []string{"throw_statement"},
	},
	languageTypeScript: {
		function: []string{"function_declaration", "method_definition"},
		class:    []string{"class_declaration"},
		loop:     []string{"for_statement", "for_in_statement", "while_statement"},
		guard:    []string{"if_statement"},
		raise:    []string{"throw_statement"},
	},
	languageRust: {
		function: []string{"function_item"},
		class:    []string{"struct_item", "enum_item"},
		loop:     []string{"for_expression", "while_expression", "loop_expression"},
		guard:    []string{"if_expression"},
		raise:    []string{"macro_invocation"}, // panic!(...), covers the common case
	},
}

var extensionsByLanguage = map[language][]string{
	languagePython:     {".py", ".pyw"},
	languageJavaScript: {".js", ".jsx", ".mjs"},
	languageTypeScript: {".ts", ".tsx"},
	languageRust:       {".rs"},
}

// TreeSitterExtractor implements Extractor for languages handled via
// Tree-sitter: a single sitter.Parser configured with the target grammar,
// walked once to collect symbols and control flow.
type TreeSitterExtractor struct {
	lang   language
	parser *sitter.Parser
	kinds  nodeKinds
}

// NewTreeSitterExtractor returns an extractor configured for lang.
func NewTreeSitterExtractor(lang language) *TreeSitterExtractor {
	p := sitter.NewParser()
	switch lang {
	case languagePython:
		p.SetLanguage(python.GetLanguage())
	case languageJavaScript:
		p.SetLanguage(javascript.GetLanguage())
	case languageTypeScript:
		p.SetLanguage(typescript.GetLanguage())
	case languageRust:
		p.SetLanguage(rust.GetLanguage())
	}
	return &TreeSitterExtractor{lang: lang, parser: p, kinds: kindsByLanguage[lang]}
}

func (t *TreeSitterExtractor) Language() string { return string(t.lang) }

func (t *TreeSitterExtractor) SupportedExtensions() []string {
	return extensionsByLanguage[t.lang]
}

// Extract parses content with the configured grammar and walks the tree
// twice: the first pass records a SymbolFact per function/class node and a
// ControlFlowFact per function node, the second records usage lines of the
// symbols the first pass defined.
func (t *TreeSitterExtractor) Extract(path string, content []byte) (*facts.ModuleFacts, error) {
	tree, err := t.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	mf := facts.NewModuleFacts(path)
	root := tree.RootNode()

	defined := make(map[string]int)
	t.walk(root, content, mf, defined, "")
	t.recordUsages(root, content, mf, defined)

	logging.ExtractDebug("extract: tree-sitter(%s) found %d symbols in %s", t.lang, mf.Symbols.Len(), path)
	return mf, nil
}

func (t *TreeSitterExtractor) nameOf(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return string(content[nameNode.StartByte():nameNode.EndByte()])
}

func (t *TreeSitterExtractor) isKind(nodeType string, kinds []string) bool {
	for _, k := range kinds {
		if k == nodeType {
			return true
		}
	}
	return false
}

// walk recurses over the tree, recording a SymbolFact for each function or
// class/struct node encountered and a ControlFlowFact for each function.
func (t *TreeSitterExtractor) walk(n *sitter.Node, content []byte, mf *facts.ModuleFacts, defined map[string]int, parent string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		nodeType := child.Type()
		name := t.nameOf(child, content)
		line := int(child.StartPoint().Row) + 1

		switch {
		case t.isKind(nodeType, t.kinds.function) && name != "":
			kind := facts.KindFunction
			var parentPtr *string
			if parent != "" {
				kind = facts.KindMethod
				p := parent
				parentPtr = &p
			}
			sig := oneLine(string(content[child.StartByte():min(child.EndByte(), child.StartByte()+200)]))
			mf.Symbols.Set(name, facts.SymbolFact{
				Kind:      kind,
				Name:      name,
				DefinedAt: line,
				Signature: &sig,
				Parent:    parentPtr,
			})
			defined[name] = line
			mf.ControlFlow = append(mf.ControlFlow, t.analyzeBody(name, child))

		case t.isKind(nodeType, t.kinds.class) && name != "":
			mf.Symbols.Set(name, facts.SymbolFact{
				Kind:      facts.KindClass,
				Name:      name,
				DefinedAt: line,
			})
			defined[name] = line
			t.walk(child, content, mf, defined, name)
			continue
		}

		t.walk(child, content, mf, defined, parent)
	}
}

// analyzeBody counts loops/guards/raises within a single function node.
func (t *TreeSitterExtractor) analyzeBody(scope string, fn *sitter.Node) facts.ControlFlowFact {
	cf := facts.ControlFlowFact{Scope: scope}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		nodeType := n.Type()
		switch {
		case t.isKind(nodeType, t.kinds.loop):
			cf.Loops++
		case t.isKind(nodeType, t.kinds.guard):
			cf.Guards = append(cf.Guards, nodeType)
		case t.isKind(nodeType, t.kinds.raise):
			cf.Raises = append(cf.Raises, nodeType)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(fn)
	return cf
}

// recordUsages does a second pass over every identifier-like leaf node,
// appending its line to UsedAt when it matches a defined symbol name other
// than at its own definition site.
func (t *TreeSitterExtractor) recordUsages(root *sitter.Node, content []byte, mf *facts.ModuleFacts, defined map[string]int) {
	if len(defined) == 0 {
		return
	}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.ChildCount() == 0 && n.IsNamed() {
			text := string(content[n.StartByte():n.EndByte()])
			if defLine, ok := defined[text]; ok {
				line := int(n.StartPoint().Row) + 1
				if line != defLine {
					if fact, ok := mf.Symbols.Get(text); ok {
						fact.UsedAt = append(fact.UsedAt, line)
						mf.Symbols.Set(text, fact)
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.SplitN(s, "\n", 2)[0])
}

func min(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
