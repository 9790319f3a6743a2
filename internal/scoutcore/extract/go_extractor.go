package extract

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"scout/internal/scoutcore/facts"
)

// GoExtractor implements Extractor for Go source using the standard
// go/ast and go/parser packages, emitting facts.SymbolFact and
// facts.ControlFlowFact directly from the parsed AST.
type GoExtractor struct{}

// NewGoExtractor returns a ready-to-use Go extractor.
func NewGoExtractor() *GoExtractor { return &GoExtractor{} }

func (g *GoExtractor) Language() string               { return "go" }
func (g *GoExtractor) SupportedExtensions() []string { return []string{".go"} }

// Extract parses content as Go source and populates a ModuleFacts: package
// doc comment, import paths, one SymbolFact per top-level func/type/const/
// var, and one ControlFlowFact per function/method body.
func (g *GoExtractor) Extract(path string, content []byte) (*facts.ModuleFacts, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	mf := facts.NewModuleFacts(path)
	if node.Doc != nil {
		mf.ModuleDocstring = strings.TrimSpace(node.Doc.Text())
	}

	for _, imp := range node.Imports {
		mf.Imports = append(mf.Imports, strings.Trim(imp.Path.Value, `"`))
	}

	structMembers := make(map[string]bool)
	for _, decl := range node.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
			for _, spec := range gd.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					if _, isStruct := ts.Type.(*ast.StructType); isStruct {
						structMembers[ts.Name.Name] = true
					}
				}
			}
		}
	}

	var controlFlow []facts.ControlFlowFact

	for _, decl := range node.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			kind := facts.KindFunction
			var parent *string
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = facts.KindMethod
				if recvName := receiverTypeName(d.Recv.List[0].Type); recvName != "" {
					p := recvName
					parent = &p
				}
			}
			line := fset.Position(d.Pos()).Line
			sig := signatureText(d)
			mf.Symbols.Set(name, facts.SymbolFact{
				Kind:      kind,
				Name:      name,
				DefinedAt: line,
				Signature: &sig,
				Parent:    parent,
			})

			scope := name
			if parent != nil {
				scope = *parent + "." + name
			}
			controlFlow = append(controlFlow, analyzeControlFlow(scope, d.Body))

		case *ast.GenDecl:
			collectGenDecl(fset, d, structMembers, mf)
		}
	}

	mf.ControlFlow = controlFlow
	recordUsages(fset, node, mf)
	return mf, nil
}

// collectGenDecl records type/const/var declarations as SymbolFacts.
func collectGenDecl(fset *token.FileSet, gd *ast.GenDecl, structMembers map[string]bool, mf *facts.ModuleFacts) {
	switch gd.Tok {
	case token.TYPE:
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			kind := facts.KindClass
			mf.Symbols.Set(ts.Name.Name, facts.SymbolFact{
				Kind:      kind,
				Name:      ts.Name.Name,
				DefinedAt: fset.Position(ts.Pos()).Line,
			})
		}
	case token.CONST, token.VAR:
		kind := facts.KindConstant
		if gd.Tok == token.VAR {
			kind = facts.KindVariable
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if name.Name == "_" {
					continue
				}
				var value *string
				if i < len(vs.Values) {
					v := exprText(vs.Values[i])
					value = &v
				}
				mf.Symbols.Set(name.Name, facts.SymbolFact{
					Kind:      kind,
					Name:      name.Name,
					DefinedAt: fset.Position(name.Pos()).Line,
					Value:     value,
				})
			}
		}
	}
}

// receiverTypeName strips the leading "*" from a method receiver's type
// expression, returning the bare struct name.
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}

// signatureText renders a function declaration's header: "func", an
// optional receiver, the function name, and its parameter/result types.
func signatureText(d *ast.FuncDecl) string {
	recv := ""
	if d.Recv != nil && len(d.Recv.List) > 0 {
		recv = "(" + exprText(d.Recv.List[0].Type) + ") "
	}
	return "func " + recv + d.Name.Name + paramsText(d.Type)
}

func paramsText(ft *ast.FuncType) string {
	var b strings.Builder
	b.WriteByte('(')
	if ft.Params != nil {
		for i, f := range ft.Params.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprText(f.Type))
		}
	}
	b.WriteByte(')')
	if ft.Results != nil && len(ft.Results.List) > 0 {
		b.WriteString(" (")
		for i, f := range ft.Results.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprText(f.Type))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// exprText renders a small, best-effort textual form of an expression node.
// It is used only for signatures and literal values, never for semantics.
func exprText(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.StarExpr:
		return "*" + exprText(v.X)
	case *ast.SelectorExpr:
		return exprText(v.X) + "." + v.Sel.Name
	case *ast.ArrayType:
		return "[]" + exprText(v.Elt)
	case *ast.BasicLit:
		return v.Value
	case *ast.CallExpr:
		return exprText(v.Fun) + "(...)"
	default:
		return "?"
	}
}

// analyzeControlFlow derives a ControlFlowFact for one function body by
// walking it once: panic() calls and errors.New/fmt.Errorf literals become
// Raises, every if-statement condition (nested ones included) becomes a
// Guard, and every for
// statement increments Loops.
func analyzeControlFlow(scope string, body *ast.BlockStmt) facts.ControlFlowFact {
	cf := facts.ControlFlowFact{Scope: scope}
	if body == nil {
		return cf
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.ForStmt:
			cf.Loops++
		case *ast.RangeStmt:
			cf.Loops++
		case *ast.IfStmt:
			cf.Guards = append(cf.Guards, exprText(v.Cond))
		case *ast.CallExpr:
			if name := exprText(v.Fun); name == "panic" {
				cf.Raises = append(cf.Raises, "panic")
			} else if name == "errors.New" || name == "fmt.Errorf" {
				if len(v.Args) > 0 {
					cf.Raises = append(cf.Raises, exprText(v.Args[0]))
				}
			}
		}
		return true
	})
	return cf
}

// recordUsages scans every identifier in the file and, for each one whose
// name matches a recorded symbol, appends its line number to UsedAt. The
// definition site itself is excluded.
func recordUsages(fset *token.FileSet, node *ast.File, mf *facts.ModuleFacts) {
	names := mf.Symbols.Names()
	if len(names) == 0 {
		return
	}
	lookup := make(map[string]bool, len(names))
	for _, n := range names {
		lookup[n] = true
	}

	ast.Inspect(node, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok || !lookup[ident.Name] {
			return true
		}
		fact, ok := mf.Symbols.Get(ident.Name)
		if !ok {
			return true
		}
		line := fset.Position(ident.Pos()).Line
		if line == fact.DefinedAt {
			return true
		}
		fact.UsedAt = append(fact.UsedAt, line)
		mf.Symbols.Set(ident.Name, fact)
		return true
	})
}
