// Package slicer decomposes composite type definitions into
// independently processable fragments: one data fragment carrying every
// data member inside re-emitted enclosing scopes, and one out-of-line
// fragment per inline member function. Nested types are sliced first.
package slicer

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/store"
)

// ErrOverloadExhausted indicates no unique fragment key could be
// allocated for an overloaded function within the ordinal bound. The
// failure is fatal for that one function only.
var ErrOverloadExhausted = errors.New("overload ordinal space exhausted")

// OverloadBound caps ordinal allocation attempts per bare name.
const OverloadBound = 100

const indentStep = 4

// Slicer performs a scope-aware decomposition over one program graph.
type Slicer struct {
	g     *ir.Graph
	scope *ir.Scope
}

// Slice walks the graph and writes one slice snapshot per composite
// type that has data members or inline functions. Per-type failures are
// logged and never abort processing of sibling types.
func Slice(g *ir.Graph) error {
	s := &Slicer{g: g, scope: ir.NewScope(g.Root, nil)}
	s.walk(g.Root)
	return nil
}

func (s *Slicer) walk(n *ir.Node) {
	for _, child := range n.Children {
		switch child.Kind() {
		case "namespace_definition":
			if name := child.FieldText("name"); name != "" {
				s.scope.Define(name, child)
			}
			s.scope = ir.NewScope(child, s.scope)
			s.walk(child)
			s.scope = s.scope.Parent()
		case "class_specifier", "struct_specifier":
			s.sliceComposite(child)
		default:
			s.walk(child)
		}
	}
}

// sliceComposite classifies the type's direct members, recursively
// slices nested types, then emits the data and function fragments.
func (s *Slicer) sliceComposite(node *ir.Node) {
	if node.QualifiedName == "" || node.ChildByFieldName("body") == nil {
		return
	}

	s.scope = ir.NewScope(node, s.scope)
	defer func() { s.scope = s.scope.Parent() }()

	var fields, funcDefs, nested []*ir.Node
	for _, child := range s.bodyChildren(node) {
		switch child.Kind() {
		case "function_definition":
			funcDefs = append(funcDefs, child)
			s.scope.Define(child.BareName(), child)
		case "field_declaration":
			if spec := nestedSpecifier(child); spec != nil {
				nested = append(nested, spec)
				continue
			}
			fields = append(fields, child)
			s.scope.Define(child.BareName(), child)
		case "class_specifier", "struct_specifier", "enum_specifier":
			if child.ChildByFieldName("body") != nil {
				nested = append(nested, child)
			}
		}
	}

	// A nested type's own decomposition completes before the enclosing
	// type is processed.
	for _, nest := range nested {
		s.sliceComposite(nest)
	}

	data := s.collectData(fields)
	funcs := s.collectFuncs(funcDefs)

	if table := s.scope.Snapshot(); len(table) > 0 {
		if node.SymTableStore == nil {
			node.SymTableStore = store.New[ir.SymTable]()
		}
		node.SymTableStore.AddVersion(table)
	}

	if data == nil && len(funcs) == 0 {
		return
	}
	if node.SliceStore == nil {
		node.SliceStore = store.New[ir.SliceResult]()
	}
	node.SliceStore.AddVersion(ir.SliceResult{Data: data, Funcs: funcs, Nested: nested})
}

func (s *Slicer) bodyChildren(node *ir.Node) []*ir.Node {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for _, child := range node.Children {
		if child.TS.Id() == body.Id() {
			return child.Children
		}
	}
	return nil
}

// collectData re-emits each enclosing scope's declaration header
// outer-to-inner, the collected fields in declaration order, and the
// matching closing delimiters, producing an independently parseable,
// nesting-correct fragment.
func (s *Slicer) collectData(fields []*ir.Node) *ir.Node {
	if len(fields) == 0 {
		return nil
	}
	chain := s.scope.Chain()

	var b strings.Builder
	indent := 0
	for _, sc := range chain {
		fmt.Fprintf(&b, "%s%s %s {\n", spaces(indent), sc.Owner.ScopeKeyword(), sc.Owner.BareName())
		indent += indentStep
	}
	for _, field := range fields {
		fmt.Fprintf(&b, "%s%s\n", spaces(indent), field.Text())
	}
	for i := len(chain) - 1; i >= 0; i-- {
		indent -= indentStep
		closer := "}"
		if chain[i].Owner.IsCompositeType() {
			closer = "};"
		}
		fmt.Fprintf(&b, "%s%s\n", spaces(indent), closer)
	}

	fragment, err := parser.Parse([]byte(b.String()), lang.CPP(), nil)
	if err != nil {
		log.Printf("Warning: data fragment for %s did not reparse: %v", s.scope.Owner.QualifiedName, err)
		return nil
	}
	fragment.Root.QualifiedName = s.scope.Owner.QualifiedName
	return fragment.Root
}

// collectFuncs re-emits every inline member function as an out-of-line
// definition qualified by the enclosing type's full name. Each fragment
// is keyed by an overload-safe ordinal; an exhausted ordinal space or a
// failed reparse skips that one function and leaves siblings intact.
func (s *Slicer) collectFuncs(funcDefs []*ir.Node) map[string]*ir.Node {
	if len(funcDefs) == 0 {
		return nil
	}
	className := s.scope.Owner.QualifiedName
	cppName := strings.ReplaceAll(className, ".", "::")

	funcs := make(map[string]*ir.Node)
	for _, f := range funcDefs {
		fd := ir.FunctionDeclarator(f.ChildByFieldName("declarator"))
		if fd == nil {
			continue
		}
		returnType := f.FieldText("type")
		declarator := ir.NodeText(fd, s.g.Source)
		bare := ir.NodeText(fd.ChildByFieldName("declarator"), s.g.Source)
		body := f.FieldText("body")

		text := fmt.Sprintf("%s %s::%s %s\n", returnType, cppName, declarator, body)
		fragment, err := parser.Parse([]byte(text), lang.CPP(), nil)
		if err != nil {
			log.Printf("Warning: function fragment %s.%s did not reparse: %v", className, bare, err)
			continue
		}
		fragment.Root.QualifiedName = className + "." + declarator

		key, err := AllocateKey(funcs, className, bare)
		if err != nil {
			log.Printf("Warning: skipping %s.%s: %v", className, bare, err)
			continue
		}
		funcs[key] = fragment.Root
	}
	if len(funcs) == 0 {
		return nil
	}
	return funcs
}

// AllocateKey returns the first unused <class>.<bare>.<ordinal> key,
// failing with ErrOverloadExhausted after OverloadBound attempts.
func AllocateKey(used map[string]*ir.Node, className, bare string) (string, error) {
	for ordinal := 0; ordinal < OverloadBound; ordinal++ {
		key := fmt.Sprintf("%s.%s.%d", className, bare, ordinal)
		if _, taken := used[key]; !taken {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s.%s: %w", className, bare, ErrOverloadExhausted)
}

// nestedSpecifier returns the composite type definition carried by a
// field declaration, or nil for a plain data member.
func nestedSpecifier(field *ir.Node) *ir.Node {
	for _, child := range field.Children {
		if child.IsCompositeType() && child.ChildByFieldName("body") != nil {
			return child
		}
	}
	return nil
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}
