// Package namer assigns fully qualified, hierarchical names to every
// semantically meaningful node of a program graph. It runs as a second
// pass over the constructed graph and keeps the graph's name index
// synchronized with every assignment and re-qualification.
package namer

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/transmute-lang/transmute/internal/ir"
)

// assigner carries the enclosing name chain during the walk.
type assigner struct {
	g     *ir.Graph
	chain []string
	table ir.Dispatch
}

// Assign names every declaring node in the graph. Non-declaring and
// anonymous nodes receive no name.
func Assign(g *ir.Graph) {
	a := &assigner{g: g}
	a.table = ir.Dispatch{
		"namespace_definition": a.namespaceDefinition,
		"class_specifier":      a.typeSpecifier,
		"struct_specifier":     a.typeSpecifier,
		"enum_specifier":       a.typeSpecifier,
		"function_definition":  a.functionDefinition,
		"field_declaration":    a.fieldDeclaration,
		"declaration":          a.declaration,
		"enumerator":           a.enumerator,
	}
	a.walk(g.Root)
}

// walk dispatches kinds the table covers and descends through every
// other construct (preprocessor blocks, declaration lists, templates).
func (a *assigner) walk(n *ir.Node) {
	if a.table.Covers(n) {
		a.table.Visit(n) //nolint:errcheck // handlers never fail
		return
	}
	for _, child := range n.Children {
		a.walk(child)
	}
}

// qualified joins the enclosing chain with a local identifier.
func (a *assigner) qualified(local string) string {
	if len(a.chain) == 0 {
		return local
	}
	name := a.chain[0]
	for _, seg := range a.chain[1:] {
		name += "." + seg
	}
	return name + "." + local
}

func (a *assigner) namespaceDefinition(n *ir.Node) error {
	name := n.FieldText("name")
	if name == "" {
		// Anonymous namespace: contents stay at the enclosing level.
		for _, child := range n.Children {
			a.walk(child)
		}
		return nil
	}
	a.g.SetName(n, a.qualified(name))
	a.chain = append(a.chain, name)
	for _, child := range n.Children {
		a.walk(child)
	}
	a.chain = a.chain[:len(a.chain)-1]
	return nil
}

func (a *assigner) typeSpecifier(n *ir.Node) error {
	name := n.FieldText("name")
	if name == "" {
		return nil
	}
	a.g.SetName(n, a.qualified(name))
	if n.ChildByFieldName("body") == nil {
		// Forward declaration: nothing to descend into.
		return nil
	}
	a.chain = append(a.chain, name)
	for _, child := range n.Children {
		a.walk(child)
	}
	a.chain = a.chain[:len(a.chain)-1]
	return nil
}

func (a *assigner) functionDefinition(n *ir.Node) error {
	fd := ir.FunctionDeclarator(n.ChildByFieldName("declarator"))
	if fd == nil {
		return nil
	}
	bare := ir.NodeText(fd.ChildByFieldName("declarator"), a.g.Source)
	params := ir.NodeText(fd.ChildByFieldName("parameters"), a.g.Source)
	if bare == "" {
		return nil
	}
	// The parameter list becomes a synthesized trailing signature
	// segment; depth computations strip it again.
	a.g.SetName(n, a.qualified(bare)+"."+params)

	a.chain = append(a.chain, bare)
	if body := n.ChildByFieldName("body"); body != nil {
		if bodyNode := a.findChild(n, body); bodyNode != nil {
			for _, child := range bodyNode.Children {
				a.walk(child)
			}
		}
	}
	a.chain = a.chain[:len(a.chain)-1]
	return nil
}

func (a *assigner) fieldDeclaration(n *ir.Node) error {
	// A field declaration may carry a nested type definition; the nested
	// specifier names itself through its own handler.
	for _, child := range n.Children {
		if child.IsCompositeType() {
			a.walk(child)
			return nil
		}
	}
	name := ir.DeclaratorName(n.ChildByFieldName("declarator"), a.g.Source)
	if name == "" {
		return nil
	}
	a.g.SetName(n, a.qualified(name))
	return nil
}

func (a *assigner) declaration(n *ir.Node) error {
	name := ir.DeclaratorName(n.ChildByFieldName("declarator"), a.g.Source)
	if name == "" {
		return nil
	}
	a.g.SetName(n, a.qualified(name))
	if len(a.chain) == 0 {
		a.g.Globals[name] = n
	}
	return nil
}

func (a *assigner) enumerator(n *ir.Node) error {
	name := n.FieldText("name")
	if name == "" {
		return nil
	}
	a.g.SetName(n, a.qualified(name))
	return nil
}

// findChild locates the ir node wrapping a raw syntax child of n.
func (a *assigner) findChild(n *ir.Node, ts *sitter.Node) *ir.Node {
	for _, child := range n.Children {
		if child.TS.Id() == ts.Id() {
			return child
		}
	}
	return nil
}
