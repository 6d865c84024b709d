// Package ir holds the addressable program model built from one parse
// pass: a graph of nodes mirroring the syntax tree, qualified names for
// every declaring node, and lexical scopes for name resolution.
package ir

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/transmute-lang/transmute/internal/store"
)

// Node wraps one syntax node with program-level identity: a graph-unique
// id, a fully qualified dotted name (empty for non-declaring nodes), and
// lazily created stores for derived artifacts. A node owns its children;
// the parent pointer is a non-owning back-reference.
type Node struct {
	ID            uint32
	QualifiedName string
	Parent        *Node
	Children      []*Node
	TS            *sitter.Node

	DependStore   *store.Store[DependSet]
	SliceStore    *store.Store[SliceResult]
	CodeStore     *store.Store[CodeVersion]
	SymTableStore *store.Store[SymTable]
	SummaryStore  *store.Store[string]

	g *Graph
}

// Graph returns the graph this node belongs to.
func (n *Node) Graph() *Graph { return n.g }

// Kind returns the syntax-node kind tag.
func (n *Node) Kind() string {
	if n.TS == nil {
		return ""
	}
	return n.TS.Kind()
}

// Text returns the decoded source text spanned by this node.
func (n *Node) Text() string {
	if n.TS == nil || n.g == nil {
		return ""
	}
	return string(n.g.Source[n.TS.StartByte():n.TS.EndByte()])
}

// IsNamed reports whether the syntax node is a named grammar node.
func (n *Node) IsNamed() bool {
	return n.TS != nil && n.TS.IsNamed()
}

// StartPosition returns the start of the node's source span.
func (n *Node) StartPosition() sitter.Point {
	return n.TS.StartPosition()
}

// EndPosition returns the end of the node's source span.
func (n *Node) EndPosition() sitter.Point {
	return n.TS.EndPosition()
}

// Rows returns the number of source rows the node spans.
func (n *Node) Rows() int {
	return int(n.TS.EndPosition().Row) - int(n.TS.StartPosition().Row)
}

// ChildByFieldName returns the raw syntax child for a grammar field.
func (n *Node) ChildByFieldName(name string) *sitter.Node {
	if n.TS == nil {
		return nil
	}
	return n.TS.ChildByFieldName(name)
}

// FieldText returns the text of a grammar field child, or "".
func (n *Node) FieldText(name string) string {
	child := n.ChildByFieldName(name)
	if child == nil {
		return ""
	}
	return string(n.g.Source[child.StartByte():child.EndByte()])
}

var scopeKeywords = map[string]string{
	"class_specifier":      "class",
	"struct_specifier":     "struct",
	"enum_specifier":       "enum",
	"namespace_definition": "namespace",
}

// ScopeKeyword returns the declaration keyword used to reopen this
// node's scope in emitted fragments ("namespace", "class", ...).
func (n *Node) ScopeKeyword() string {
	return scopeKeywords[n.Kind()]
}

// IsCompositeType reports whether the node is a class/struct/enum
// definition.
func (n *Node) IsCompositeType() bool {
	switch n.Kind() {
	case "class_specifier", "struct_specifier", "enum_specifier":
		return true
	}
	return false
}

// IsFunction reports whether the node is a function definition.
func (n *Node) IsFunction() bool {
	return n.Kind() == "function_definition"
}

// BareName returns the last qualifying segment of the node's name, with
// any synthesized overload-signature segment stripped.
func (n *Node) BareName() string {
	parts := SplitQualified(n.QualifiedName)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
