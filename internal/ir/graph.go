package ir

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Graph owns the program model for one parse pass. Node ids are handed
// out by an arena scoped to the graph, so independent graphs never
// interfere and may be built in parallel. A graph is replaced wholesale
// by a fresh parse (e.g. after include merging), never patched in place.
type Graph struct {
	UID    uuid.UUID
	Root   *Node
	Source []byte
	Tree   *sitter.Tree

	// NameIndex and Nodes must have exactly one writer per pass.
	NameIndex map[string]uint32
	Nodes     map[uint32]*Node
	Globals   map[string]*Node

	nextID uint32
}

// NewGraph creates an empty graph owning the given source and tree.
func NewGraph(source []byte, tree *sitter.Tree) *Graph {
	return &Graph{
		UID:       uuid.New(),
		Source:    source,
		Tree:      tree,
		NameIndex: make(map[string]uint32),
		Nodes:     make(map[uint32]*Node),
		Globals:   make(map[string]*Node),
	}
}

// NewNode allocates a node with the next sequential id and links it to
// its parent. The caller appends it to parent.Children.
func (g *Graph) NewNode(ts *sitter.Node, parent *Node) *Node {
	g.nextID++
	n := &Node{ID: g.nextID, Parent: parent, TS: ts, g: g}
	g.Nodes[n.ID] = n
	return n
}

// SetName assigns a qualified name to a node and keeps the name index
// synchronized, including re-qualification of an already named node.
func (g *Graph) SetName(n *Node, name string) {
	if n.QualifiedName != "" {
		delete(g.NameIndex, n.QualifiedName)
	}
	n.QualifiedName = name
	if name != "" {
		g.NameIndex[name] = n.ID
	}
}

// NodeByName looks up a node by its exact qualified name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil, false
	}
	return g.Nodes[id], true
}

// Close releases the retained syntax tree.
func (g *Graph) Close() {
	if g.Tree != nil {
		g.Tree.Close()
		g.Tree = nil
	}
}

// SplitQualified splits a dotted qualified name into its qualifying
// segments, dropping a trailing "(...)" overload-signature segment.
func SplitQualified(name string) []string {
	if name == "" {
		return nil
	}
	parts := strings.Split(name, ".")
	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "(") && strings.HasSuffix(last, ")") {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// NameDepth returns the nesting level a qualified name encodes.
func NameDepth(name string) int {
	return len(SplitQualified(name))
}

// ResolveName scans every named node whose last qualifying segment
// equals identifier, excluding the asking node itself, and returns those
// declared strictly above the asker's nesting level — or at the same
// level when allowSameLevel is set. A deeper match is never returned.
// Results are ordered by node id.
func (g *Graph) ResolveName(identifier string, asking *Node, allowSameLevel bool) []*Node {
	if asking == nil || asking.QualifiedName == "" {
		return nil
	}
	level := NameDepth(asking.QualifiedName)

	var resolved []*Node
	for name, id := range g.NameIndex {
		parts := SplitQualified(name)
		if len(parts) == 0 || parts[len(parts)-1] != identifier {
			continue
		}
		if id == asking.ID {
			continue
		}
		if len(parts) < level || (allowSameLevel && len(parts) == level) {
			resolved = append(resolved, g.Nodes[id])
		}
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved
}
