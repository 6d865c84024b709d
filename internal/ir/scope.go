package ir

import (
	"errors"
	"fmt"
)

// ErrUnboundName indicates a scope chain was exhausted during a lookup.
var ErrUnboundName = errors.New("name is not bound in any enclosing scope")

// Scope holds the local bindings of one lexical construct and a
// non-owning link to its parent, forming a chain from innermost to
// outermost whose length equals the nesting depth.
type Scope struct {
	Owner    *Node
	parent   *Scope
	bindings map[string]*Node
}

// NewScope creates a scope owned by node, nested inside parent (nil for
// the translation-unit scope).
func NewScope(owner *Node, parent *Scope) *Scope {
	return &Scope{Owner: owner, parent: parent, bindings: make(map[string]*Node)}
}

// Parent returns the enclosing scope, or nil at the outermost level.
func (s *Scope) Parent() *Scope { return s.parent }

// Define registers a local binding.
func (s *Scope) Define(name string, n *Node) {
	s.bindings[name] = n
}

// Resolve checks local bindings first, then defers up the parent chain.
// It fails with ErrUnboundName once the chain is exhausted.
func (s *Scope) Resolve(name string) (*Node, error) {
	for sc := s; sc != nil; sc = sc.parent {
		if n, ok := sc.bindings[name]; ok {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnboundName)
}

// Snapshot captures the scope's local bindings as a symbol table.
func (s *Scope) Snapshot() SymTable {
	table := make(SymTable, len(s.bindings))
	for name, n := range s.bindings {
		table[name] = n.ID
	}
	return table
}

// Chain returns the enclosing scopes outermost-first, excluding the
// translation-unit scope. Fragment emission walks this to reopen each
// enclosing declaration.
func (s *Scope) Chain() []*Scope {
	var chain []*Scope
	for sc := s; sc != nil && sc.parent != nil; sc = sc.parent {
		chain = append(chain, sc)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
