// Package parser turns source bytes into an ir.Graph: one program node
// per syntax node, built with an explicit-stack depth-first walk, then
// qualified names assigned by the namer pass.
package parser

import (
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/namer"
)

// Parse parses source into a fresh graph. An optional old tree may be
// supplied for future incremental reparsing; the current strategy is a
// full reparse and the argument is passed straight through.
func Parse(source []byte, language *lang.Language, oldTree *sitter.Tree) (*ir.Graph, error) {
	return ParseNamed(source, language, oldTree, "")
}

// ParseNamed parses source and gives the translation-unit root the
// given name (the file path, or "" for synthesized buffers).
func ParseNamed(source []byte, language *lang.Language, oldTree *sitter.Tree, name string) (*ir.Graph, error) {
	if language == nil {
		language = lang.CPP()
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(language.TS)

	tree := p.Parse(source, oldTree)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", language.Name)
	}

	g := treeToGraph(source, tree)
	g.Root.QualifiedName = name
	namer.Assign(g)
	return g, nil
}

// ParseFile reads and parses one file, picking the grammar from the
// file extension (C++ when unknown).
func ParseFile(path string) (*ir.Graph, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	language, ok := lang.FromExtension(filepath.Ext(path))
	if !ok {
		language = lang.CPP()
	}
	return ParseNamed(source, language, nil, path)
}

// treeToGraph builds the program graph with an iterative depth-first
// walk. Each node is created before its children and linked to its
// parent at creation time, so tree depth cannot overflow the call stack.
func treeToGraph(source []byte, tree *sitter.Tree) *ir.Graph {
	g := ir.NewGraph(source, tree)

	root := g.NewNode(tree.RootNode(), nil)
	g.Root = root

	type frame struct {
		ts *sitter.Node
		n  *ir.Node
	}
	stack := []frame{{ts: tree.RootNode(), n: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := uint(0); i < f.ts.ChildCount(); i++ {
			tsChild := f.ts.Child(i)
			child := g.NewNode(tsChild, f.n)
			f.n.Children = append(f.n.Children, child)
			stack = append(stack, frame{ts: tsChild, n: child})
		}
	}

	return g
}
