package depgraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
)

// Test Plan for DesignGraph:
// - Only composite types and functions become vertices
// - Referencing a type's name creates an edge to it
// - Parallel references collapse to a single edge
// - Dependencies and Dependents are inverse views
// - DOT output names the tracked symbols
// - PageRank puts the most-depended-on symbol first
// - TopK truncates the ranking

const designSource = `struct Base {
    int id;
};
struct Derived {
    Base parent;
};
int use_base() {
    Base b;
    return 0;
}
`

func buildDesign(t *testing.T) *DesignGraph {
	t.Helper()
	g, err := parser.Parse([]byte(designSource), lang.CPP(), nil)
	require.NoError(t, err)
	t.Cleanup(g.Close)

	dg, err := Build(g, true)
	require.NoError(t, err)
	return dg
}

func TestBuild_VerticesAndEdges(t *testing.T) {
	t.Parallel()

	dg := buildDesign(t)
	vertices, edges := dg.Size()
	assert.Equal(t, 3, vertices, "fields and locals are not tracked")
	assert.Equal(t, 2, edges)
}

func TestBuild_DependencyViews(t *testing.T) {
	t.Parallel()

	dg := buildDesign(t)

	assert.Equal(t, []string{"Base"}, dg.Dependencies("Derived"))
	assert.Equal(t, []string{"Base"}, dg.Dependencies("use_base.()"))
	assert.Empty(t, dg.Dependencies("Base"))

	assert.Equal(t, []string{"Derived", "use_base.()"}, dg.Dependents("Base"))
	assert.Empty(t, dg.Dependents("Derived"))
}

func TestDOT(t *testing.T) {
	t.Parallel()

	dg := buildDesign(t)
	var buf bytes.Buffer
	require.NoError(t, dg.DOT(&buf))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "Base")
	assert.Contains(t, out, "Derived")
}

func TestPageRank(t *testing.T) {
	t.Parallel()

	dg := buildDesign(t)
	ranked := dg.PageRank(0.85, 20)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Base", ranked[0].Name, "everything depends on Base")

	total := 0.0
	for _, r := range ranked {
		total += r.Score
	}
	assert.InDelta(t, 1.0, total, 0.01, "scores form a distribution")
}

func TestTopK(t *testing.T) {
	t.Parallel()

	dg := buildDesign(t)
	top := dg.TopK(0.85, 20, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "Base", top[0].Name)
}

func TestReferencedIdentifiers_ExcludesSelf(t *testing.T) {
	t.Parallel()

	g, err := parser.Parse([]byte("struct Self {\n    Self* next;\n};\n"), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	node, ok := g.NodeByName("Self")
	require.True(t, ok)

	for _, ident := range referencedIdentifiers(node) {
		assert.NotEqual(t, "Self", ident)
	}
}
