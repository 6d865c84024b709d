package output

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/slicer"
	"github.com/transmute-lang/transmute/internal/transform"
)

// Test Plan for Writer:
// - Generated code for a standalone function is written with a //|
//   provenance block quoting the original source
// - Sliced fragments are written instead of the raw type definition
// - Nodes without generated code produce no output
// - NewWriter appends to the target file across invocations

func TestWriteGraph_Function(t *testing.T) {
	t.Parallel()

	g, err := parser.Parse([]byte("int run() { return 0; }\n"), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	o := transform.NewOrchestrator(transform.MockOracle{})
	require.NoError(t, o.TransformGraph(context.Background(), g))

	var buf bytes.Buffer
	wr := NewWriterTo(&buf)
	require.NoError(t, wr.WriteGraph(g))

	out := buf.String()
	assert.Contains(t, out, "//|int run() { return 0; }")
	assert.Contains(t, out, "fn mock() {}")
	assert.True(t, strings.Index(out, "//|") < strings.Index(out, "fn mock() {}"),
		"provenance precedes the generated code")
}

func TestWriteGraph_SlicedFragments(t *testing.T) {
	t.Parallel()

	g, err := parser.Parse([]byte("class Foo {\n    int bar;\n    int get() { return bar; }\n};\n"), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()
	require.NoError(t, slicer.Slice(g))

	o := transform.NewOrchestrator(transform.MockOracle{})
	require.NoError(t, o.TransformGraph(context.Background(), g))

	var buf bytes.Buffer
	wr := NewWriterTo(&buf)
	require.NoError(t, wr.WriteGraph(g))

	out := buf.String()
	// One emission per fragment: the data slice and the one function.
	assert.Equal(t, 2, strings.Count(out, "fn mock() {}"))
	assert.Contains(t, out, "//|class Foo {")
	assert.Contains(t, out, "Foo::get")
}

func TestWriteGraph_NoCode(t *testing.T) {
	t.Parallel()

	g, err := parser.Parse([]byte("int x;\n"), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	var buf bytes.Buffer
	wr := NewWriterTo(&buf)
	require.NoError(t, wr.WriteGraph(g))
	assert.Empty(t, buf.String())
}

func TestNewWriter_Appends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.rs")

	g, err := parser.Parse([]byte("int run() { return 0; }\n"), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()
	o := transform.NewOrchestrator(transform.MockOracle{})
	require.NoError(t, o.TransformGraph(context.Background(), g))

	for i := 0; i < 2; i++ {
		wr, err := NewWriter(path)
		require.NoError(t, err)
		require.NoError(t, wr.WriteGraph(g))
		require.NoError(t, wr.Close())
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "fn mock() {}"))
}
