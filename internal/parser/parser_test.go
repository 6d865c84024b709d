package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
)

// Test Plan for Parser:
// - Parse builds one program node per syntax node with unique ids
// - Parent and child links are mutually consistent
// - Namespaced types get dotted qualified names
// - Data members are named under their enclosing type
// - Functions carry a trailing parameter-list signature segment
// - Locals declared inside a function body nest under the function name
// - Top-level declarations register as globals
// - ParseNamed gives the root the supplied name
// - ParseFile picks the grammar from the extension

const sample = `
namespace NS {
class Foo {
    int bar;
};
}

int g_count = 0;

int add(int a, int b) {
    int sum = a + b;
    return sum;
}
`

func TestParse_NodeIdentity(t *testing.T) {
	t.Parallel()

	g, err := Parse([]byte(sample), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	seen := map[uint32]bool{}
	count := 0
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		count++
		assert.False(t, seen[n.ID], "duplicate node id %d", n.ID)
		seen[n.ID] = true
		for _, child := range n.Children {
			assert.Same(t, n, child.Parent)
			walk(child)
		}
	}
	walk(g.Root)

	assert.Equal(t, len(g.Nodes), count, "every allocated node is reachable from the root")
	assert.Nil(t, g.Root.Parent)
}

func TestParse_QualifiedNames(t *testing.T) {
	t.Parallel()

	g, err := Parse([]byte(sample), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	ns, ok := g.NodeByName("NS")
	require.True(t, ok)
	assert.Equal(t, "namespace_definition", ns.Kind())

	foo, ok := g.NodeByName("NS.Foo")
	require.True(t, ok)
	assert.Equal(t, "class_specifier", foo.Kind())
	assert.Equal(t, "Foo", foo.BareName())

	bar, ok := g.NodeByName("NS.Foo.bar")
	require.True(t, ok)
	assert.Equal(t, "field_declaration", bar.Kind())
}

func TestParse_FunctionSignatureSegment(t *testing.T) {
	t.Parallel()

	g, err := Parse([]byte(sample), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	fn, ok := g.NodeByName("add.(int a, int b)")
	require.True(t, ok)
	assert.True(t, fn.IsFunction())
	assert.Equal(t, "add", fn.BareName())
	assert.Equal(t, 1, ir.NameDepth(fn.QualifiedName), "signature segment does not add depth")

	// The local nests under the bare function name, one level deeper.
	local, ok := g.NodeByName("add.sum")
	require.True(t, ok)
	assert.Equal(t, 2, ir.NameDepth(local.QualifiedName))
}

func TestParse_Globals(t *testing.T) {
	t.Parallel()

	g, err := Parse([]byte(sample), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	global, ok := g.Globals["g_count"]
	require.True(t, ok)
	assert.Equal(t, "g_count", global.QualifiedName)

	// The function-local never reaches the global table.
	_, ok = g.Globals["sum"]
	assert.False(t, ok)
}

func TestParseNamed_RootName(t *testing.T) {
	t.Parallel()

	g, err := ParseNamed([]byte("int x;\n"), lang.CPP(), nil, "src/main.cpp")
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, "src/main.cpp", g.Root.QualifiedName)
}

func TestParseFile_ExtensionDetection(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn id(x: i32) -> i32 { x }\n"), 0644))

	g, err := ParseFile(path)
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, path, g.Root.QualifiedName)
	assert.Equal(t, "source_file", g.Root.Kind())
	assert.False(t, g.Root.TS.HasError())
}

func TestParse_AnonymousNamespace(t *testing.T) {
	t.Parallel()

	src := "namespace {\nclass Hidden {};\n}\n"
	g, err := Parse([]byte(src), lang.CPP(), nil)
	require.NoError(t, err)
	defer g.Close()

	// Contents of an anonymous namespace stay at the enclosing level.
	hidden, ok := g.NodeByName("Hidden")
	require.True(t, ok)
	assert.Equal(t, 1, ir.NameDepth(hidden.QualifiedName))
}
