package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmute-lang/transmute/internal/artifacts"
	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/slicer"
)

// Test Plan for Orchestrator:
// - A valid oracle response lands one code version on the node
// - Sliced composites feed their fragments, not the raw definition
// - Unparsable oracle output exhausts retries and fails that node only
// - A failed node's code store stays unset
// - Siblings keep processing after a failure; the first error is
//   reported
// - Markdown fences around otherwise valid output are stripped
// - Cached artifacts short-circuit the oracle on re-runs
// - Context cancellation aborts the retry loop

// countingOracle fails every call with unparsable output.
type countingOracle struct {
	calls int
}

func (o *countingOracle) Transform(ctx context.Context, fragment string) (Response, error) {
	o.calls++
	return Response{Explain: "bad", TargetCode: "fn {{{{ not rust"}, nil
}

// fencedOracle wraps valid code in a markdown fence.
type fencedOracle struct{}

func (fencedOracle) Transform(ctx context.Context, fragment string) (Response, error) {
	return Response{Explain: "fenced", TargetCode: "```rust\nfn fenced() {}\n```"}, nil
}

func parseCPP(t *testing.T, src string) *ir.Graph {
	t.Helper()
	g, err := parser.Parse([]byte(src), lang.CPP(), nil)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func TestTransformGraph_Mock(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "int run() { return 0; }\n")
	o := NewOrchestrator(MockOracle{})
	require.NoError(t, o.TransformGraph(context.Background(), g))

	fn, ok := g.NodeByName("run.()")
	require.True(t, ok)
	require.NotNil(t, fn.CodeStore)

	cv, err := fn.CodeStore.Current()
	require.NoError(t, err)
	assert.Equal(t, "Mock", cv.Explain)
	assert.Equal(t, "fn mock() {}", cv.Target.Root.Text())
	assert.Same(t, fn, cv.Source)

	require.NotNil(t, fn.SummaryStore)
	summary, err := fn.SummaryStore.Current()
	require.NoError(t, err)
	assert.Equal(t, "Mock", summary)
}

func TestTransformGraph_SlicedComposite(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "class Foo {\n    int bar;\n    int get() { return bar; }\n};\n")
	require.NoError(t, slicer.Slice(g))

	o := NewOrchestrator(MockOracle{})
	require.NoError(t, o.TransformGraph(context.Background(), g))

	foo, ok := g.NodeByName("Foo")
	require.True(t, ok)
	assert.Nil(t, foo.CodeStore, "the raw definition is never fed to the oracle")

	res, err := foo.SliceStore.Current()
	require.NoError(t, err)
	require.NotNil(t, res.Data.CodeStore)
	for key, fn := range res.Funcs {
		assert.NotNil(t, fn.CodeStore, "fragment %s missing code", key)
	}
}

func TestTransformNode_RetriesExhausted(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "int run() { return 0; }\n")
	fn, ok := g.NodeByName("run.()")
	require.True(t, ok)

	oracle := &countingOracle{}
	o := NewOrchestrator(oracle)
	err := o.TransformNode(context.Background(), fn)
	require.ErrorIs(t, err, ErrTransformerFailure)
	assert.Equal(t, MaxAttempts, oracle.calls)
	assert.Nil(t, fn.CodeStore, "a failed node's code store stays unset")
}

func TestTransformGraph_FailureIsolation(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "int first() { return 1; }\nint second() { return 2; }\n")
	oracle := &countingOracle{}
	o := NewOrchestrator(oracle)

	err := o.TransformGraph(context.Background(), g)
	require.ErrorIs(t, err, ErrTransformerFailure)
	assert.Equal(t, 2*MaxAttempts, oracle.calls, "the second node is still attempted")
}

func TestTransformNode_StripsFences(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "int run() { return 0; }\n")
	fn, ok := g.NodeByName("run.()")
	require.True(t, ok)

	o := NewOrchestrator(fencedOracle{})
	require.NoError(t, o.TransformNode(context.Background(), fn))

	cv, err := fn.CodeStore.Current()
	require.NoError(t, err)
	assert.Equal(t, "fn fenced() {}", cv.Target.Root.Text())
}

func TestTransformNode_CacheShortCircuit(t *testing.T) {
	t.Parallel()

	cache, err := artifacts.Open(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	g := parseCPP(t, "int run() { return 0; }\n")
	fn, ok := g.NodeByName("run.()")
	require.True(t, ok)

	// First run populates the cache through the mock oracle.
	warm := NewOrchestrator(MockOracle{}, WithCache(cache))
	require.NoError(t, warm.TransformNode(context.Background(), fn))

	// Second run must never reach the (always failing) oracle.
	oracle := &countingOracle{}
	cold := NewOrchestrator(oracle, WithCache(cache))
	g2 := parseCPP(t, "int run() { return 0; }\n")
	fn2, ok := g2.NodeByName("run.()")
	require.True(t, ok)

	require.NoError(t, cold.TransformNode(context.Background(), fn2))
	assert.Zero(t, oracle.calls)

	cv, err := fn2.CodeStore.Current()
	require.NoError(t, err)
	assert.Equal(t, "cached", cv.Explain)
	assert.Equal(t, "fn mock() {}", cv.Target.Root.Text())
}

func TestTransformNode_ContextCancelled(t *testing.T) {
	t.Parallel()

	g := parseCPP(t, "int run() { return 0; }\n")
	fn, ok := g.NodeByName("run.()")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(MockOracle{})
	err := o.TransformNode(ctx, fn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fn a() {}", stripFences("fn a() {}"))
	assert.Equal(t, "fn a() {}", stripFences("```rust\nfn a() {}\n```"))
	assert.Equal(t, "fn a() {}", stripFences("```\nfn a() {}\n```"))
}
