// Package transform drives the external transformation oracle over a
// program graph. The oracle turns one fragment of source text into
// target code; the orchestrator retries malformed responses up to a
// fixed bound, validates every response by reparsing it, and records
// accepted code on the originating node's code store. Failures are
// isolated per node.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/transmute-lang/transmute/internal/artifacts"
	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/store"
)

// ErrTransformerFailure indicates the oracle returned unparsable output
// for a fragment after all retries. The node's code store stays unset
// and processing of the rest of the graph continues.
var ErrTransformerFailure = errors.New("transformer produced no parseable output")

// MaxAttempts bounds oracle retries per fragment.
const MaxAttempts = 3

// Response is the oracle's structured answer for one fragment.
type Response struct {
	Explain    string `json:"explain"`
	TargetCode string `json:"target_code"`
}

// Oracle converts one fragment of source text into target code. It is
// invoked as a single blocking call per fragment.
type Oracle interface {
	Transform(ctx context.Context, fragment string) (Response, error)
}

// MockOracle returns a fixed valid response, mirroring offline runs.
type MockOracle struct{}

// Transform implements Oracle.
func (MockOracle) Transform(ctx context.Context, fragment string) (Response, error) {
	return Response{Explain: "Mock", TargetCode: "fn mock() {}"}, nil
}

// Orchestrator walks a graph and transforms every sliced fragment and
// standalone definition.
type Orchestrator struct {
	oracle Oracle
	cache  *artifacts.Cache
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache persists accepted target code keyed by fragment content, so
// re-runs skip unchanged fragments.
func WithCache(cache *artifacts.Cache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// NewOrchestrator creates an orchestrator around the given oracle.
func NewOrchestrator(oracle Oracle, opts ...Option) *Orchestrator {
	o := &Orchestrator{oracle: oracle}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TransformGraph transforms every eligible node reachable from the
// root. A failure on one node never aborts its siblings; the first
// failure is reported after the walk completes.
func (o *Orchestrator) TransformGraph(ctx context.Context, g *ir.Graph) error {
	var firstErr error
	o.walk(ctx, g.Root, &firstErr)
	return firstErr
}

func (o *Orchestrator) walk(ctx context.Context, n *ir.Node, firstErr *error) {
	for _, child := range n.Children {
		switch child.Kind() {
		case "preproc_ifdef", "preproc_if":
			o.walk(ctx, child, firstErr)
		case "enum_specifier", "declaration", "function_definition":
			o.record(ctx, child, firstErr)
		case "class_specifier", "struct_specifier":
			o.transformSlices(ctx, child, firstErr)
		default:
			o.walk(ctx, child, firstErr)
		}
	}
}

// transformSlices feeds a composite type's sliced fragments to the
// oracle instead of the raw definition.
func (o *Orchestrator) transformSlices(ctx context.Context, node *ir.Node, firstErr *error) {
	if node.SliceStore == nil {
		return
	}
	res, err := node.SliceStore.Current()
	if err != nil {
		return
	}
	if res.Data != nil {
		o.record(ctx, res.Data, firstErr)
	}
	for _, fn := range res.Funcs {
		o.record(ctx, fn, firstErr)
	}
}

func (o *Orchestrator) record(ctx context.Context, node *ir.Node, firstErr *error) {
	if err := o.TransformNode(ctx, node); err != nil {
		log.Printf("Warning: %v", err)
		if *firstErr == nil {
			*firstErr = err
		}
	}
}

// TransformNode runs the oracle for one node, retrying up to
// MaxAttempts, and appends an accepted CodeVersion to the node's code
// store. It fails with ErrTransformerFailure once retries are
// exhausted.
func (o *Orchestrator) TransformNode(ctx context.Context, node *ir.Node) error {
	fragment := node.Text()
	log.Printf("transforming %s %s", node.Kind(), node.QualifiedName)

	if target, explain, ok := o.cached(ctx, node, fragment); ok {
		o.accept(node, explain, target)
		return nil
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := o.oracle.Transform(ctx, fragment)
		if err != nil {
			log.Printf("retrying %s %s: %v", node.Kind(), node.QualifiedName, err)
			continue
		}
		code := stripFences(resp.TargetCode)
		target, err := parser.Parse([]byte(code), lang.Rust(), nil)
		if err != nil || target.Root.TS.HasError() {
			log.Printf("retrying %s %s: target code did not parse", node.Kind(), node.QualifiedName)
			continue
		}
		o.accept(node, resp.Explain, target)
		o.persist(ctx, node, fragment, resp.Explain, code)
		return nil
	}
	return fmt.Errorf("%s %q: %w", node.Kind(), node.QualifiedName, ErrTransformerFailure)
}

func (o *Orchestrator) accept(node *ir.Node, explain string, target *ir.Graph) {
	if node.CodeStore == nil {
		node.CodeStore = store.New[ir.CodeVersion]()
	}
	node.CodeStore.AddVersion(ir.CodeVersion{Explain: explain, Target: target, Source: node})
	if explain != "" {
		if node.SummaryStore == nil {
			node.SummaryStore = store.New[string]()
		}
		node.SummaryStore.AddVersion(explain)
	}
}

func (o *Orchestrator) cached(ctx context.Context, node *ir.Node, fragment string) (*ir.Graph, string, bool) {
	if o.cache == nil {
		return nil, "", false
	}
	payload, err := o.cache.Get(ctx, node.QualifiedName, artifacts.ConcernCode, artifacts.HashContent(fragment))
	if err != nil {
		return nil, "", false
	}
	target, err := parser.Parse(payload, lang.Rust(), nil)
	if err != nil {
		return nil, "", false
	}
	return target, "cached", true
}

func (o *Orchestrator) persist(ctx context.Context, node *ir.Node, fragment, explain, code string) {
	if o.cache == nil {
		return
	}
	uid := ""
	if node.Graph() != nil {
		uid = node.Graph().UID.String()
	}
	err := o.cache.Put(ctx, uid, node.QualifiedName, artifacts.ConcernCode, artifacts.HashContent(fragment), []byte(code))
	if err != nil {
		log.Printf("Warning: failed to cache artifact for %s: %v", node.QualifiedName, err)
	}
}

// stripFences removes a markdown code fence wrapper, which some oracles
// add around otherwise valid output.
func stripFences(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "```") {
		return code
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
