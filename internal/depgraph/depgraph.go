// Package depgraph builds a design-level dependency graph over the
// named types and functions of one program graph. Edges come from
// graph-wide name resolution of the identifiers appearing in each
// node's text. The graph exports to DOT and ranks symbols by PageRank.
package depgraph

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/transmute-lang/transmute/internal/ir"
)

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// DesignGraph is a directed graph of qualified symbol names.
type DesignGraph struct {
	g     graph.Graph[string, string]
	nodes map[string]*ir.Node
}

// Build constructs the design graph for pg. allowSameLevel controls
// sibling visibility during resolution, matching Graph.ResolveName.
func Build(pg *ir.Graph, allowSameLevel bool) (*DesignGraph, error) {
	dg := &DesignGraph{
		g:     graph.New(graph.StringHash, graph.Directed()),
		nodes: make(map[string]*ir.Node),
	}

	for name, id := range pg.NameIndex {
		node := pg.Nodes[id]
		if !node.IsCompositeType() && !node.IsFunction() {
			continue
		}
		if err := dg.g.AddVertex(name); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", name, err)
		}
		dg.nodes[name] = node
	}

	for name, node := range dg.nodes {
		for _, ident := range referencedIdentifiers(node) {
			for _, target := range pg.ResolveName(ident, node, allowSameLevel) {
				if _, tracked := dg.nodes[target.QualifiedName]; !tracked {
					continue
				}
				// Parallel references collapse to one edge.
				_ = dg.g.AddEdge(name, target.QualifiedName)
			}
		}
	}

	return dg, nil
}

// referencedIdentifiers returns the distinct identifiers appearing in
// the node's text, excluding its own bare name.
func referencedIdentifiers(node *ir.Node) []string {
	seen := map[string]bool{node.BareName(): true}
	var out []string
	for _, ident := range identifierRe.FindAllString(node.Text(), -1) {
		if seen[ident] {
			continue
		}
		seen[ident] = true
		out = append(out, ident)
	}
	return out
}

// Size returns vertex and edge counts.
func (dg *DesignGraph) Size() (int, int) {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return 0, 0
	}
	edges := 0
	for _, targets := range adj {
		edges += len(targets)
	}
	return len(adj), edges
}

// Dependencies returns the symbols name points at.
func (dg *DesignGraph) Dependencies(name string) []string {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return sortedKeys(adj[name])
}

// Dependents returns the symbols pointing at name.
func (dg *DesignGraph) Dependents(name string) []string {
	pred, err := dg.g.PredecessorMap()
	if err != nil {
		return nil
	}
	return sortedKeys(pred[name])
}

// DOT renders the graph in Graphviz format.
func (dg *DesignGraph) DOT(w io.Writer) error {
	return draw.DOT(dg.g, w, draw.GraphAttribute("label", "CompactProject"))
}

// Ranked is one symbol with its PageRank score.
type Ranked struct {
	Name  string
	Score float64
}

// PageRank ranks every symbol, highest score first. Ties break by name
// so rankings are stable across runs.
func (dg *DesignGraph) PageRank(damping float64, iterations int) []Ranked {
	adj, err := dg.g.AdjacencyMap()
	if err != nil || len(adj) == 0 {
		return nil
	}

	n := float64(len(adj))
	scores := make(map[string]float64, len(adj))
	for name := range adj {
		scores[name] = 1 / n
	}

	for i := 0; i < iterations; i++ {
		next := make(map[string]float64, len(adj))
		for name := range adj {
			next[name] = (1 - damping) / n
		}
		for name, targets := range adj {
			if len(targets) == 0 {
				// Dangling node: spread its mass uniformly.
				share := damping * scores[name] / n
				for other := range adj {
					next[other] += share
				}
				continue
			}
			share := damping * scores[name] / float64(len(targets))
			for target := range targets {
				next[target] += share
			}
		}
		scores = next
	}

	ranked := make([]Ranked, 0, len(scores))
	for name, score := range scores {
		ranked = append(ranked, Ranked{Name: name, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// TopK returns the k highest-ranked symbols.
func (dg *DesignGraph) TopK(damping float64, iterations, k int) []Ranked {
	ranked := dg.PageRank(damping, iterations)
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
