// Package search provides full-text lookup over the named symbols of a
// program graph, backed by an in-memory bleve index.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/transmute-lang/transmute/internal/ir"
)

// SymbolDoc is the indexed representation of one named node.
type SymbolDoc struct {
	Name string `json:"name"`
	Bare string `json:"bare"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Hit is one search result.
type Hit struct {
	Name  string
	Score float64
}

// Index is an in-memory full-text index over one graph's symbols.
type Index struct {
	idx bleve.Index
}

// NewIndex builds the index from every named node in g.
func NewIndex(g *ir.Graph) (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol index: %w", err)
	}

	batch := index.NewBatch()
	for name, id := range g.NameIndex {
		node := g.Nodes[id]
		doc := SymbolDoc{
			Name: name,
			Bare: node.BareName(),
			Kind: node.Kind(),
			Text: node.Text(),
		}
		if err := batch.Index(name, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index symbol %s: %w", name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to commit symbol batch: %w", err)
	}

	return &Index{idx: index}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "keyword"
	nameMapping.Store = true

	bareMapping := bleve.NewTextFieldMapping()
	bareMapping.Analyzer = "keyword"
	bareMapping.Store = true

	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = true

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("bare", bareMapping)
	docMapping.AddFieldMappingsAt("kind", kindMapping)
	docMapping.AddFieldMappingsAt("text", textMapping)
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// Search runs a match query over bare names and text.
func (i *Index) Search(q string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	query := bleve.NewMatchQuery(q)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{Name: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}
