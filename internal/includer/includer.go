// Package includer resolves include directives against a search root.
// A found include is parsed into its own graph, its transitive includes
// are resolved first, and the included text is prepended to the
// requester's source for a full reparse — trading parse cost for
// resolution simplicity. The requester's dependency store receives one
// snapshot with the complete include list.
package includer

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/maypok86/otter"

	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/lang"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/store"
)

const fileCacheCapacity = 256

// Includer locates and merges included files for one search root.
type Includer struct {
	dir          string
	alternateExt string
	ignore       []glob.Glob
	files        otter.Cache[string, []byte]
}

// Option configures an Includer.
type Option func(*Includer)

// WithIgnorePatterns sets glob patterns pruning the include search
// (e.g. "build/**", "vendor/**").
func WithIgnorePatterns(patterns []string) Option {
	return func(inc *Includer) {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				log.Printf("Warning: ignoring bad include-search pattern %q: %v", pattern, err)
				continue
			}
			inc.ignore = append(inc.ignore, g)
		}
	}
}

// WithAlternateExtension sets the extension tried for a same-stem match
// when the literal filename misses (headers already transformed).
func WithAlternateExtension(ext string) Option {
	return func(inc *Includer) {
		inc.alternateExt = ext
	}
}

// New creates an includer searching under dir.
func New(dir string, opts ...Option) (*Includer, error) {
	cache, err := otter.MustBuilder[string, []byte](fileCacheCapacity).Build()
	if err != nil {
		return nil, err
	}
	inc := &Includer{
		dir:          dir,
		alternateExt: ".rs",
		files:        cache,
	}
	for _, opt := range opts {
		opt(inc)
	}
	return inc, nil
}

// Close releases the file cache.
func (inc *Includer) Close() {
	inc.files.Close()
}

// Resolve follows every include directive reachable from g's root and
// returns the (possibly replacement) graph plus the include-file list.
// The requester root's depend store receives exactly one snapshot. A
// missing include file yields no dependency entry and no error.
func (inc *Includer) Resolve(g *ir.Graph) (*ir.Graph, []*ir.Graph, error) {
	visited := map[string]bool{}
	if g.Root.QualifiedName != "" {
		if abs, err := filepath.Abs(g.Root.QualifiedName); err == nil {
			visited[abs] = true
		}
	}
	return inc.resolve(g, visited)
}

func (inc *Includer) resolve(g *ir.Graph, visited map[string]bool) (*ir.Graph, []*ir.Graph, error) {
	var includes []*ir.Graph

	var err error
	for _, directive := range collectIncludes(g.Root) {
		g, err = inc.resolveOne(g, directive, &includes, visited)
		if err != nil {
			return nil, nil, err
		}
	}

	root := g.Root
	if root.DependStore == nil {
		root.DependStore = store.New[ir.DependSet]()
	}
	root.DependStore.AddVersion(ir.DependSet{IncludeFiles: includes})

	return g, includes, nil
}

// resolveOne handles a single directive and returns the graph to use
// for subsequent directives (a fresh merge when the include was found).
func (inc *Includer) resolveOne(g *ir.Graph, directive *ir.Node, includes *[]*ir.Graph, visited map[string]bool) (*ir.Graph, error) {
	name := includePath(directive)
	if name == "" {
		return g, nil
	}
	path := inc.SearchFile(name)
	if path == "" {
		return g, nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		if visited[abs] {
			return g, nil
		}
		visited[abs] = true
	}
	log.Printf("found include file %s", path)

	source, err := inc.readFile(path)
	if err != nil {
		log.Printf("Warning: failed to read include %s: %v", path, err)
		return g, nil
	}
	language, ok := lang.FromExtension(filepath.Ext(path))
	if !ok {
		language = lang.CPP()
	}
	included, err := parser.ParseNamed(source, language, nil, path)
	if err != nil {
		log.Printf("Warning: failed to parse include %s: %v", path, err)
		return g, nil
	}
	*includes = append(*includes, included)

	// Resolve the include's own includes first so the merged text
	// carries the whole transitive closure.
	merged, _, err := inc.resolve(included, visited)
	if err != nil {
		return nil, err
	}

	newSource := append([]byte(merged.Root.Text()+"\n"), g.Source...)
	replacement, err := parser.ParseNamed(newSource, lang.CPP(), nil, g.Root.QualifiedName)
	if err != nil {
		return nil, err
	}
	return replacement, nil
}

// SearchFile walks the search root for an exact filename match, also
// tolerating a same-stem alternate-extension match. Returns "" on miss.
func (inc *Includer) SearchFile(filename string) string {
	alternate := strings.TrimSuffix(filename, filepath.Ext(filename)) + inc.alternateExt

	var found string
	_ = filepath.WalkDir(inc.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(inc.dir, path)
		if relErr == nil {
			rel = filepath.ToSlash(rel)
			for _, g := range inc.ignore {
				if g.Match(rel) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == filepath.Base(filename) || d.Name() == filepath.Base(alternate) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func (inc *Includer) readFile(path string) ([]byte, error) {
	if cached, ok := inc.files.Get(path); ok {
		return cached, nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	inc.files.Set(path, source)
	return source, nil
}

// collectIncludes gathers include directives in document order,
// descending through preprocessor conditionals.
func collectIncludes(root *ir.Node) []*ir.Node {
	var out []*ir.Node
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		for _, child := range n.Children {
			switch child.Kind() {
			case "preproc_include":
				out = append(out, child)
			case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif":
				walk(child)
			}
		}
	}
	walk(root)
	return out
}

// includePath extracts the literal filename from an include directive,
// stripping quotes or angle brackets.
func includePath(directive *ir.Node) string {
	path := directive.FieldText("path")
	if path == "" && len(directive.Children) > 1 {
		path = directive.Children[1].Text()
	}
	path = strings.Trim(path, `"`)
	path = strings.TrimPrefix(path, "<")
	path = strings.TrimSuffix(path, ">")
	return strings.TrimSpace(path)
}
