package output

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/transmute-lang/transmute/internal/ir"
)

// Writer appends generated fragments to a target file. Every fragment
// is preceded by provenance comments identifying its dependency origin
// (`//+`) and the original source text it replaced (`//|`).
type Writer struct {
	w io.Writer
	c io.Closer
}

// NewWriter opens the target file for appending.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Writer{w: f, c: f}, nil
}

// NewWriterTo writes to an arbitrary destination (used in tests).
func NewWriterTo(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Close closes the underlying file, if any.
func (wr *Writer) Close() error {
	if wr.c == nil {
		return nil
	}
	return wr.c.Close()
}

// WriteGraph walks the graph and emits every node that carries
// generated code, sliced fragments included.
func (wr *Writer) WriteGraph(g *ir.Graph) error {
	return wr.visit(g.Root)
}

func (wr *Writer) visit(n *ir.Node) error {
	if n.IsCompositeType() && n.SliceStore != nil {
		if res, err := n.SliceStore.Current(); err == nil {
			if res.Data != nil && res.Data.CodeStore != nil {
				if err := wr.write(res.Data); err != nil {
					return err
				}
			}
			for _, fn := range res.Funcs {
				if fn.CodeStore == nil {
					continue
				}
				if err := wr.write(fn); err != nil {
					return err
				}
			}
		}
	}
	if n.CodeStore != nil {
		if err := wr.write(n); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := wr.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) write(node *ir.Node) error {
	cv, err := node.CodeStore.Current()
	if err != nil {
		return nil
	}
	log.Printf("writing %s %s", node.Kind(), node.QualifiedName)

	src := cv.Source
	if src != nil && src.DependStore != nil {
		if deps, err := src.DependStore.Current(); err == nil {
			for _, inc := range deps.IncludeFiles {
				fmt.Fprintf(wr.w, "//+[Depends] %s -> %s\n", node.QualifiedName, inc.Root.QualifiedName)
				fmt.Fprintf(wr.w, "//+%s\n", strings.ReplaceAll(inc.Root.Text(), "\n", "\n//+"))
				fmt.Fprintln(wr.w, "//+-------------------------------------------")
			}
		}
	}
	if src != nil {
		fmt.Fprintf(wr.w, "//|%s\n", strings.ReplaceAll(src.Text(), "\n", "\n//|"))
	}
	fmt.Fprintln(wr.w, cv.Target.Root.Text())
	return nil
}
