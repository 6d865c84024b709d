// Package output renders the program model: an indented IR dump for
// inspection, and a provenance-annotated target file concatenating the
// generated fragments.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/transmute-lang/transmute/internal/ir"
)

// Print dumps the graph's named nodes with indentation reflecting tree
// depth.
func Print(w io.Writer, g *ir.Graph) {
	PrintNode(w, g.Root)
}

// PrintNode dumps one subtree.
func PrintNode(w io.Writer, n *ir.Node) {
	printNode(w, n, 0)
}

func printNode(w io.Writer, n *ir.Node, indent int) {
	if n.IsNamed() {
		text := strings.ReplaceAll(n.Text(), "\n", "\\n")
		text = strings.ReplaceAll(text, "  ", "")
		fmt.Fprintf(w, "%s(%s %s %d: %s\n", strings.Repeat("  ", indent), n.Kind(), n.QualifiedName, n.ID, text)
	}
	for _, child := range n.Children {
		printNode(w, child, indent+1)
	}
}
