package ir

import sitter "github.com/tree-sitter/go-tree-sitter"

// FunctionDeclarator digs through pointer/reference/init declarators to
// the function declarator carrying the name and parameter list.
func FunctionDeclarator(ts *sitter.Node) *sitter.Node {
	for ts != nil {
		if ts.Kind() == "function_declarator" {
			return ts
		}
		if next := ts.ChildByFieldName("declarator"); next != nil {
			ts = next
			continue
		}
		for i := uint(0); i < ts.NamedChildCount(); i++ {
			if ts.NamedChild(i).Kind() == "function_declarator" {
				return ts.NamedChild(i)
			}
		}
		return nil
	}
	return nil
}

// DeclaratorName extracts the declared identifier from an arbitrarily
// wrapped declarator (pointers, arrays, initializers).
func DeclaratorName(ts *sitter.Node, source []byte) string {
	for ts != nil {
		switch ts.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return string(source[ts.StartByte():ts.EndByte()])
		}
		if next := ts.ChildByFieldName("declarator"); next != nil {
			ts = next
			continue
		}
		if ts.NamedChildCount() > 0 {
			ts = ts.NamedChild(0)
			continue
		}
		return ""
	}
	return ""
}

// NodeText returns the source text spanned by a raw syntax node.
func NodeText(ts *sitter.Node, source []byte) string {
	if ts == nil {
		return ""
	}
	return string(source[ts.StartByte():ts.EndByte()])
}
