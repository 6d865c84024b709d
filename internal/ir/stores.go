package ir

// DependSet is the snapshot written once to a translation unit's depend
// store after include resolution: the complete list of included units.
type DependSet struct {
	IncludeFiles []*Graph
}

// SliceResult is one decomposition of a composite type: the reparsed
// data fragment (nil when the type declares no data members), the
// function fragments keyed by overload-safe name, and the nested type
// definitions that were sliced recursively first.
type SliceResult struct {
	Data   *Node
	Funcs  map[string]*Node
	Nested []*Node
}

// CodeVersion is one generated-code snapshot: the oracle's explanation,
// the reparsed target graph, and a back-reference to the source node the
// fragment replaced.
type CodeVersion struct {
	Explain string
	Target  *Graph
	Source  *Node
}

// SymTable maps locally visible identifiers to node ids.
type SymTable map[string]uint32
