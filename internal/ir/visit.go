package ir

// VisitFunc handles one node during a dispatched walk.
type VisitFunc func(n *Node) error

// Dispatch is a closed table from syntax kind to handler. Components
// declare their full kind coverage up front; a kind absent from the
// table is an explicit no-op rather than a silent method-lookup miss.
type Dispatch map[string]VisitFunc

// Covers reports whether the table handles the node's kind.
func (d Dispatch) Covers(n *Node) bool {
	_, ok := d[n.Kind()]
	return ok
}

// Visit dispatches on the node's kind.
func (d Dispatch) Visit(n *Node) error {
	if fn, ok := d[n.Kind()]; ok {
		return fn(n)
	}
	return nil
}
