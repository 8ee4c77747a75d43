package automaton

import "slices"

// NodeView is a read-only snapshot of one trie node, for diagnostics.
type NodeView[S comparable] struct {
	Index    int
	Symbol   S // zero for the root
	Depth    int
	Parent   int // -1 for the root
	Fail     int
	Output   int // -1 if no terminal is reachable by failure links
	Keyword  int // -1 if the node does not end a keyword
	Children int
}

// IsRoot reports whether the view is of the root node.
func (v NodeView[S]) IsRoot() bool { return v.Index == rootIndex }

// IsTerminal reports whether a keyword ends at this node.
func (v NodeView[S]) IsTerminal() bool { return v.Keyword != noNode }

func (a *Automaton[S]) view(i int) NodeView[S] {
	n := &a.t.nodes[i]
	return NodeView[S]{
		Index:    n.index,
		Symbol:   n.symbol,
		Depth:    n.depth,
		Parent:   n.parent,
		Fail:     n.fail,
		Output:   n.output,
		Keyword:  n.terminal,
		Children: len(n.order),
	}
}

// Node returns the node with index i.
func (a *Automaton[S]) Node(i int) (NodeView[S], bool) {
	if i < 0 || i >= len(a.t.nodes) {
		return NodeView[S]{}, false
	}
	return a.view(i), true
}

// Children returns the child indices of node i in insertion order.
func (a *Automaton[S]) Children(i int) []int {
	if i < 0 || i >= len(a.t.nodes) {
		return nil
	}
	return slices.Clone(a.t.nodes[i].order)
}

// Path returns the symbols spelled from the root to node i.
func (a *Automaton[S]) Path(i int) []S {
	if i < 0 || i >= len(a.t.nodes) {
		return nil
	}
	return a.t.path(i)
}

// Lookup follows path from the root and returns the node it ends at.
func (a *Automaton[S]) Lookup(path []S) (NodeView[S], bool) {
	cur := rootIndex
	for _, sym := range path {
		next, ok := a.t.child(cur, sym)
		if !ok {
			return NodeView[S]{}, false
		}
		cur = next
	}
	return a.view(cur), true
}

// Walk visits every node depth-first, root first, children in insertion
// order. Returning false from fn stops the walk.
func (a *Automaton[S]) Walk(fn func(NodeView[S]) bool) {
	stack := []int{rootIndex}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(a.view(i)) {
			return
		}
		order := a.t.nodes[i].order
		for j := len(order) - 1; j >= 0; j-- {
			stack = append(stack, order[j])
		}
	}
}
