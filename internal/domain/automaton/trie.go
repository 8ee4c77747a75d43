package automaton

// rootIndex is the NodeTable slot of the root; noNode marks an absent link.
const (
	rootIndex = 0
	noNode    = -1
)

// node is one trie vertex. Every reference to another vertex is an index
// into the owning trie's node table, so the structure has no pointer cycles.
type node[S comparable] struct {
	symbol   S         // edge label from parent (zero for root)
	children map[S]int // symbol -> child index
	order    []int     // child indices in creation order
	parent   int       // noNode for root
	terminal int       // keyword id ending here, noNode if none
	index    int
	depth    int
	fail     int // longest proper suffix that is also a trie path
	output   int // nearest terminal node on the fail chain, noNode if none
}

// trie is the keyword prefix tree. nodes is the NodeTable: append-only
// during insertion, index 0 is the root.
type trie[S comparable] struct {
	nodes    []node[S]
	distinct int
}

func newTrie[S comparable]() *trie[S] {
	return &trie[S]{
		nodes: []node[S]{{
			parent:   noNode,
			terminal: noNode,
			index:    rootIndex,
			fail:     rootIndex,
			output:   noNode,
		}},
	}
}

// insert adds keyword to the trie and marks its last node terminal with id.
// Re-inserting a keyword keeps the id of its first insertion, which is
// returned. A keyword that is a prefix or an extension of another keeps its
// own terminal marker; interior nodes can be terminal.
func (t *trie[S]) insert(keyword []S, id int) (int, error) {
	if len(keyword) == 0 {
		return noNode, &InvalidKeywordError{Position: id}
	}

	cur := rootIndex
	for _, sym := range keyword {
		next, ok := t.nodes[cur].children[sym]
		if !ok {
			next = len(t.nodes)
			t.nodes = append(t.nodes, node[S]{
				symbol:   sym,
				parent:   cur,
				terminal: noNode,
				index:    next,
				depth:    t.nodes[cur].depth + 1,
				fail:     rootIndex,
				output:   noNode,
			})
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[S]int)
			}
			t.nodes[cur].children[sym] = next
			t.nodes[cur].order = append(t.nodes[cur].order, next)
		}
		cur = next
	}

	if existing := t.nodes[cur].terminal; existing != noNode {
		return existing, nil
	}
	t.nodes[cur].terminal = id
	t.distinct++
	return id, nil
}

// child returns the index of the child of n labeled sym.
func (t *trie[S]) child(n int, sym S) (int, bool) {
	next, ok := t.nodes[n].children[sym]
	return next, ok
}

// path spells the symbols from the root down to node i.
func (t *trie[S]) path(i int) []S {
	out := make([]S, t.nodes[i].depth)
	for n := i; n != rootIndex; n = t.nodes[n].parent {
		out[t.nodes[n].depth-1] = t.nodes[n].symbol
	}
	return out
}
