package automaton

// buildLinks computes the failure and output link of every node in one
// breadth-first pass. A node's failure link only depends on its parent's,
// and BFS finalizes every shallower node before any deeper one.
//
// Each walk down a failure chain is paid for by depth gained earlier along
// the same keyword, so the pass is linear in total keyword length.
func (t *trie[S]) buildLinks() {
	queue := make([]int, 0, len(t.nodes))
	queue = append(queue, t.nodes[rootIndex].order...)

	for head := 0; head < len(queue); head++ {
		i := queue[head]
		fail := t.failureFor(i)

		n := &t.nodes[i]
		n.fail = fail
		if t.nodes[fail].terminal != noNode {
			n.output = fail
		} else {
			n.output = t.nodes[fail].output
		}

		queue = append(queue, n.order...)
	}
}

// failureFor walks candidate suffix states starting at the parent's failure
// link until one has a child labeled with the node's symbol.
func (t *trie[S]) failureFor(i int) int {
	n := &t.nodes[i]
	if i == rootIndex || n.parent == rootIndex {
		return rootIndex
	}

	candidate := t.nodes[n.parent].fail
	for {
		if next, ok := t.child(candidate, n.symbol); ok {
			return next
		}
		if candidate == rootIndex {
			return rootIndex
		}
		candidate = t.nodes[candidate].fail
	}
}
