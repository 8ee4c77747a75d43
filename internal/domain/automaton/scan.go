package automaton

import "iter"

// Match is one keyword occurrence. End is the index of the keyword's last
// symbol in the scanned text.
type Match struct {
	Keyword int // keyword id (position in the Build input)
	End     int
	Len     int
}

// Start returns the index of the keyword's first symbol.
func (m Match) Start() int {
	return m.End - m.Len + 1
}

// Scan returns a lazy sequence of every keyword occurrence in text, ordered
// by end position. Keywords ending at the same position are yielded longest
// first. The sequence holds no state between iterations and can be ranged
// over any number of times.
//
// A mismatch falls back along failure links without consuming input; a
// mismatch at the root skips the symbol. Every consumed symbol reports the
// node it lands on plus every terminal on that node's output chain, so a
// keyword hidden inside a longer match ("he" inside "she") is not lost.
func (a *Automaton[S]) Scan(text []S) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		nodes := a.t.nodes
		cur := rootIndex
		for pos := 0; pos < len(text); {
			if next, ok := nodes[cur].children[text[pos]]; ok {
				cur = next
				pos++
				if !a.report(cur, pos-1, yield) {
					return
				}
				continue
			}
			if cur != rootIndex {
				cur = nodes[cur].fail
				continue
			}
			pos++
		}
	}
}

// report yields the terminal at node i, if any, then every terminal on its
// output chain. It returns false once yield asks to stop.
func (a *Automaton[S]) report(i, end int, yield func(Match) bool) bool {
	nodes := a.t.nodes
	if nodes[i].terminal == noNode {
		i = nodes[i].output
	}
	for ; i != noNode; i = nodes[i].output {
		n := &nodes[i]
		if !yield(Match{Keyword: n.terminal, End: end, Len: n.depth}) {
			return false
		}
	}
	return true
}

// FindAll collects every match of Scan.
func (a *Automaton[S]) FindAll(text []S) []Match {
	var matches []Match
	for m := range a.Scan(text) {
		matches = append(matches, m)
	}
	return matches
}

// Contains reports whether any keyword occurs in text. It stops at the first
// occurrence.
func (a *Automaton[S]) Contains(text []S) bool {
	for range a.Scan(text) {
		return true
	}
	return false
}
