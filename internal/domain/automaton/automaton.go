// Package automaton implements an Aho-Corasick multi-keyword automaton.
//
// The automaton is built once from a fixed keyword set and is immutable
// afterwards: any number of goroutines may scan texts with the same
// *Automaton concurrently. A scan visits every input symbol once and reports
// every keyword occurrence, including keywords that overlap or are suffixes
// of one another.
//
// Symbols are any comparable type. BuildStrings is the byte-alphabet
// shorthand used for text.
package automaton

import "slices"

// Automaton is a keyword trie with failure and output links.
type Automaton[S comparable] struct {
	t        *trie[S]
	keywords [][]S
	maxDepth int
}

// Stats summarizes the size of a built automaton.
type Stats struct {
	Nodes    int // trie nodes including the root
	Keywords int // distinct keywords
	MaxDepth int // length of the longest keyword
}

// Build inserts every keyword into a fresh trie and computes its links.
// Keyword ids are positions in keywords; a duplicate keyword reports the id
// of its first occurrence. Any empty keyword fails the whole build with
// *InvalidKeywordError.
func Build[S comparable](keywords [][]S) (*Automaton[S], error) {
	for i, kw := range keywords {
		if len(kw) == 0 {
			return nil, &InvalidKeywordError{Position: i}
		}
	}

	t := newTrie[S]()
	owned := make([][]S, len(keywords))
	maxDepth := 0
	for i, kw := range keywords {
		owned[i] = slices.Clone(kw)
		if _, err := t.insert(owned[i], i); err != nil {
			return nil, err
		}
		maxDepth = max(maxDepth, len(kw))
	}
	t.buildLinks()

	return &Automaton[S]{t: t, keywords: owned, maxDepth: maxDepth}, nil
}

// BuildStrings builds a byte automaton from string keywords.
func BuildStrings(keywords []string) (*Automaton[byte], error) {
	kws := make([][]byte, len(keywords))
	for i, kw := range keywords {
		kws[i] = []byte(kw)
	}
	return Build(kws)
}

// Len returns the number of keywords the automaton was built from,
// duplicates included.
func (a *Automaton[S]) Len() int {
	return len(a.keywords)
}

// Keyword returns a copy of the keyword with the given id, or nil if the id
// is out of range.
func (a *Automaton[S]) Keyword(id int) []S {
	if id < 0 || id >= len(a.keywords) {
		return nil
	}
	return slices.Clone(a.keywords[id])
}

// Stats reports node, keyword and depth counts.
func (a *Automaton[S]) Stats() Stats {
	return Stats{
		Nodes:    len(a.t.nodes),
		Keywords: a.t.distinct,
		MaxDepth: a.maxDepth,
	}
}
