package ahocorasick

import (
	"math/rand/v2"
	"slices"
	"testing"

	aho "github.com/petar-dambovaliev/aho-corasick"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Parity: TextScanner must report exactly the overlapping matches of the
// petar-dambovaliev/aho-corasick reference implementation.
// =============================================================================

func referenceMatches(patterns []string, content []byte) []TextMatch {
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	ac := builder.Build(patterns)

	var out []TextMatch
	iter := ac.IterOverlappingByte(content)
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		out = append(out, TextMatch{PatternIndex: m.Pattern(), Start: m.Start(), End: m.End()})
	}
	return out
}

func sortMatches(ms []TextMatch) []TextMatch {
	slices.SortFunc(ms, func(a, b TextMatch) int {
		if a.End != b.End {
			return a.End - b.End
		}
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.PatternIndex - b.PatternIndex
	})
	return ms
}

func TestParity_Reference(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	randWord := func(alphabet string, n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.IntN(len(alphabet))]
		}
		return string(b)
	}

	for round := 0; round < 100; round++ {
		seen := make(map[string]bool)
		var patterns []string
		n := 1 + rng.IntN(12)
		for len(patterns) < n {
			p := randWord("abc ", 1+rng.IntN(5))
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
		}
		content := []byte(randWord("abcd ", 200))

		s, err := NewTextScanner(patterns, Options{})
		require.NoError(t, err)

		want := sortMatches(referenceMatches(patterns, content))
		got := sortMatches(s.Scan(content, ScanOptions{}))
		require.Equal(t, want, got, "patterns=%q", patterns)
	}
}

func TestParity_Ushers(t *testing.T) {
	patterns := []string{"he", "she", "his", "hers"}
	content := []byte("ushers")

	s, err := NewTextScanner(patterns, Options{})
	require.NoError(t, err)
	require.Equal(t,
		sortMatches(referenceMatches(patterns, content)),
		sortMatches(s.Scan(content, ScanOptions{})))
}
