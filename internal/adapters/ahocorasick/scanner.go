package ahocorasick

import (
	"github.com/corey/kwscan/internal/domain/automaton"
)

// Options configure how a TextScanner is built.
type Options struct {
	// IgnoreCase folds ASCII letters only, so byte offsets into the original
	// content stay valid. Non-ASCII text is matched as-is.
	IgnoreCase bool
}

// ScanOptions filter the matches returned by one Scan call.
type ScanOptions struct {
	WholeWord  bool // drop matches touching a word byte on either side
	MaxMatches int  // stop after this many matches; 0 = unlimited
}

// TextMatch represents a match from the TextScanner with byte offsets.
type TextMatch struct {
	PatternIndex int // index into the original patterns slice
	Start        int // byte offset start (inclusive)
	End          int // byte offset end (exclusive)
}

// TextScanner wraps an Aho-Corasick automaton for text scanning.
// It is immutable after construction and safe for concurrent use.
type TextScanner struct {
	automaton  *automaton.Automaton[byte]
	patterns   []string
	ignoreCase bool
}

// NewTextScanner builds a text scanner from the given patterns. An empty
// pattern fails with *automaton.InvalidKeywordError.
func NewTextScanner(patterns []string, opts Options) (*TextScanner, error) {
	p := make([]string, len(patterns))
	copy(p, patterns)

	kws := make([][]byte, len(p))
	for i, pat := range p {
		kws[i] = []byte(pat)
		if opts.IgnoreCase {
			kws[i] = foldASCII(kws[i])
		}
	}
	a, err := automaton.Build(kws)
	if err != nil {
		return nil, err
	}
	return &TextScanner{
		automaton:  a,
		patterns:   p,
		ignoreCase: opts.IgnoreCase,
	}, nil
}

// Scan finds all pattern matches in content and returns them with byte
// offsets, ordered by end offset. Overlapping matches are all reported.
func (s *TextScanner) Scan(content []byte, opts ScanOptions) []TextMatch {
	text := content
	if s.ignoreCase {
		text = foldASCII(content)
	}

	var matches []TextMatch
	for m := range s.automaton.Scan(text) {
		tm := TextMatch{
			PatternIndex: m.Keyword,
			Start:        m.Start(),
			End:          m.End + 1,
		}
		if opts.WholeWord && !isWholeWord(content, tm.Start, tm.End) {
			continue
		}
		matches = append(matches, tm)
		if opts.MaxMatches > 0 && len(matches) >= opts.MaxMatches {
			break
		}
	}
	return matches
}

// Contains reports whether any pattern occurs in content.
func (s *TextScanner) Contains(content []byte) bool {
	if s.ignoreCase {
		content = foldASCII(content)
	}
	return s.automaton.Contains(content)
}

// PatternCount returns the number of patterns in the automaton.
func (s *TextScanner) PatternCount() int {
	return len(s.patterns)
}

// Pattern returns the pattern string at the given index.
func (s *TextScanner) Pattern(idx int) string {
	if idx < 0 || idx >= len(s.patterns) {
		return ""
	}
	return s.patterns[idx]
}

// Automaton exposes the underlying automaton for diagnostics (trie dumps,
// stats). It is read-only.
func (s *TextScanner) Automaton() *automaton.Automaton[byte] {
	return s.automaton
}

// foldASCII returns content with ASCII upper-case letters lowered. The input
// is returned unchanged when it has nothing to fold.
func foldASCII(content []byte) []byte {
	i := 0
	for i < len(content) && !isUpperASCII(content[i]) {
		i++
	}
	if i == len(content) {
		return content
	}
	out := make([]byte, len(content))
	copy(out, content[:i])
	for ; i < len(content); i++ {
		c := content[i]
		if isUpperASCII(c) {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func isUpperASCII(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// isWordByte treats ASCII letters, digits, underscore and any non-ASCII
// byte (part of a multi-byte rune) as word characters.
func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWholeWord(content []byte, start, end int) bool {
	if start > 0 && isWordByte(content[start-1]) {
		return false
	}
	if end < len(content) && isWordByte(content[end]) {
		return false
	}
	return true
}
