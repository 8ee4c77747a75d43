// Package ahocorasick provides multi-pattern string matching on top of the
// automaton in internal/domain/automaton. Matcher implements
// ports.PatternMatcher; TextScanner reports byte offsets for each match,
// suitable for line-number computation.
package ahocorasick

import (
	"sync/atomic"

	"github.com/corey/kwscan/internal/ports"
)

var _ ports.PatternMatcher = (*Matcher)(nil)

// Matcher implements fast multi-keyword matching.
// Rebuild() compiles an automaton; Match() returns matching keywords.
// The zero value matches nothing until the first Rebuild.
type Matcher struct {
	// IgnoreCase folds ASCII letters in keywords and content.
	// Read at Rebuild time.
	IgnoreCase bool

	scanner atomic.Pointer[TextScanner]
}

// Rebuild replaces the automaton with a new set of keywords.
// On error the previous automaton stays active.
func (m *Matcher) Rebuild(keywords []string) error {
	s, err := m.Compile(keywords)
	if err != nil {
		return err
	}
	m.Install(s)
	return nil
}

// Compile builds a scanner with the matcher's options without activating it.
func (m *Matcher) Compile(keywords []string) (*TextScanner, error) {
	return NewTextScanner(keywords, Options{IgnoreCase: m.IgnoreCase})
}

// Install makes s the active scanner. Scans already running keep the one
// they loaded.
func (m *Matcher) Install(s *TextScanner) {
	m.scanner.Store(s)
}

// Match returns the distinct keywords found in content, in first-seen order.
func (m *Matcher) Match(content string) []string {
	s := m.scanner.Load()
	if s == nil || s.PatternCount() == 0 {
		return nil
	}
	matches := s.Scan([]byte(content), ScanOptions{})
	if len(matches) == 0 {
		return nil
	}

	// Deduplicate by keyword
	seen := make(map[int]bool, len(matches))
	var result []string
	for _, tm := range matches {
		if !seen[tm.PatternIndex] {
			seen[tm.PatternIndex] = true
			result = append(result, s.Pattern(tm.PatternIndex))
		}
	}
	return result
}

// Scanner returns the active TextScanner, or nil before the first Rebuild.
func (m *Matcher) Scanner() *TextScanner {
	return m.scanner.Load()
}
