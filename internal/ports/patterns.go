package ports

// PatternMatcher finds keywords in content using multi-pattern matching (Aho-Corasick).
// A single pass over the content finds all matching keywords simultaneously,
// regardless of how many keywords are in the set. This is O(n + m + z) where
// n=content length, m=total pattern length, z=number of matches.
//
// The matcher must be rebuilt when the keyword set changes (e.g., after the
// dictionary file is edited). Match may be called concurrently with Rebuild;
// each call sees either the old or the new keyword set, never a mix.
type PatternMatcher interface {
	// Match returns the distinct keywords found in content, in the order
	// they first occur. Returns nil if no keywords match.
	Match(content string) []string

	// Rebuild replaces the entire keyword set and reconstructs the automaton.
	// Previous keywords are discarded. Returns an error if the keyword set
	// is invalid (e.g., empty keyword string); the previous set stays active.
	Rebuild(keywords []string) error
}
