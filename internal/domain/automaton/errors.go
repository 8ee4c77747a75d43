package automaton

import "fmt"

// InvalidKeywordError is returned by Build when a keyword is empty.
// An empty keyword would match at every position, so the whole build is
// rejected and no automaton is returned.
type InvalidKeywordError struct {
	Position int // index of the offending keyword in the input slice
}

func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid keyword at position %d: empty keyword", e.Position)
}
