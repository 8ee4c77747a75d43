package ahocorasick

import "sort"

// Position is a 1-based line and column (in bytes) within scanned content.
type Position struct {
	Line   int
	Column int
}

// LineIndex maps byte offsets to line/column positions. Build it once per
// content and reuse it for every match.
type LineIndex struct {
	content []byte
	starts  []int // byte offset of the first byte of each line
}

// NewLineIndex records the line starts of content.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{content: content, starts: starts}
}

// Position returns the line and column of a byte offset.
func (li *LineIndex) Position(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - li.starts[line] + 1}
}

// Line returns the text of a 1-based line without its trailing newline
// (and carriage return).
func (li *LineIndex) Line(n int) string {
	if n < 1 || n > len(li.starts) {
		return ""
	}
	start := li.starts[n-1]
	end := len(li.content)
	if n < len(li.starts) {
		end = li.starts[n] - 1
	}
	if end > start && li.content[end-1] == '\r' {
		end--
	}
	return string(li.content[start:end])
}

// LineCount returns the number of lines in the content.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}
