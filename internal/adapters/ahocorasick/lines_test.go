package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineIndex_Position(t *testing.T) {
	content := []byte("first\nsecond line\r\n\nlast")
	li := NewLineIndex(content)

	assert.Equal(t, 4, li.LineCount())
	assert.Equal(t, Position{Line: 1, Column: 1}, li.Position(0))
	assert.Equal(t, Position{Line: 1, Column: 6}, li.Position(5)) // the newline itself
	assert.Equal(t, Position{Line: 2, Column: 1}, li.Position(6))
	assert.Equal(t, Position{Line: 2, Column: 8}, li.Position(13))
	assert.Equal(t, Position{Line: 4, Column: 2}, li.Position(21))
}

func TestLineIndex_Line(t *testing.T) {
	li := NewLineIndex([]byte("first\nsecond line\r\n\nlast"))

	assert.Equal(t, "first", li.Line(1))
	assert.Equal(t, "second line", li.Line(2))
	assert.Equal(t, "", li.Line(3))
	assert.Equal(t, "last", li.Line(4))
	assert.Equal(t, "", li.Line(0))
	assert.Equal(t, "", li.Line(5))
}

func TestLineIndex_Empty(t *testing.T) {
	li := NewLineIndex(nil)
	assert.Equal(t, 1, li.LineCount())
	assert.Equal(t, Position{Line: 1, Column: 1}, li.Position(0))
	assert.Equal(t, "", li.Line(1))
}
