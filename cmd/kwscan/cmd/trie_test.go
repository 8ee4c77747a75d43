package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/domain/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTrie(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"he", "she", "his"})
	require.NoError(t, err)

	var sb strings.Builder
	writeTrie(&sb, a, 0, "", false, 0)

	want := "" +
		"├── h\n" +
		"│   ├── e  [\"he\"]\n" +
		"│   └── i\n" +
		"│       └── s  [\"his\"]  ⇢ \"s\"\n" +
		"└── s\n" +
		"    └── h  ⇢ \"h\"\n" +
		"        └── e  [\"she\"]  ⇢ \"he\"\n"
	assert.Equal(t, want, sb.String())
}

func TestWriteTrie_Depth(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"abc"})
	require.NoError(t, err)

	var sb strings.Builder
	writeTrie(&sb, a, 0, "", false, 1)
	assert.Equal(t, "└── a\n", sb.String())
}

func TestFormatTrieFlat(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"ab", "b"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(formatTrieFlat(a), "\n"), "\n")
	require.Len(t, lines, 5) // header + root, a, ab, b
	assert.Contains(t, lines[1], `""`)
	assert.Contains(t, lines[2], `"a"`)
	assert.Contains(t, lines[3], `"ab"`)
	assert.Contains(t, lines[4], `"b"`)
}

func TestSymbolText(t *testing.T) {
	assert.Equal(t, "a", symbolText('a'))
	assert.Equal(t, `\x20`, symbolText(' '))
	assert.Equal(t, `\x0a`, symbolText('\n'))
	assert.Equal(t, `\xff`, symbolText(0xff))
}

// =============================================================================
// watch: only new matches are printed
// =============================================================================

func TestRescanner_PrintsOnlyNewMatches(t *testing.T) {
	sc, err := ahocorasick.NewTextScanner([]string{"todo", "fixme"}, ahocorasick.Options{})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	rs := newRescanner(sc, ahocorasick.ScanOptions{}, &out, &errOut, false)
	path := filepath.Join(t.TempDir(), "notes.txt")

	require.NoError(t, os.WriteFile(path, []byte("todo: one\n"), 0644))
	rs.rescan(path)
	assert.Equal(t, path+":1:1: todo  todo: one\n", out.String())

	// Unchanged match moved down a line: nothing new
	out.Reset()
	require.NoError(t, os.WriteFile(path, []byte("header\ntodo: one\n"), 0644))
	rs.rescan(path)
	assert.Empty(t, out.String())

	// A second occurrence of an identical line is new
	out.Reset()
	require.NoError(t, os.WriteFile(path, []byte("header\ntodo: one\ntodo: one\nfixme\n"), 0644))
	rs.rescan(path)
	assert.Equal(t,
		path+":3:1: todo  todo: one\n"+
			path+":4:1: fixme  fixme\n",
		out.String())
	assert.Empty(t, errOut.String())
}

func TestRescanner_DeletedFileResets(t *testing.T) {
	sc, err := ahocorasick.NewTextScanner([]string{"x"}, ahocorasick.Options{})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	rs := newRescanner(sc, ahocorasick.ScanOptions{}, &out, &errOut, false)
	path := filepath.Join(t.TempDir(), "f")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	rs.rescan(path)
	require.NoError(t, os.Remove(path))
	rs.rescan(path)
	assert.Empty(t, errOut.String(), "a vanished file is not an error")

	out.Reset()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	rs.rescan(path)
	assert.Equal(t, path+":1:1: x  x\n", out.String())
}
