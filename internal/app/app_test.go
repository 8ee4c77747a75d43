package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/adapters/bbolt"
	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/corey/kwscan/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// App wiring: store, matcher, socket server, keywords file watcher
// Expectation: the daemon serves the configured dictionary, reloads swap the
// automaton atomically, and a bad reload never takes the old one down.
// =============================================================================

func newTestApp(t *testing.T, settings Settings) *App {
	t.Helper()
	root := t.TempDir()
	a, err := New(Config{
		ProjectRoot: root,
		Settings:    settings,
		SocketPath:  filepath.Join(root, "kwscan.sock"),
	})
	require.NoError(t, err)
	return a
}

// saveDictionary writes through a separate store handle, the way
// `kwscan dict add` does.
func saveDictionary(t *testing.T, a *App, name string, keywords []string) {
	t.Helper()
	store, err := bbolt.NewStore(a.Paths.DB)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SaveDictionary(name, keywords))
}

func loadDictionary(t *testing.T, a *App, name string) []string {
	t.Helper()
	store, err := bbolt.NewStore(a.Paths.DB)
	require.NoError(t, err)
	defer store.Close()
	keywords, err := store.LoadDictionary(name)
	require.NoError(t, err)
	return keywords
}

func scanKeywords(t *testing.T, a *App, text string) []string {
	t.Helper()
	sc := a.Scanner()
	require.NotNil(t, sc)
	var out []string
	for _, m := range sc.Scan([]byte(text), ahocorasick.ScanOptions{}) {
		out = append(out, sc.Pattern(m.PatternIndex))
	}
	return out
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New(Config{Settings: DefaultSettings()})
	assert.Error(t, err)
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.MaxMatches = -1
	_, err := New(Config{ProjectRoot: t.TempDir(), Settings: s})
	assert.Error(t, err)
}

func TestApp_ReloadFromStore(t *testing.T) {
	a := newTestApp(t, DefaultSettings())
	defer a.Stop()

	assert.Nil(t, a.Scanner())

	_, err := a.Reload()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrDictionaryNotFound))

	saveDictionary(t, a, DefaultDictionary, []string{"he", "she", "he"})
	result, err := a.Reload()
	require.NoError(t, err)
	assert.Equal(t, socket.ReloadResult{Dictionary: DefaultDictionary, KeywordCount: 2}, result)
	assert.Equal(t, []string{"she", "he"}, scanKeywords(t, a, "ushe"))
}

func TestApp_ReloadKeepsPreviousOnInvalidDictionary(t *testing.T) {
	a := newTestApp(t, DefaultSettings())
	defer a.Stop()

	saveDictionary(t, a, DefaultDictionary, []string{"alpha"})
	_, err := a.Reload()
	require.NoError(t, err)

	saveDictionary(t, a, DefaultDictionary, []string{"beta", ""})
	_, err = a.Reload()
	require.Error(t, err)
	assert.Equal(t, []string{"alpha"}, scanKeywords(t, a, "alpha beta"))
}

func TestApp_KeywordsFileImportedIntoStore(t *testing.T) {
	root := t.TempDir()
	kwFile := filepath.Join(root, "words.txt")
	require.NoError(t, os.WriteFile(kwFile, []byte("# greek\nhe\nshe\n\nhers\n"), 0644))

	s := DefaultSettings()
	s.Dictionary = "greek"
	s.KeywordsFile = "words.txt"
	a, err := New(Config{ProjectRoot: root, Settings: s, SocketPath: filepath.Join(root, "k.sock")})
	require.NoError(t, err)
	defer a.Stop()

	result, err := a.Reload()
	require.NoError(t, err)
	assert.Equal(t, 3, result.KeywordCount)

	assert.Equal(t, []string{"he", "she", "hers"}, loadDictionary(t, a, "greek"))
}

func TestApp_StartServesOverSocket(t *testing.T) {
	a := newTestApp(t, DefaultSettings())
	saveDictionary(t, a, DefaultDictionary, []string{"needle"})
	require.NoError(t, a.Start())

	client := socket.NewClient(a.Server.Addr())
	result, err := client.Scan(socket.ScanParams{Data: []byte("hay\nhay needle")})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, socket.MatchHit{Keyword: "needle", Start: 8, End: 14, Line: 2, Column: 5}, result.Matches[0])

	pid, err := a.Paths.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, a.Stop())
	assert.False(t, client.Ping())
	_, err = os.Stat(a.Paths.PIDFile)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_StartFailsWithoutDictionary(t *testing.T) {
	a := newTestApp(t, DefaultSettings())
	defer a.Stop()

	err := a.Start()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrDictionaryNotFound))
}

func TestApp_WatchedKeywordsFileReloads(t *testing.T) {
	root := t.TempDir()
	kwFile := filepath.Join(root, "words.txt")
	require.NoError(t, os.WriteFile(kwFile, []byte("alpha\n"), 0644))

	s := DefaultSettings()
	s.KeywordsFile = kwFile
	a, err := New(Config{ProjectRoot: root, Settings: s, SocketPath: filepath.Join(root, "k.sock")})
	require.NoError(t, err)
	require.NoError(t, a.Start())
	defer a.Stop()

	assert.Equal(t, []string{"alpha"}, scanKeywords(t, a, "alpha beta"))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(kwFile, []byte("beta\n"), 0644))

	assert.Eventually(t, func() bool {
		got := scanKeywords(t, a, "alpha beta")
		return len(got) == 1 && got[0] == "beta"
	}, 2*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, a.Reloads(), int64(1), "file-triggered reloads are counted")

	// Deleting the file fails the reload and keeps the last good automaton
	require.NoError(t, os.Remove(kwFile))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []string{"beta"}, scanKeywords(t, a, "alpha beta"))
}

func TestApp_ReloadSeesStoreEditsWhileRunning(t *testing.T) {
	a := newTestApp(t, DefaultSettings())
	saveDictionary(t, a, DefaultDictionary, []string{"old"})
	require.NoError(t, a.Start())
	defer a.Stop()

	// The running daemon must not hold the store: a second opener edits it
	saveDictionary(t, a, DefaultDictionary, []string{"new", "newer"})

	client := socket.NewClient(a.Server.Addr())
	result, err := client.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, result.KeywordCount)
	assert.Equal(t, []string{"new", "newer"}, scanKeywords(t, a, "old newer"))

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, int64(1), health.Reloads)
	assert.Equal(t, 2, health.KeywordCount)
}

func TestApp_FailedSaveKeepsPreviousAutomaton(t *testing.T) {
	root := t.TempDir()
	kwFile := filepath.Join(root, "words.txt")
	require.NoError(t, os.WriteFile(kwFile, []byte("alpha\n"), 0644))

	s := DefaultSettings()
	s.KeywordsFile = kwFile
	a, err := New(Config{ProjectRoot: root, Settings: s, SocketPath: filepath.Join(root, "k.sock")})
	require.NoError(t, err)
	defer a.Stop()

	_, err = a.Reload()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kwFile, []byte("beta\n"), 0644))

	// Another process holds the store lock: the save times out
	holder, err := bbolt.NewStore(a.Paths.DB)
	require.NoError(t, err)
	_, err = a.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save default")
	assert.Equal(t, []string{"alpha"}, scanKeywords(t, a, "alpha beta"), "new automaton installed without being saved")
	assert.Equal(t, int64(1), a.Reloads())

	stored, err := holder.LoadDictionary(DefaultDictionary)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, stored)
	require.NoError(t, holder.Close())

	_, err = a.Reload()
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, scanKeywords(t, a, "alpha beta"))
	assert.Equal(t, []string{"beta"}, loadDictionary(t, a, DefaultDictionary))
	assert.Equal(t, int64(2), a.Reloads())
}
