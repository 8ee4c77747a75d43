package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_EmptyFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dictionary: secrets
keywords_file: secrets.txt
ignore_case: true
max_matches: 10
extensions: [".log", ".txt"]
`), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "secrets", s.Dictionary)
	assert.Equal(t, "secrets.txt", s.KeywordsFile)
	assert.True(t, s.IgnoreCase)
	assert.False(t, s.WholeWord)
	assert.Equal(t, 10, s.MaxMatches)
	assert.Equal(t, []string{".log", ".txt"}, s.Extensions)
	assert.Equal(t, "info", s.LogLevel, "unset keys keep defaults")
}

func TestLoadSettings_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ignorecase: true\n"), 0644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestLoadSettings_Validates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("max_matches: -3\n"), 0644))
	_, err := LoadSettings(path)
	assert.ErrorContains(t, err, "max_matches")

	require.NoError(t, os.WriteFile(path, []byte("log_level: chatty\n"), 0644))
	_, err = LoadSettings(path)
	assert.ErrorContains(t, err, "log_level")

	require.NoError(t, os.WriteFile(path, []byte("dictionary: \"\"\n"), 0644))
	_, err = LoadSettings(path)
	assert.ErrorContains(t, err, "dictionary")
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s := DefaultSettings()
	s.WholeWord = true
	s.Extensions = []string{".md"}
	require.NoError(t, s.Save(path))

	got, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
