package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultDictionary is the dictionary name used when none is configured.
const DefaultDictionary = "default"

// Settings is the optional .kwscan/config.yaml. Command-line flags override
// every field.
type Settings struct {
	Dictionary   string   `yaml:"dictionary"`    // dictionary the daemon serves
	KeywordsFile string   `yaml:"keywords_file"` // if set, the daemon imports and watches it
	IgnoreCase   bool     `yaml:"ignore_case"`
	WholeWord    bool     `yaml:"whole_word"`
	MaxMatches   int      `yaml:"max_matches"` // 0 = unlimited
	Extensions   []string `yaml:"extensions"`  // watch filter, empty = all files
	LogLevel     string   `yaml:"log_level"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Dictionary: DefaultDictionary,
		LogLevel:   "info",
	}
}

// LoadSettings reads path over the defaults. A missing or empty file yields
// the defaults; unknown keys are an error so typos do not go unnoticed.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks field ranges.
func (s Settings) Validate() error {
	if s.Dictionary == "" {
		return fmt.Errorf("dictionary must not be empty")
	}
	if s.MaxMatches < 0 {
		return fmt.Errorf("max_matches must be >= 0, got %d", s.MaxMatches)
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the settings as YAML.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func parseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
