// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"errors"
	"time"
)

// ErrDictionaryNotFound is returned by callers that require a dictionary the
// store does not hold.
var ErrDictionaryNotFound = errors.New("dictionary not found")

// DictionaryStore persists named keyword dictionaries to durable storage.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveDictionary must be transactional. A crash mid-write must
// not corrupt previously committed dictionaries.
type DictionaryStore interface {
	// SaveDictionary stores keywords under name, replacing any prior list.
	// Keyword order is preserved: it defines keyword ids in the automaton.
	SaveDictionary(name string, keywords []string) error

	// LoadDictionary retrieves the keywords stored under name.
	// Returns nil, nil if no such dictionary exists.
	LoadDictionary(name string) ([]string, error)

	// ListDictionaries returns every stored dictionary sorted by name.
	ListDictionaries() ([]DictionaryInfo, error)

	// DeleteDictionary removes a dictionary.
	// Idempotent: deleting a nonexistent dictionary is not an error.
	DeleteDictionary(name string) error
}

// DictionaryInfo describes a stored dictionary without loading its keywords.
type DictionaryInfo struct {
	Name         string
	KeywordCount int
	UpdatedAt    time.Time // zero if unknown
}
