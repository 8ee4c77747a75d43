// Package bbolt implements the ports.DictionaryStore interface using bbolt
// (embedded B+ tree). Keyword lists live in the "dictionaries" bucket keyed
// by name; per-dictionary metadata lives in "meta". Writes are transactional:
// a crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"fmt"
	"sort"
	"time"

	"github.com/corey/kwscan/internal/ports"
	bolt "go.etcd.io/bbolt"
)

var _ ports.DictionaryStore = (*Store)(nil)

// Bucket keys
var (
	bucketDictionaries = []byte("dictionaries")
	bucketMeta         = []byte("meta")
)

// dictionaryMeta is stored alongside each keyword list.
type dictionaryMeta struct {
	UpdatedAt time.Time
}

// Store implements ports.DictionaryStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
// A second process holding the file lock makes this fail with a timeout
// after one second.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDictionaries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDictionary persists keywords under name, replacing any prior list.
func (s *Store) SaveDictionary(name string, keywords []string) error {
	if name == "" {
		return fmt.Errorf("empty dictionary name")
	}
	data, err := encodeKeywords(keywords)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	meta, err := encodeGob(dictionaryMeta{UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode %s meta: %w", name, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketDictionaries).Put([]byte(name), data); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(name), meta)
	})
}

// LoadDictionary retrieves the keywords stored under name.
// Returns nil, nil if the dictionary does not exist.
func (s *Store) LoadDictionary(name string) ([]string, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDictionaries).Get([]byte(name))
		if v != nil {
			// bbolt values are only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	keywords, err := decodeKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return keywords, nil
}

// ListDictionaries returns every stored dictionary sorted by name.
func (s *Store) ListDictionaries() ([]ports.DictionaryInfo, error) {
	var infos []ports.DictionaryInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket(bucketMeta)
		return tx.Bucket(bucketDictionaries).ForEach(func(k, v []byte) error {
			count, err := keywordCount(v)
			if err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			info := ports.DictionaryInfo{Name: string(k), KeywordCount: count}
			if raw := metaBucket.Get(k); raw != nil {
				var meta dictionaryMeta
				if err := decodeGob(raw, &meta); err == nil {
					info.UpdatedAt = meta.UpdatedAt
				}
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// DeleteDictionary removes a dictionary and its metadata.
// Idempotent: deleting a nonexistent dictionary is not an error.
func (s *Store) DeleteDictionary(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketDictionaries).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(name))
	})
}
