package bbolt

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// =============================================================================
// bbolt Dictionary Store: save/load/list/delete named keyword lists
// Expectation: keyword order survives a round trip, writes are transactional,
// a reopened database still holds every committed dictionary.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := newTestStore(t)

	keywords := []string{"he", "she", "his", "hers", "héllo wörld"}
	require.NoError(t, store.SaveDictionary("greek", keywords))

	got, err := store.LoadDictionary("greek")
	require.NoError(t, err)
	assert.Equal(t, keywords, got)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.LoadDictionary("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Overwrite(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveDictionary("d", []string{"a", "b"}))
	require.NoError(t, store.SaveDictionary("d", []string{"c"}))

	got, err := store.LoadDictionary("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got)
}

func TestStore_EmptyDictionary(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveDictionary("empty", nil))
	got, err := store.LoadDictionary("empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_RejectsEmptyName(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveDictionary("", []string{"x"}))
}

func TestStore_RejectsOversizedKeyword(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.SaveDictionary("big", []string{strings.Repeat("x", maxKeywordLen+1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestStore_List(t *testing.T) {
	store, _ := newTestStore(t)

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.SaveDictionary("zeta", []string{"z"}))
	require.NoError(t, store.SaveDictionary("alpha", []string{"a", "b", "c"}))

	infos, err := store.ListDictionaries()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, 3, infos[0].KeywordCount)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Equal(t, 1, infos[1].KeywordCount)
	assert.True(t, infos[0].UpdatedAt.After(before))
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveDictionary("d", []string{"a"}))
	require.NoError(t, store.DeleteDictionary("d"))

	got, err := store.LoadDictionary("d")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Idempotent
	assert.NoError(t, store.DeleteDictionary("d"))
	assert.NoError(t, store.DeleteDictionary("never-existed"))
}

func TestStore_Reopen(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.SaveDictionary("d", []string{"persist", "me"}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadDictionary("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"persist", "me"}, got)
}

func TestStore_LockTimeout(t *testing.T) {
	_, path := newTestStore(t)

	start := time.Now()
	_, err := NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestStore_CorruptValue(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDictionaries).Put([]byte("bad"), []byte{formatVersion, 9, 0, 0, 0, 1})
	}))

	_, err := store.LoadDictionary("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDictionary("d", []string{"a"}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.LoadDictionary("d")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SaveDictionary("d", []string{"a", "b"}))
		}()
	}
	wg.Wait()
}

func TestEncoding_RoundTripPreservesOrder(t *testing.T) {
	keywords := []string{"zeta", "alpha", "alpha", "mid"}
	data, err := encodeKeywords(keywords)
	require.NoError(t, err)

	n, err := keywordCount(data)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, err := decodeKeywords(data)
	require.NoError(t, err)
	assert.Equal(t, keywords, got)
}

func TestEncoding_RejectsBadInput(t *testing.T) {
	_, err := decodeKeywords([]byte{1, 0})
	assert.Error(t, err)

	_, err = decodeKeywords([]byte{7, 0, 0, 0, 0})
	assert.ErrorContains(t, err, "version")

	data, err := encodeKeywords([]string{"ok"})
	require.NoError(t, err)
	_, err = decodeKeywords(append(data, 0xff))
	assert.ErrorContains(t, err, "trailing")
}

func TestEncoding_CorruptCountDoesNotPreallocate(t *testing.T) {
	// Header claims 2^32-1 keywords; the blob holds one
	data := []byte{formatVersion, 0xff, 0xff, 0xff, 0xff, 1, 0, 'a'}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err := decodeKeywords(data)
	runtime.ReadMemStats(&after)

	assert.ErrorContains(t, err, "truncated at keyword 1")
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}
