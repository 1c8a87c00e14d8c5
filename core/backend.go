package core

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// Backend is the byte-level persistent map the Db overlay sits on top of
// (spec.md §4.A). Backend I/O errors are fatal to the process; there is no
// recoverable error path, matching spec.md §7 ("backend I/O errors are
// fatal").
type Backend interface {
	// Get returns the value stored for key, or an empty (non-nil) slice if
	// key is absent.
	Get(key []byte) []byte
	// Insert stores value under key, replacing any prior value.
	Insert(key, value []byte)
	// All iterates every (key, value) pair. Iteration stops early if yield
	// returns false.
	All(yield func(key, value []byte) bool)
}

// MemoryBackend is an in-memory Backend, used by tests and by
// never-persisted ephemeral nodes (spec.md §4.A).
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(key []byte) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[string(key)]
	if !ok {
		return []byte{}
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (b *MemoryBackend) Insert(key, value []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	b.data[string(key)] = v
}

func (b *MemoryBackend) All(yield func(key, value []byte) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for k, v := range b.data {
		if !yield([]byte(k), v) {
			return
		}
	}
}

// LevelDBBackend is the persistent Backend implementation, storing the
// chain's key/value space in a LevelDB database on disk (spec.md §4.A).
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDBBackend opens (creating if necessary) a LevelDB database at
// path.
func OpenLevelDBBackend(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db}, nil
}

func (b *LevelDBBackend) Get(key []byte) []byte {
	v, err := b.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return []byte{}
		}
		panic("backend: fatal read error: " + err.Error())
	}
	return v
}

func (b *LevelDBBackend) Insert(key, value []byte) {
	if err := b.db.Put(key, value, nil); err != nil {
		panic("backend: fatal write error: " + err.Error())
	}
}

func (b *LevelDBBackend) All(yield func(key, value []byte) bool) {
	iter := b.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		if !yield(iter.Key(), iter.Value()) {
			return
		}
	}
}

// Close releases the underlying LevelDB handle.
func (b *LevelDBBackend) Close() error { return b.db.Close() }
