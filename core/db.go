package core

import (
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
)

// Db wraps a Backend with an in-memory transaction overlay (spec.md §4.B).
// Reads consult the overlay first, then the backend; writes go only to the
// overlay. A single mutator at a time is assumed — the overlay itself does
// no locking (spec.md §5).
type Db struct {
	backend Backend
	overlay map[string][]byte
}

// NewDb wraps backend in a fresh, empty-overlay Db.
func NewDb(backend Backend) *Db {
	return &Db{backend: backend, overlay: make(map[string][]byte)}
}

// assembleKey builds the canonical Db key: le16(contractID) || le16(fieldID)
// || concat(keyParts) (spec.md §3).
func assembleKey(contractID, fieldID uint16, keyParts ...[]byte) []byte {
	key := make([]byte, 4, 4+keyPartsLen(keyParts))
	binary.LittleEndian.PutUint16(key[0:2], contractID)
	binary.LittleEndian.PutUint16(key[2:4], fieldID)
	for _, p := range keyParts {
		key = append(key, p...)
	}
	return key
}

func keyPartsLen(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}

// AddressKey is a fixed-width (20-byte) key part for an Address.
func AddressKey(a Address) []byte { return a.Bytes() }

// Uint64Key is a fixed-width (8-byte, big-endian) key part for an integer
// identifier such as a governance proposal id.
func Uint64Key(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// read returns the raw bytes for a Db entry, or an empty slice if absent.
func (db *Db) read(contractID, fieldID uint16, keyParts ...[]byte) []byte {
	key := assembleKey(contractID, fieldID, keyParts...)
	if v, ok := db.overlay[string(key)]; ok {
		return v
	}
	return db.backend.Get(key)
}

// write stores raw bytes into the overlay for a Db entry.
func (db *Db) write(contractID, fieldID uint16, raw []byte, keyParts ...[]byte) {
	key := assembleKey(contractID, fieldID, keyParts...)
	db.overlay[string(key)] = raw
}

// Commit flushes the overlay into the backend and clears it.
func (db *Db) Commit() {
	for k, v := range db.overlay {
		db.backend.Insert([]byte(k), v)
	}
	db.overlay = make(map[string][]byte)
}

// Revert discards the overlay without flushing it.
func (db *Db) Revert() {
	db.overlay = make(map[string][]byte)
}

// All iterates every (key, value) pair visible through the Db — backend
// entries overridden by any pending overlay writes — for one-shot state
// dumps (spec.md §4.B).
func (db *Db) All(yield func(key, value []byte) bool) {
	seen := make(map[string]struct{}, len(db.overlay))
	cont := true
	db.backend.All(func(key, value []byte) bool {
		k := string(key)
		seen[k] = struct{}{}
		if ov, ok := db.overlay[k]; ok {
			value = ov
		}
		if len(value) == 0 {
			return true
		}
		cont = yield([]byte(k), value)
		return cont
	})
	if !cont {
		return
	}
	for k, v := range db.overlay {
		if _, ok := seen[k]; ok {
			continue
		}
		if len(v) == 0 {
			continue
		}
		if !yield([]byte(k), v) {
			return
		}
	}
}

// decodeCorrupt panics: a CBOR decode failure means the persisted value is
// corrupt, which spec.md §7 treats as a fatal condition, not a recoverable
// error.
func decodeCorrupt(err error) {
	panic("db: corrupt value: " + err.Error())
}

// GetValue reads and CBOR-decodes a typed Db entry. A zero-length read
// (key absent) returns T's zero value, so every accessor built on GetValue
// is total (spec.md §4.B).
func GetValue[T any](db *Db, contractID, fieldID uint16, keyParts ...[]byte) T {
	var out T
	raw := db.read(contractID, fieldID, keyParts...)
	if len(raw) == 0 {
		return out
	}
	if err := cbor.Unmarshal(raw, &out); err != nil {
		decodeCorrupt(err)
	}
	return out
}

// SetValue CBOR-encodes value and writes it to the overlay.
func SetValue[T any](db *Db, contractID, fieldID uint16, value T, keyParts ...[]byte) {
	raw, err := cbor.Marshal(value)
	if err != nil {
		panic("db: unencodable value: " + err.Error())
	}
	db.write(contractID, fieldID, raw, keyParts...)
}
