// Package scancache persists scan results so a long-running wallet does
// not have to rescan from genesis after a restart. It caches only the
// caller's own derived CandidateOutputs, keyed by a fingerprint of their
// view key plus height — never an authoritative subaddress index.
package scancache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"viewscan/curve"
	"viewscan/hashing"
	"viewscan/types"
)

// Fingerprint derives the 8-byte cache key prefix for a private view
// key: the first 8 bytes of its Keccak-256 hash.
func Fingerprint(viewPriv curve.Scalar) [8]byte {
	digest := hashing.Keccak256(viewPriv.Bytes())
	var fp [8]byte
	copy(fp[:], digest[:8])
	return fp
}

// BlockScanResult is what gets cached per (view-key fingerprint, height).
type BlockScanResult struct {
	Height     uint64                  `json:"height"`
	Candidates []types.CandidateOutput `json:"candidates"`
	TxErrors   []string                `json:"tx_errors,omitempty"`
}

const resultPrefix = "result:"

// Cache wraps a BadgerDB instance dedicated to scan-result storage.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) a cache database at path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("scancache: open %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func resultKey(viewKeyFingerprint [8]byte, height uint64) []byte {
	key := make([]byte, 0, len(resultPrefix)+8+8)
	key = append(key, []byte(resultPrefix)...)
	key = append(key, viewKeyFingerprint[:]...)
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], height)
	return append(key, heightBuf[:]...)
}

// Put stores result under (viewKeyFingerprint, result.Height).
func (c *Cache) Put(viewKeyFingerprint [8]byte, result BlockScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("scancache: marshal result: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resultKey(viewKeyFingerprint, result.Height), data)
	})
}

// Get retrieves a previously cached result. The second return value is
// false when nothing was cached for that (fingerprint, height) pair.
func (c *Cache) Get(viewKeyFingerprint [8]byte, height uint64) (BlockScanResult, bool, error) {
	var result BlockScanResult
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(viewKeyFingerprint, height))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return BlockScanResult{}, false, fmt.Errorf("scancache: get height %d: %w", height, err)
	}
	return result, found, nil
}
