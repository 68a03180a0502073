// Package shard implements the on-disk storage unit of a distributed
// key-value store: a single fixed-size, memory-mapped file holding an
// append-only log of versioned records, indexed by an in-file hash table
// and an auxiliary append-only search index.
//
// A shard does not lock itself, and the only goroutine it starts is the
// one-shot flush run by Async. Mu documents
// the lock a caller must hold for each operation; PUT/DEL/MakeSnapshot/
// CopyTo order memory through atomic loads/stores on the mapped words so
// that GET remains lock-free and may, by contract, return a spurious
// ErrNotFound when racing a concurrent write on the same key.
package shard

import (
	"fmt"
	"sync"
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("shard")

// Shard is a single memory-mapped, fixed-size key-value storage file.
type Shard struct {
	path string

	htEntries uint32
	siEntries uint32
	dataSize  uint32

	syncOnClose bool

	m *mapping

	dataOffset   atomic.Uint32
	searchOffset atomic.Uint32

	refCount atomic.Int32

	// Mu is the lock discipline callers must follow: hold RLock for GET,
	// StaleSpace, UsedSpace and MakeSnapshot, and Lock for Put/Del. CopyTo
	// expects the caller to hold RLock on its source and Lock on its
	// destination. The shard never takes this lock itself.
	Mu sync.RWMutex
}

// Create atomically establishes a fresh, zero-filled shard file named
// filename inside dir. On any failure to create, truncate, or map the
// file, no partial shard is left on disk and a *DropError wrapping
// ErrDropFailed is returned.
func Create(dir, filename string, opts ...Option) (*Shard, error) {
	cfg := defaultConfig()
	cfg.apply(opts)

	m, err := createMapping(dir, filename, cfg.hashTableEntries, cfg.searchIndexEntries, cfg.dataSize)
	if err != nil {
		log.Warnw("create failed", "path", filename, "error", err)
		return nil, err
	}

	s := newShard(dir, filename, cfg, m)
	log.Infow("created shard", "path", s.path, "hashTableEntries", s.htEntries, "searchIndexEntries", s.siEntries, "dataSize", s.dataSize)
	return s, nil
}

// Open reopens an existing shard file, validating its size against the
// constants the caller supplies: the file format carries no header
// identifying its own constants.
func Open(dir, filename string, opts ...Option) (*Shard, error) {
	cfg := defaultConfig()
	cfg.apply(opts)

	m, err := openMapping(dir, filename, cfg.hashTableEntries, cfg.searchIndexEntries, cfg.dataSize)
	if err != nil {
		log.Warnw("open failed", "path", filename, "error", err)
		return nil, err
	}

	s := newShard(dir, filename, cfg, m)
	s.recoverCursors()
	log.Infow("opened shard", "path", s.path, "dataOffset", s.dataOffset.Load(), "searchOffset", s.searchOffset.Load())
	return s, nil
}

func newShard(dir, filename string, cfg config, m *mapping) *Shard {
	s := &Shard{
		path:        filename,
		htEntries:   cfg.hashTableEntries,
		siEntries:   cfg.searchIndexEntries,
		dataSize:    cfg.dataSize,
		syncOnClose: cfg.syncOnClose,
		m:           m,
	}
	s.refCount.Store(1)
	return s
}

// recoverCursors scans a reopened shard's search index to recover the
// high-water marks for data_offset_/search_offset_, since neither cursor is
// itself persisted in the file format.
func (s *Shard) recoverCursors() {
	var maxSearch uint32
	var maxData uint32
	for slot := uint32(0); slot < s.siEntries; slot++ {
		primaryHash, _, dataOffset, invalidationOffset := siEntry(s.m.si, slot)
		if primaryHash == 0 && dataOffset == 0 && invalidationOffset == 0 {
			break
		}
		maxSearch = slot + 1
		keySize := readKeySize(s.m.data, dataOffset)
		_, size := readValues(s.m.data, dataOffset, keySize)
		if end := dataOffset + size; end > maxData {
			maxData = end
		}
		if invalidationOffset != 0 {
			keySize := readKeySize(s.m.data, invalidationOffset)
			_, size := readValues(s.m.data, invalidationOffset, keySize)
			if end := invalidationOffset + size; end > maxData {
				maxData = end
			}
		}
	}
	s.dataOffset.Store(maxData)
	s.searchOffset.Store(maxSearch)
}

// Close releases this handle's reference to the shard's mapping. The
// mapping is unmapped and the file descriptor closed only when the last
// reference (this shard or any outstanding Snapshot) is released.
func (s *Shard) Close() error {
	if s.refCount.Add(-1) > 0 {
		return nil
	}
	if s.syncOnClose {
		if err := s.m.sync(); err != nil {
			log.Warnw("sync on close failed", "path", s.path, "error", err)
		}
	}
	log.Infow("closed shard", "path", s.path)
	return s.m.close()
}

// Get looks up the live record for key, or ErrNotFound. Caller must hold
// Mu.RLock.
//
// Get may return a spurious ErrNotFound when racing a concurrent Put/Del on
// the same key; this is accepted, not a bug, and must not be patched
// by adding locking here.
func (s *Shard) Get(primaryHash uint32, key []byte) ([][]byte, uint64, error) {
	offset, matched := lookupKey(s.m.ht, s.m.data, s.htEntries, primaryHash, key)
	if !matched {
		return nil, 0, ErrNotFound
	}

	version := readVersion(s.m.data, offset)
	keySize := readKeySize(s.m.data, offset)
	values, _ := readValues(s.m.data, offset, keySize)

	out := make([][]byte, len(values))
	for i, v := range values {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[i] = cp
	}
	return out, version, nil
}

// Put inserts or updates the record for key, following a strict ordering
// guarantee: the data record is fully written before the search
// index entry is appended, which is appended before the hash-table slot is
// overwritten, which happens before any stale search-index entries for the
// old record are invalidated. Caller must hold Mu.Lock.
func (s *Shard) Put(primaryHash, secondaryHash uint32, key []byte, values [][]byte, version uint64) error {
	size := recordSize(key, values)

	dataOffset := s.dataOffset.Load()
	if uint64(dataOffset)+uint64(size) > uint64(s.dataSize) {
		return ErrDataFull
	}
	if s.searchOffset.Load() == s.siEntries {
		return ErrSearchFull
	}

	slot, oldOffset, matched := findBucketResolving(s.m.ht, s.m.data, s.htEntries, primaryHash, key)
	if slot == s.htEntries {
		return ErrHashFull
	}

	newOffset := dataOffset
	writeRecord(s.m.data, newOffset, version, key, values)
	s.dataOffset.Store(newOffset + size)

	searchSlot := s.searchOffset.Load()
	siAppend(s.m.si, searchSlot, primaryHash, secondaryHash, newOffset)
	s.searchOffset.Store(searchSlot + 1)

	htStore(s.m.ht, slot, primaryHash, newOffset)

	if matched {
		invalidateSearchIndex(s.m.si, s.searchOffset.Load(), oldOffset, newOffset)
	}
	return nil
}

// Del removes the live record for key, writing a tombstone in its
// place. Caller must hold Mu.Lock.
func (s *Shard) Del(primaryHash uint32, key []byte) error {
	slot, oldOffset, matched := findBucketResolving(s.m.ht, s.m.data, s.htEntries, primaryHash, key)
	if !matched {
		return ErrNotFound
	}

	dataOffset := s.dataOffset.Load()
	size := recordSize(key, nil)
	if uint64(dataOffset)+uint64(size) > uint64(s.dataSize) {
		return ErrDataFull
	}

	tombstoneOffset := dataOffset
	writeTombstone(s.m.data, tombstoneOffset, key)
	s.dataOffset.Store(tombstoneOffset + size)

	invalidateSearchIndex(s.m.si, s.searchOffset.Load(), oldOffset, tombstoneOffset)
	htMarkDead(s.m.ht, slot)
	return nil
}

// Sync requests a synchronous flush of the entire mapping. Needs no lock.
func (s *Shard) Sync() error {
	if err := s.m.sync(); err != nil {
		log.Warnw("sync failed", "path", s.path, "error", err)
		return err
	}
	return nil
}

// Async requests an asynchronous flush of the entire mapping: the flush
// runs in a background goroutine and any failure is logged rather than
// returned, since there is no caller left waiting for it by the time it
// completes. Needs no lock.
func (s *Shard) Async() {
	go func() {
		if err := s.m.sync(); err != nil {
			log.Warnw("async flush failed", "path", s.path, "error", err)
		}
	}()
}

// UsedSpace returns floor(100 * data_offset_ / DATA_SIZE). Caller must hold
// at least Mu.RLock, or accept a stale read.
func (s *Shard) UsedSpace() int {
	if s.dataSize == 0 {
		return 0
	}
	return int(uint64(s.dataOffset.Load()) * 100 / uint64(s.dataSize))
}

// StaleSpace returns the percentage of the data region occupied by records
// whose search-index entry has a non-zero invalidation_offset. Caller must
// hold at least Mu.RLock, or accept a stale read.
func (s *Shard) StaleSpace() int {
	if s.dataSize == 0 {
		return 0
	}
	searchOffset := s.searchOffset.Load()
	var stale uint64
	for slot := uint32(0); slot < searchOffset; slot++ {
		_, _, dataOffset, invalidationOffset := siEntry(s.m.si, slot)
		if invalidationOffset == 0 {
			continue
		}
		keySize := readKeySize(s.m.data, dataOffset)
		_, size := readValues(s.m.data, dataOffset, keySize)
		stale += uint64(size)
	}
	return int(stale * 100 / uint64(s.dataSize))
}

func (s *Shard) String() string {
	return fmt.Sprintf("shard(%s, used=%d%%, stale=%d%%)", s.path, s.UsedSpace(), s.StaleSpace())
}
