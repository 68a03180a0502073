package shard

// Coordinate is the opaque predicate copy_to filters compaction through.
// The shard only consumes it; the region-mapping/coordinate subsystem that
// implements it is out of scope.
type Coordinate interface {
	Contains(primaryHash, secondaryHash uint32, key []byte, values [][]byte) bool
}

// CoordinateFunc adapts a plain function to Coordinate.
type CoordinateFunc func(primaryHash, secondaryHash uint32, key []byte, values [][]byte) bool

func (f CoordinateFunc) Contains(primaryHash, secondaryHash uint32, key []byte, values [][]byte) bool {
	return f(primaryHash, secondaryHash, key, values)
}

// Entry is one record as observed through a Snapshot.
type Entry struct {
	PrimaryHash        uint32
	SecondaryHash      uint32
	DataOffset         uint32
	InvalidationOffset uint32
	Version            uint64
	Key                []byte
	Values             [][]byte
	Live               bool
}

// Snapshot is a stable view over a shard's search index as of the instant
// MakeSnapshot captured (data_offset_, search_offset_). It holds a strong
// reference to the shard, keeping its mapping alive even if the shard
// itself is Closed while the snapshot is still in use.
type Snapshot struct {
	shard        *Shard
	dataOffset   uint32
	searchOffset uint32
}

// MakeSnapshot captures (data_offset_, search_offset_) under a read lock
// that excludes Put/Del. Caller must hold Mu.RLock, which on a
// sync.RWMutex is automatically exclusive with any concurrent Mu.Lock
// holder, giving the "shared, mutually exclusive with PUT/DEL" discipline
// without any extra bookkeeping.
func (s *Shard) MakeSnapshot() *Snapshot {
	s.refCount.Add(1)
	return &Snapshot{
		shard:        s,
		dataOffset:   s.dataOffset.Load(),
		searchOffset: s.searchOffset.Load(),
	}
}

// Close releases the snapshot's reference to its shard.
func (sn *Snapshot) Close() error {
	return sn.shard.Close()
}

// isLive reports whether invalidationOffset marks an entry live as of this
// snapshot: either never invalidated, or invalidated by a record written
// after the snapshot was taken.
func (sn *Snapshot) isLive(invalidationOffset uint32) bool {
	return invalidationOffset == 0 || invalidationOffset >= sn.dataOffset
}

// Each calls fn once for every entry recorded in the search index up to the
// snapshot's captured search_offset_, in index order, stopping early if fn
// returns false. Entry.Live reflects liveness as of the snapshot instant,
// not the shard's current state.
func (sn *Snapshot) Each(fn func(Entry) bool) {
	m := sn.shard.m
	for slot := uint32(0); slot < sn.searchOffset; slot++ {
		primaryHash, secondaryHash, dataOffset, invalidationOffset := siEntry(m.si, slot)
		version, key, values := readRecord(m.data, dataOffset)
		e := Entry{
			PrimaryHash:        primaryHash,
			SecondaryHash:      secondaryHash,
			DataOffset:         dataOffset,
			InvalidationOffset: invalidationOffset,
			Version:            version,
			Key:                key,
			Values:             values,
			Live:               sn.isLive(invalidationOffset),
		}
		if !fn(e) {
			return
		}
	}
}

// CopyTo implements compaction: it takes a snapshot of s and, for every
// live-as-of-snapshot entry whose (primary_hash, secondary_hash, key,
// values) satisfies coordinate, writes a fresh copy into dst via the
// unresolving probe. Caller must hold Mu.RLock on s and Mu.Lock on dst.
//
// Per the unresolving probe's precondition, dst must have no dead slots
// and no two copied keys may collide; this holds automatically for records
// drawn from a single source shard, since a key has at most one live
// record in it at a time.
func (s *Shard) CopyTo(coordinate Coordinate, dst *Shard) error {
	snap := s.MakeSnapshot()
	defer snap.Close()

	var copyErr error
	snap.Each(func(e Entry) bool {
		if !e.Live {
			return true
		}
		if !coordinate.Contains(e.PrimaryHash, e.SecondaryHash, e.Key, e.Values) {
			return true
		}

		size := recordSize(e.Key, e.Values)
		dataOffset := dst.dataOffset.Load()
		if uint64(dataOffset)+uint64(size) > uint64(dst.dataSize) {
			copyErr = ErrDataFull
			return false
		}
		if dst.searchOffset.Load() == dst.siEntries {
			copyErr = ErrSearchFull
			return false
		}
		slot := findBucketUnresolving(dst.m.ht, dst.htEntries, e.PrimaryHash)
		if slot == dst.htEntries {
			copyErr = ErrHashFull
			return false
		}

		newOffset := dataOffset
		writeRecord(dst.m.data, newOffset, e.Version, e.Key, e.Values)
		dst.dataOffset.Store(newOffset + size)

		searchSlot := dst.searchOffset.Load()
		siAppend(dst.m.si, searchSlot, e.PrimaryHash, e.SecondaryHash, newOffset)
		dst.searchOffset.Store(searchSlot + 1)

		htStore(dst.m.ht, slot, e.PrimaryHash, newOffset)
		return true
	})
	return copyErr
}
