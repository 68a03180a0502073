package shard_test

import (
	"testing"

	"github.com/rpcpool/kvshard/shard"
	"github.com/stretchr/testify/require"
)

func newTestShard(t *testing.T, opts ...shard.Option) *shard.Shard {
	t.Helper()
	defaults := []shard.Option{
		shard.WithHashTableEntries(64),
		shard.WithSearchIndexEntries(64),
		shard.WithDataSize(64 << 10),
	}
	s, err := shard.Create(t.TempDir(), "test.shard", append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

// A fresh PUT followed by GET returns the inserted value.
func TestPutThenGet(t *testing.T) {
	s := newTestShard(t)

	err := s.Put(7, 11, []byte("alpha"), [][]byte{[]byte("A")}, 1)
	require.NoError(t, err)

	values, version, err := s.Get(7, []byte("alpha"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), version)
	require.Equal(t, [][]byte{[]byte("A")}, values)
}

// Updating a key invalidates exactly one search-index
// entry and GET returns the latest version.
func TestPutOverwriteInvalidatesOldEntry(t *testing.T) {
	s := newTestShard(t)

	require.NoError(t, s.Put(7, 11, []byte("alpha"), [][]byte{[]byte("A1")}, 1))
	require.NoError(t, s.Put(7, 11, []byte("alpha"), [][]byte{[]byte("A2")}, 2))

	values, version, err := s.Get(7, []byte("alpha"))
	require.NoError(t, err)
	require.Equal(t, uint64(2), version)
	require.Equal(t, [][]byte{[]byte("A2")}, values)

	snap := s.MakeSnapshot()
	defer snap.Close()

	invalidated := 0
	snap.Each(func(e shard.Entry) bool {
		if e.InvalidationOffset != 0 {
			invalidated++
		}
		return true
	})
	require.Equal(t, 1, invalidated)
}

// DEL makes a key disappear: a later GET returns ErrNotFound.
func TestDelThenGetNotFound(t *testing.T) {
	s := newTestShard(t)

	require.NoError(t, s.Put(7, 11, []byte("alpha"), [][]byte{[]byte("A")}, 1))
	require.NoError(t, s.Del(7, []byte("alpha")))

	_, _, err := s.Get(7, []byte("alpha"))
	require.ErrorIs(t, err, shard.ErrNotFound)
}

func TestDelOfMissingKeyNotFound(t *testing.T) {
	s := newTestShard(t)
	err := s.Del(7, []byte("ghost"))
	require.ErrorIs(t, err, shard.ErrNotFound)
}

// Once the data region is full, PUT fails with
// ErrDataFull and earlier GETs are unaffected.
func TestPutDataFull(t *testing.T) {
	s := newTestShard(t, shard.WithDataSize(64))

	require.NoError(t, s.Put(1, 1, []byte("a"), [][]byte{[]byte("x")}, 1))

	err := s.Put(2, 2, []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), nil, 1)
	require.ErrorIs(t, err, shard.ErrDataFull)

	values, version, err := s.Get(1, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), version)
	require.Equal(t, [][]byte{[]byte("x")}, values)
}

// Once every hash-table slot is empty/dead-reachable
// exhausted by live entries, a PUT with a fresh key fails HASHFULL; after a
// DEL frees a slot, the same PUT succeeds.
func TestPutHashFullThenDelFrees(t *testing.T) {
	s := newTestShard(t, shard.WithHashTableEntries(4), shard.WithSearchIndexEntries(16), shard.WithDataSize(4<<10))

	for i := 1; i <= 4; i++ {
		key := []byte{byte('a' + i)}
		require.NoError(t, s.Put(uint32(i), uint32(i), key, nil, 1))
	}

	err := s.Put(100, 100, []byte("fresh"), nil, 1)
	require.ErrorIs(t, err, shard.ErrHashFull)

	require.NoError(t, s.Del(1, []byte{'a' + 1}))

	err = s.Put(100, 100, []byte("fresh"), nil, 1)
	require.NoError(t, err)

	values, version, err := s.Get(100, []byte("fresh"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), version)
	require.Empty(t, values)
}

func TestUsedSpaceMonotone(t *testing.T) {
	s := newTestShard(t)

	require.Equal(t, 0, s.UsedSpace())
	require.NoError(t, s.Put(1, 1, []byte("a"), [][]byte{[]byte("x")}, 1))
	after := s.UsedSpace()
	require.GreaterOrEqual(t, after, 0)
	require.NoError(t, s.Put(2, 2, []byte("b"), [][]byte{[]byte("y")}, 1))
	require.GreaterOrEqual(t, s.UsedSpace(), after)
}

func TestStaleSpaceTracksInvalidatedRecords(t *testing.T) {
	s := newTestShard(t)

	require.Equal(t, 0, s.StaleSpace())
	require.NoError(t, s.Put(1, 1, []byte("a"), [][]byte{[]byte("x")}, 1))
	require.Equal(t, 0, s.StaleSpace())
	require.NoError(t, s.Put(1, 1, []byte("a"), [][]byte{[]byte("y")}, 2))
	require.Greater(t, s.StaleSpace(), 0)
}

// Snapshot stability: a snapshot's view does not change no matter what
// happens to the shard afterward.
func TestSnapshotStability(t *testing.T) {
	s := newTestShard(t, shard.WithHashTableEntries(4096), shard.WithSearchIndexEntries(8192), shard.WithDataSize(1<<20))

	for i := 0; i < 100; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		require.NoError(t, s.Put(uint32(i), uint32(i), key, [][]byte{[]byte("v1")}, 1))
	}

	snap := s.MakeSnapshot()
	defer snap.Close()

	for i := 0; i < 50; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		require.NoError(t, s.Put(uint32(i), uint32(i), key, [][]byte{[]byte("v2")}, 2))
	}

	liveCount := 0
	versions := map[uint32]uint64{}
	snap.Each(func(e shard.Entry) bool {
		if e.Live {
			liveCount++
			versions[e.PrimaryHash] = e.Version
		}
		return true
	})
	require.Equal(t, 100, liveCount)
	for i := 0; i < 100; i++ {
		require.Equal(t, uint64(1), versions[uint32(i)])
	}
}

func TestCopyToFiltersByCoordinate(t *testing.T) {
	src := newTestShard(t, shard.WithHashTableEntries(256), shard.WithSearchIndexEntries(256), shard.WithDataSize(1<<16))
	dst := newTestShard(t, shard.WithHashTableEntries(256), shard.WithSearchIndexEntries(256), shard.WithDataSize(1<<16))

	for i := 0; i < 10; i++ {
		key := []byte{byte('a' + i)}
		require.NoError(t, src.Put(uint32(i), uint32(i), key, [][]byte{[]byte("v")}, 1))
	}

	onlyEven := shard.CoordinateFunc(func(primaryHash, secondaryHash uint32, key []byte, values [][]byte) bool {
		return primaryHash%2 == 0
	})

	require.NoError(t, src.CopyTo(onlyEven, dst))

	for i := 0; i < 10; i++ {
		key := []byte{byte('a' + i)}
		values, _, err := dst.Get(uint32(i), key)
		if i%2 == 0 {
			require.NoError(t, err)
			require.Equal(t, [][]byte{[]byte("v")}, values)
		} else {
			require.ErrorIs(t, err, shard.ErrNotFound)
		}
	}
}

func TestReopenRecoversCursors(t *testing.T) {
	dir := t.TempDir()
	opts := []shard.Option{
		shard.WithHashTableEntries(64),
		shard.WithSearchIndexEntries(64),
		shard.WithDataSize(64 << 10),
	}

	s, err := shard.Create(dir, "reopen.shard", opts...)
	require.NoError(t, err)
	require.NoError(t, s.Put(1, 1, []byte("a"), [][]byte{[]byte("x")}, 1))
	require.NoError(t, s.Sync())
	require.NoError(t, s.Close())

	reopened, err := shard.Open(dir, "reopen.shard", opts...)
	require.NoError(t, err)
	defer reopened.Close()

	values, version, err := reopened.Get(1, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), version)
	require.Equal(t, [][]byte{[]byte("x")}, values)
}
