package shard

import "bytes"

const (
	htEntrySize = 8

	// htDead marks a tombstone slot: the low 32 bits of the entry.
	htDead = uint32(1)
	// htEmpty marks a never-used slot.
	htEmpty = uint32(0)
)

// htEntry reads the (hash, offset) pair stored at slot.
func htEntry(ht []byte, slot uint32) (hash uint32, offset uint32) {
	word := loadU64(ht, slot*htEntrySize)
	return uint32(word), uint32(word >> 32)
}

// htStore overwrites the entry at slot with (hash, offset) under a single
// atomic 64-bit store, so a concurrent GET sees either the old or the new
// value, never a torn mix of the two halves.
func htStore(ht []byte, slot uint32, hash, offset uint32) {
	word := uint64(hash) | uint64(offset)<<32
	storeU64(ht, slot*htEntrySize, word)
}

// htMarkDead clears a slot to the tombstone state (hash=1, offset=0).
func htMarkDead(ht []byte, slot uint32) {
	htStore(ht, slot, htDead, 0)
}

// lookupKey scans forward from primaryHash mod htEntries, wrapping, for the
// live slot whose key matches. Dead slots never terminate this search: a key
// can sit arbitrarily far past a reclaimable slot left behind by some other,
// later-deleted key that happened to start probing at the same bucket. The
// search only stops at a truly empty slot, which proves no insert has ever
// reached past this point on this chain, or after a full htEntries scan if
// the table has no empty slot at all.
func lookupKey(ht, data []byte, htEntries, primaryHash uint32, key []byte) (offset uint32, matched bool) {
	start := primaryHash % htEntries

	for i := uint32(0); i < htEntries; i++ {
		s := (start + i) % htEntries
		hash, off := htEntry(ht, s)

		switch hash {
		case htEmpty:
			return 0, false
		case htDead:
			continue
		default:
			if hash == primaryHash {
				keySize := readKeySize(data, off)
				if bytes.Equal(readKey(data, off, keySize), key) {
					return off, true
				}
			}
		}
	}
	return 0, false
}

// findBucketResolving is the probe PUT and DEL use to locate both an
// existing live record for key (continuing past dead slots exactly like
// lookupKey) and, when no match exists, the slot a fresh insert should
// claim: the earliest dead-or-empty slot encountered along the chain, not
// necessarily the slot that stops the search. This is deliberately a
// different rule from lookupKey's: a lookup must keep scanning past a dead
// slot to find a live match that may sit beyond it, but an insert is free
// to reuse the first reclaimable slot it sees, since writing there cannot
// hide any record still live further down the chain (the insert rewrites
// the hash table, not the chain after it).
//
// The full chain is still walked even after firstReusable is found, both to
// detect an existing match (which must overwrite in place, not be
// duplicated into the reused slot) and to confirm the table truly has no
// free slot anywhere when firstReusable is never set. slot == htEntries
// signals the latter: the table is full and has nothing to reclaim.
func findBucketResolving(ht, data []byte, htEntries, primaryHash uint32, key []byte) (slot uint32, offset uint32, matched bool) {
	start := primaryHash % htEntries
	firstReusable := htEntries // sentinel: "none seen yet"

	for i := uint32(0); i < htEntries; i++ {
		s := (start + i) % htEntries
		hash, off := htEntry(ht, s)

		switch hash {
		case htEmpty:
			if firstReusable != htEntries {
				return firstReusable, 0, false
			}
			return s, 0, false
		case htDead:
			if firstReusable == htEntries {
				firstReusable = s
			}
		default:
			if hash == primaryHash {
				keySize := readKeySize(data, off)
				if bytes.Equal(readKey(data, off, keySize), key) {
					return s, off, true
				}
			}
		}
	}
	if firstReusable != htEntries {
		return firstReusable, 0, false
	}
	return htEntries, 0, false
}

// findBucketUnresolving implements the unresolving linear probe, used only
// by CopyTo: it returns the first empty slot reachable from
// primaryHash mod htEntries. The caller guarantees the destination has no
// dead slots and that no two source keys collide, so no key comparison is
// needed.
func findBucketUnresolving(ht []byte, htEntries, primaryHash uint32) uint32 {
	start := primaryHash % htEntries
	for i := uint32(0); i < htEntries; i++ {
		s := (start + i) % htEntries
		hash, _ := htEntry(ht, s)
		if hash == htEmpty {
			return s
		}
	}
	return htEntries
}
