// Package hash provides the primary_hash/secondary_hash inputs a shard
// consumes as opaque 32-bit values. The shard package never imports this:
// a real deployment's hashing library is an external collaborator; this
// package exists so tests and the shardctl CLI have a concrete, real hash
// function to drive the shard with.
package hash

import "github.com/cespare/xxhash/v2"

// domainPrimary and domainSecondary prefix the key before hashing so the
// two hashes of the same key are independent, the way compactindexsized's
// EntryHash64 mixes an arbitrary domain prefix into xxHash to decorrelate
// per-bucket hash functions from the bucket-selection hash.
const (
	domainPrimary   = uint64(0x50524d59) // "PRMY"
	domainSecondary = uint64(0x53434e44) // "SCND"
)

// Primary returns the 32-bit primary hash of key.
func Primary(key []byte) uint32 {
	return mix(domainPrimary, key)
}

// Secondary returns the 32-bit secondary hash of key, independent of
// Primary for the same key.
func Secondary(key []byte) uint32 {
	return mix(domainSecondary, key)
}

func mix(domain uint64, key []byte) uint32 {
	var d xxhash.Digest
	d.Reset()
	var prefix [8]byte
	prefix[0] = byte(domain)
	prefix[1] = byte(domain >> 8)
	prefix[2] = byte(domain >> 16)
	prefix[3] = byte(domain >> 24)
	d.Write(prefix[:])
	d.Write(key)
	sum := d.Sum64()
	return uint32(sum ^ (sum >> 32))
}
