package shard

import (
	"sync/atomic"
	"unsafe"
)

// loadU64/storeU64 give acquire/release-ordered access to an 8-byte word
// inside a memory-mapped byte slice, used for the hash table entry and each
// search index word. sync/atomic's operations carry the happens-before
// guarantees Put/Del's write ordering requires without taking a lock.
func loadU64(b []byte, offset uint32) uint64 {
	p := (*uint64)(unsafe.Pointer(&b[offset]))
	return atomic.LoadUint64(p)
}

func storeU64(b []byte, offset uint32, v uint64) {
	p := (*uint64)(unsafe.Pointer(&b[offset]))
	atomic.StoreUint64(p, v)
}

func loadU32(b []byte, offset uint32) uint32 {
	p := (*uint32)(unsafe.Pointer(&b[offset]))
	return atomic.LoadUint32(p)
}

func storeU32(b []byte, offset uint32, v uint32) {
	p := (*uint32)(unsafe.Pointer(&b[offset]))
	atomic.StoreUint32(p, v)
}
