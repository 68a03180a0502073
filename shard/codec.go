package shard

import "encoding/binary"

// Record layout at a given offset in the data region:
//
//	[0..8)   uint64  version   (0 reserved: "no record" outside a tombstone's own offset)
//	[8..12)  uint32  key_size
//	[12..12+key_size)         key bytes
//	[...)    uint32  value_count
//	then, value_count times:  uint32 value_size | value_size bytes
const (
	versionFieldSize    = 8
	keySizeFieldSize    = 4
	valueCountFieldSize = 4
	valueSizeFieldSize  = 4
)

// recordSize returns the number of bytes write_record would occupy for the
// given key and values, without writing anything.
func recordSize(key []byte, values [][]byte) uint32 {
	size := versionFieldSize + keySizeFieldSize + len(key) + valueCountFieldSize
	for _, v := range values {
		size += valueSizeFieldSize + len(v)
	}
	return uint32(size)
}

// writeRecord writes a record at offset in data and returns its size.
// Callers (PUT) must have already checked offset+recordSize <= len(data).
func writeRecord(data []byte, offset uint32, version uint64, key []byte, values [][]byte) uint32 {
	o := offset
	binary.LittleEndian.PutUint64(data[o:o+8], version)
	o += versionFieldSize
	binary.LittleEndian.PutUint32(data[o:o+4], uint32(len(key)))
	o += keySizeFieldSize
	copy(data[o:o+uint32(len(key))], key)
	o += uint32(len(key))
	binary.LittleEndian.PutUint32(data[o:o+4], uint32(len(values)))
	o += valueCountFieldSize
	for _, v := range values {
		binary.LittleEndian.PutUint32(data[o:o+4], uint32(len(v)))
		o += valueSizeFieldSize
		copy(data[o:o+uint32(len(v))], v)
		o += uint32(len(v))
	}
	return o - offset
}

// writeTombstone writes the DEL tombstone record: a real,
// addressable record with version 0 and no values, so invalidation_offset
// in the search index always points at a genuine data-region offset. It
// returns the size of the record written, for cursor advancement.
func writeTombstone(data []byte, offset uint32, key []byte) uint32 {
	return writeRecord(data, offset, 0, key, nil)
}

func readVersion(data []byte, offset uint32) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

func readKeySize(data []byte, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(data[offset+versionFieldSize : offset+versionFieldSize+4])
}

// readKey returns the key bytes at offset, aliasing the mapped storage
// directly (no copy). Get copies what it returns, since the mapping may be
// unmapped on Close; Snapshot.Each passes keys and values to its callback
// uncopied, and they stay valid only until the snapshot is closed.
func readKey(data []byte, offset, keySize uint32) []byte {
	start := offset + versionFieldSize + keySizeFieldSize
	return data[start : start+keySize]
}

// readValues decodes the value_count-prefixed value list following a
// record's key, returning the values (aliasing the mapping, uncopied) and
// the record's total size.
func readValues(data []byte, offset, keySize uint32) ([][]byte, uint32) {
	o := offset + versionFieldSize + keySizeFieldSize + keySize
	valueCount := binary.LittleEndian.Uint32(data[o : o+4])
	o += valueCountFieldSize

	values := make([][]byte, valueCount)
	for i := uint32(0); i < valueCount; i++ {
		valueSize := binary.LittleEndian.Uint32(data[o : o+4])
		o += valueSizeFieldSize
		values[i] = data[o : o+valueSize]
		o += valueSize
	}
	return values, o - offset
}

// readRecord decodes the full record at offset: version, key, and values.
func readRecord(data []byte, offset uint32) (version uint64, key []byte, values [][]byte) {
	version = readVersion(data, offset)
	keySize := readKeySize(data, offset)
	key = readKey(data, offset, keySize)
	values, _ = readValues(data, offset, keySize)
	return
}
