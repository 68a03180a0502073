package shard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
)

// mapping owns the memory-mapped file backing a shard and the three typed
// views (hash table, search index, data) sliced over its one contiguous
// byte range. All bounds checking for offsets within the data region is the
// mapping's responsibility; the hash table, search index, and codec helpers
// never touch m.full directly.
type mapping struct {
	f    *os.File
	full mmap.MMap

	ht   []byte // hash table region: htEntries * 8 bytes
	si   []byte // search index region: siEntries * 16 bytes
	data []byte // data region: dataSize bytes
}

func regionSizes(htEntries, siEntries, dataSize uint32) (htBytes, siBytes uint64, fileSize uint64) {
	htBytes = uint64(htEntries) * 8
	siBytes = uint64(siEntries) * 16
	fileSize = htBytes + siBytes + uint64(dataSize)
	return
}

// createMapping establishes a fresh, zero-filled shard file at dir/filename.
// On any failure the partially-created file is removed so that no partial
// shard is ever observable.
func createMapping(dir, filename string, htEntries, siEntries, dataSize uint32) (*mapping, error) {
	path := filepath.Join(dir, filename)
	htBytes, siBytes, fileSize := regionSizes(htEntries, siEntries, dataSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, &DropError{Err: fmt.Errorf("create %s: %w", path, err)}
	}

	m, err := finishMapping(f, path, htBytes, siBytes, fileSize, true)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return m, nil
}

// openMapping reopens an existing shard file, validating its size against
// the constants the caller supplies. A shard file is only meaningful when
// opened with the same constants that created it; this is the caller's
// responsibility to track.
func openMapping(dir, filename string, htEntries, siEntries, dataSize uint32) (*mapping, error) {
	path := filepath.Join(dir, filename)
	htBytes, siBytes, fileSize := regionSizes(htEntries, siEntries, dataSize)

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, &DropError{Err: fmt.Errorf("open %s: %w", path, err)}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &DropError{Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	if uint64(info.Size()) != fileSize {
		f.Close()
		return nil, &DropError{Err: fmt.Errorf("%s: size %d does not match expected %d for the given hash table/search index/data size parameters", path, info.Size(), fileSize)}
	}

	return finishMapping(f, path, htBytes, siBytes, fileSize, false)
}

func finishMapping(f *os.File, path string, htBytes, siBytes, fileSize uint64, truncate bool) (*mapping, error) {
	if truncate {
		if err := f.Truncate(int64(fileSize)); err != nil {
			f.Close()
			return nil, &DropError{Err: fmt.Errorf("truncate %s to %d: %w", path, fileSize, err)}
		}
	}

	full, err := mmap.MapRegion(f, int(fileSize), mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, &DropError{Err: fmt.Errorf("mmap %s: %w", path, err)}
	}

	return &mapping{
		f:    f,
		full: full,
		ht:   full[:htBytes],
		si:   full[htBytes : htBytes+siBytes],
		data: full[htBytes+siBytes:],
	}, nil
}

func (m *mapping) sync() error {
	if err := m.full.Flush(); err != nil {
		return &SyncError{Err: err}
	}
	return nil
}

func (m *mapping) close() error {
	var firstErr error
	if err := m.full.Unmap(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
