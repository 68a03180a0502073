package shard

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the return codes of the on-disk shard contract.
// Callers compare with errors.Is; SyncError and DropError wrap an underlying
// OS error while still satisfying errors.Is(err, ErrSyncFailed) /
// errors.Is(err, ErrDropFailed).
var (
	ErrNotFound   = errors.New("shard: key not found")
	ErrDataFull   = errors.New("shard: data region full")
	ErrHashFull   = errors.New("shard: hash table full")
	ErrSearchFull = errors.New("shard: search index full")
	ErrSyncFailed = errors.New("shard: sync failed")
	ErrDropFailed = errors.New("shard: create failed")
)

// SyncError wraps the OS error that caused a sync/async flush to fail.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("shard: sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func (e *SyncError) Is(target error) bool {
	return target == ErrSyncFailed
}

// DropError wraps the OS error that prevented a shard file from being
// created, truncated, or mapped. No shard exists when this is returned.
type DropError struct {
	Err error
}

func (e *DropError) Error() string {
	return fmt.Sprintf("shard: create failed: %v", e.Err)
}

func (e *DropError) Unwrap() error {
	return e.Err
}

func (e *DropError) Is(target error) bool {
	return target == ErrDropFailed
}
