package store

import (
	"fmt"
	"time"
)

// DuplicateContentError reports an insert whose content hash already
// exists in the store, whether live or soft-deleted. The uniqueness
// constraint is strict: this is never an upsert.
type DuplicateContentError struct {
	Hash string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("memory with content hash %s already exists", e.Hash)
}

// StoreBusyError reports that the backing store could not be acquired
// within the configured busy timeout. Safe for the caller to retry.
type StoreBusyError struct {
	Timeout time.Duration
}

func (e *StoreBusyError) Error() string {
	return fmt.Sprintf("store busy: could not acquire database within %s", e.Timeout)
}
