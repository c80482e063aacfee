package refdata

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrNoSnapshot is returned when the store has not been primed yet.
var ErrNoSnapshot = errors.New("no reference snapshot loaded")

// Store holds the current reference snapshot. Reads are lock-free and always
// observe a complete snapshot; reloads install a fresh snapshot atomically so
// in-flight calculations keep the one they started with.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore constructs a store, optionally primed with an initial snapshot.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Swap installs a new snapshot. Nil snapshots are ignored.
func (s *Store) Swap(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.current.Store(snap)
}

// Age reports how long ago the active snapshot was loaded.
func (s *Store) Age() (time.Duration, error) {
	snap := s.current.Load()
	if snap == nil {
		return 0, ErrNoSnapshot
	}
	return time.Since(snap.LoadedAt), nil
}
