package catalog

import "sync/atomic"

// Store holds the current catalog snapshot. Reads are a single atomic
// pointer load and never block; installation is a single atomic pointer
// swap. A request that grabbed an older snapshot keeps observing it
// consistently until it finishes, at which point the old snapshot becomes
// garbage-collectable.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store. Until Install is called, Current fails
// with ErrNotReady.
func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot, or ErrNotReady if no snapshot has ever
// been installed.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Install atomically replaces the current snapshot. In-flight readers keep
// the snapshot reference they already hold.
func (s *Store) Install(snap *Snapshot) {
	s.current.Store(snap)
}

// Ready reports whether a snapshot has been installed.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}
