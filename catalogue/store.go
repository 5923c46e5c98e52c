package catalogue

import (
	"sync/atomic"
	"time"
)

// Snapshot is one published tree together with its publication metadata.
type Snapshot[T, U any] struct {
	Root    *Node[T, U]
	Version uint64
	Loaded  time.Time
	Source  string
}

// Store publishes whole trees. Readers never lock: they Load a snapshot
// and resolve against it while a writer may Swap in a replacement.
type Store[T, U any] struct {
	cur     atomic.Pointer[Snapshot[T, U]]
	version atomic.Uint64
}

// NewStore publishes root as version 1.
func NewStore[T, U any](root Node[T, U], source string) *Store[T, U] {
	s := &Store[T, U]{}
	s.Swap(root, source)
	return s
}

// Load returns the current snapshot; nil before the first Swap.
func (s *Store[T, U]) Load() *Snapshot[T, U] {
	return s.cur.Load()
}

// Swap publishes root and returns the new snapshot.
func (s *Store[T, U]) Swap(root Node[T, U], source string) *Snapshot[T, U] {
	snap := &Snapshot[T, U]{
		Root:    &root,
		Version: s.version.Add(1),
		Loaded:  time.Now().UTC(),
		Source:  source,
	}
	s.cur.Store(snap)
	return snap
}

// Resolve looks addr up in the current snapshot.
func (s *Store[T, U]) Resolve(addr Address) (*Node[T, U], bool) {
	snap := s.cur.Load()
	if snap == nil {
		return nil, false
	}
	return snap.Root.Resolve(addr)
}
