package fsprobe

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store is the read-through, memoizing front for an FS. Lookups are
// thread-safe; once a stat of a path succeeds, the cached EntryKind is
// returned for the lifetime of the Store. A failed stat is not cached, so
// the next lookup of that path stats it again (spec §4.2: "both
// the path→Entry mapping... are memoized for the lifetime of the cache.
// Lookups are thread-safe; writes are idempotent").
//
// This mirrors the mutex-guarded map-of-entries idiom esbuild's
// internal/fs.Entry uses for its own lazy stat, but coordinates the
// single-flight of concurrent first-access stats with
// golang.org/x/sync/singleflight rather than a hand-rolled per-key
// sync.Once.
type Store struct {
	fs    FS
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]EntryKind
}

// NewStore creates a Store backed by the given FS collaborator.
func NewStore(fs FS) *Store {
	return &Store{fs: fs, entries: make(map[string]EntryKind)}
}

// Entry returns the memoized EntryKind for path, probing the underlying FS
// on first access.
func (s *Store) Entry(path string) (EntryKind, error) {
	s.mu.RLock()
	if kind, ok := s.entries[path]; ok {
		s.mu.RUnlock()
		return kind, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.group.Do(path, func() (interface{}, error) {
		kind, err := s.fs.Stat(path)
		if err != nil {
			return Missing, err
		}
		s.mu.Lock()
		s.entries[path] = kind
		s.mu.Unlock()
		return kind, nil
	})
	if err != nil {
		return Missing, err
	}
	return result.(EntryKind), nil
}

// IsFile is a convenience wrapper around Entry.
func (s *Store) IsFile(path string) (bool, error) {
	kind, err := s.Entry(path)
	return kind == File, err
}

// IsDir is a convenience wrapper around Entry.
func (s *Store) IsDir(path string) (bool, error) {
	kind, err := s.Entry(path)
	return kind == Directory, err
}

// ReadFile reads path directly from the underlying FS; file contents are not
// cached here (spec's manifest store, not the entry store, owns content
// caching for parsed manifests).
func (s *Store) ReadFile(path string) ([]byte, error) {
	return s.fs.ReadFile(path)
}
