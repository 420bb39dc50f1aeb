package manifest

import (
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
)

// Store caches parsed manifests keyed by the directory that contains the
// manifest file. It is the "unsafe cache" of spec §3/§9: safe for concurrent
// use, append-only, and may be shared by construction across multiple
// resolvers (spec: "The unsafe (manifest) cache may be shared across
// resolvers constructed with the same cache handle").
//
// Concurrent first-access loads of the same directory collapse into a single
// parse via singleflight, matching the intent (not the mechanism) of
// bennypowers-mappa's packagejson.MemoryCache.GetOrLoad, which hand-rolls the
// same single-flight behavior with a sync.Once per key.
type Store struct {
	fs       *fsprobe.Store
	filename string
	group    singleflight.Group

	mu      sync.RWMutex
	byDir   map[string]*Manifest // directory containing the manifest -> parsed manifest
	nearest map[string]*Manifest // directory asking -> nearest enclosing manifest (may be in an ancestor)
}

// NewStore creates a manifest Store. filename is the manifest's conventional
// name (e.g. "package.json"); an empty string defaults to "package.json".
func NewStore(fs *fsprobe.Store, filename string) *Store {
	if filename == "" {
		filename = "package.json"
	}
	return &Store{
		fs:       fs,
		filename: filename,
		byDir:    make(map[string]*Manifest),
		nearest:  make(map[string]*Manifest),
	}
}

// Load parses and caches the manifest file directly inside dir, if any.
// Returns (nil, nil) if dir has no manifest file.
func (s *Store) Load(dir string) (*Manifest, error) {
	s.mu.RLock()
	if m, ok := s.byDir[dir]; ok {
		s.mu.RUnlock()
		return m, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.group.Do("load:"+dir, func() (interface{}, error) {
		manifestPath := path.Join(dir, s.filename)
		kind, err := s.fs.Entry(manifestPath)
		if err != nil {
			return (*Manifest)(nil), err
		}
		if kind != fsprobe.File {
			s.mu.Lock()
			s.byDir[dir] = nil
			s.mu.Unlock()
			return (*Manifest)(nil), nil
		}
		data, err := s.fs.ReadFile(manifestPath)
		if err != nil {
			return (*Manifest)(nil), err
		}
		m, err := Parse(dir, data)
		if err != nil {
			return (*Manifest)(nil), err
		}
		s.mu.Lock()
		s.byDir[dir] = m
		s.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Manifest), nil
}

// Nearest walks from dir up toward the filesystem root (spec §4.2: "walk
// toward the filesystem root reading one manifest file name ... the first
// successful load wins") and returns the first manifest found, or (nil, nil)
// if none exists above dir.
func (s *Store) Nearest(dir string) (*Manifest, error) {
	s.mu.RLock()
	if m, ok := s.nearest[dir]; ok {
		s.mu.RUnlock()
		return m, nil
	}
	s.mu.RUnlock()

	cur := dir
	for {
		m, err := s.Load(cur)
		if err != nil {
			return nil, err
		}
		if m != nil {
			s.mu.Lock()
			s.nearest[dir] = m
			s.mu.Unlock()
			return m, nil
		}
		parent := path.Dir(cur)
		if parent == cur {
			s.mu.Lock()
			s.nearest[dir] = nil
			s.mu.Unlock()
			return nil, nil
		}
		cur = parent
	}
}
