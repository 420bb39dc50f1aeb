// Package fsprobe is the filesystem probe collaborator: it answers "does this
// path exist, and is it a file or a directory" and memoizes the answer. Byte-
// level reading and directory-entry enumeration are deliberately thin — the
// resolver core only ever needs to know a path's kind and, for manifests, its
// raw bytes.
package fsprobe

import (
	"os"

	"github.com/pkg/errors"
)

// EntryKind is the probe's answer for a single path.
type EntryKind uint8

const (
	Missing EntryKind = iota
	File
	Directory
)

func (k EntryKind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "missing"
	}
}

// FS is the filesystem collaborator. Implementations must follow symlinks
// when stating a path (spec §4.2: "Returns File for regular files (symlinks
// followed)").
type FS interface {
	Stat(path string) (EntryKind, error)
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FS against the real operating system filesystem.
type OSFS struct{}

func (OSFS) Stat(path string) (EntryKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Missing, nil
		}
		return Missing, errors.Wrapf(err, "stat %q", path)
	}
	if info.IsDir() {
		return Directory, nil
	}
	return File, nil
}

func (OSFS) ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", path)
	}
	return b, nil
}
