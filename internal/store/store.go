// Package store persists calendar artifacts under a root with logical
// raw/ and merged/ prefixes. Keys are slash-separated object names; the
// backing filesystem is an afero.Fs so the storage technology stays
// swappable (and tests run on the memory filesystem).
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound reports a missing key on Get.
var ErrNotFound = errors.New("store: key not found")

type Store struct {
	fs   afero.Fs
	root string
}

// New builds a store over the given filesystem rooted at root.
func New(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: root}
}

// NewOS builds a store over the local disk.
func NewOS(root string) *Store {
	return New(afero.NewOsFs(), root)
}

// NewMemory builds a throwaway in-memory store.
func NewMemory() *Store {
	return New(afero.NewMemMapFs(), "")
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get reads the object at key; ErrNotFound when absent.
func (s *Store) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return data, nil
}

// Put writes the object at key atomically: the data lands in a temp
// file first and is renamed over the target, so a failed upload never
// leaves a partially overwritten artifact behind.
func (s *Store) Put(key string, data []byte) error {
	target := s.pathFor(key)
	dir := filepath.Dir(target)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}

	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// List returns the calendar keys under the given prefix, relative to
// the store root.
func (s *Store) List(prefix string) ([]string, error) {
	base := s.pathFor(prefix)
	keys := make([]string, 0)

	err := afero.Walk(s.fs, base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".ics") {
			return nil
		}
		rel, rerr := filepath.Rel(s.root, p)
		if rerr != nil {
			return rerr
		}
		keys = append(keys, path.Clean(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("store: list %s: %w", prefix, err)
	}
	return keys, nil
}
