package rag

import (
	"log"
	"path/filepath"
)

// Canonicalize resolves a workspace path to its absolute, symlink-free form.
// Two references to the same file compare equal after canonicalization even
// when one of them goes through a symlink or a relative segment.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// SourceSet is a set of canonicalized document paths. The pipeline uses it to
// drop retrieved snippets that duplicate material already placed in the
// prompt directly.
type SourceSet struct {
	paths  map[string]struct{}
	logger *log.Logger
}

// NewSourceSet returns an empty set. The logger may be nil.
func NewSourceSet(logger *log.Logger) *SourceSet {
	return &SourceSet{
		paths:  make(map[string]struct{}),
		logger: logger,
	}
}

// Add canonicalizes the path and stores it. When canonicalization fails (the
// file may be gone already) the cleaned form is stored instead so that at
// least string-identical references still match.
func (s *SourceSet) Add(path string) {
	if path == "" {
		return
	}
	canonical, err := Canonicalize(path)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[SOURCES] Canonicalize %q failed (%v), storing cleaned form", path, err)
		}
		s.paths[filepath.Clean(path)] = struct{}{}
		return
	}
	s.paths[canonical] = struct{}{}
}

// Contains reports whether the canonical form of path is in the set. A
// non-nil error means the candidate could not be canonicalized; membership is
// then undecided and the caller chooses what to do with the node.
func (s *SourceSet) Contains(path string) (bool, error) {
	if len(s.paths) == 0 {
		return false, nil
	}
	canonical, err := Canonicalize(path)
	if err != nil {
		return false, err
	}
	_, ok := s.paths[canonical]
	return ok, nil
}

// Len returns the number of stored paths.
func (s *SourceSet) Len() int {
	return len(s.paths)
}
