package rag

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSourceSetContains(t *testing.T) {
	dir := t.TempDir()
	doc := writeTempDoc(t, dir, "scene.md")

	set := NewSourceSet(nil)
	set.Add(doc)

	if set.Len() != 1 {
		t.Fatalf("Len = %d, want 1", set.Len())
	}

	member, err := set.Contains(doc)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !member {
		t.Error("exact path should be a member")
	}

	// A relative spelling of the same file must match after canonicalization.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	rel, err := filepath.Rel(wd, doc)
	if err != nil {
		t.Skipf("cannot build relative path: %v", err)
	}
	member, err = set.Contains(rel)
	if err != nil {
		t.Fatalf("Contains(rel): %v", err)
	}
	if !member {
		t.Errorf("relative spelling %q should match %q", rel, doc)
	}
}

func TestSourceSetResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	doc := writeTempDoc(t, dir, "scene.md")
	link := filepath.Join(dir, "alias.md")
	if err := os.Symlink(doc, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	set := NewSourceSet(nil)
	set.Add(doc)

	member, err := set.Contains(link)
	if err != nil {
		t.Fatalf("Contains(link): %v", err)
	}
	if !member {
		t.Error("symlinked spelling should match the stored path")
	}
}

func TestSourceSetContainsErrorOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeTempDoc(t, dir, "scene.md")

	set := NewSourceSet(nil)
	set.Add(doc)

	_, err := set.Contains(filepath.Join(dir, "gone.md"))
	if err == nil {
		t.Error("expected a canonicalization error for a missing file")
	}
}

func TestSourceSetEmpty(t *testing.T) {
	set := NewSourceSet(nil)

	member, err := set.Contains("/does/not/matter.md")
	if err != nil {
		t.Fatalf("empty set must never error, got %v", err)
	}
	if member {
		t.Error("empty set reported a member")
	}

	set.Add("")
	if set.Len() != 0 {
		t.Errorf("empty path was stored, Len = %d", set.Len())
	}
}

func TestSourceSetAddFallsBackWhenCanonicalizeFails(t *testing.T) {
	set := NewSourceSet(nil)
	set.Add("/surely/missing/dir/doc.md")

	if set.Len() != 1 {
		t.Fatalf("cleaned fallback not stored, Len = %d", set.Len())
	}
}
