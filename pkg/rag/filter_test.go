package rag

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFilterBySourcesDropsIncludedPaths(t *testing.T) {
	dir := t.TempDir()
	included := writeTempDoc(t, dir, "chapter-plan.md")
	other := writeTempDoc(t, dir, "note.md")

	set := NewSourceSet(nil)
	set.Add(included)

	nodes := []Node{
		{ID: "dup", Text: "from the plan", Meta: NodeMeta{SourcePath: included}},
		{ID: "keep", Text: "from a note", Meta: NodeMeta{SourcePath: other}},
	}

	got := FilterBySources(nodes, set, discardLogger())

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != "keep" {
		t.Errorf("survivor = %q, want %q", got[0].ID, "keep")
	}
}

func TestFilterBySourcesMatchesThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	doc := writeTempDoc(t, dir, "scene.md")
	link := filepath.Join(dir, "alias.md")
	if err := os.Symlink(doc, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	set := NewSourceSet(nil)
	set.Add(doc)

	nodes := []Node{{ID: "dup", Text: "x", Meta: NodeMeta{SourcePath: link}}}
	got := FilterBySources(nodes, set, discardLogger())

	if len(got) != 0 {
		t.Errorf("symlinked duplicate survived the filter")
	}
}

func TestFilterBySourcesKeepsNodesWithoutPath(t *testing.T) {
	dir := t.TempDir()
	included := writeTempDoc(t, dir, "scene.md")

	set := NewSourceSet(nil)
	set.Add(included)

	nodes := []Node{{ID: "pathless", Text: "x"}}
	got := FilterBySources(nodes, set, discardLogger())

	if len(got) != 1 || got[0].ID != "pathless" {
		t.Errorf("node without a source path must always survive, got %v", got)
	}
}

func TestFilterBySourcesKeepsNodeOnCanonicalizeFailure(t *testing.T) {
	dir := t.TempDir()
	included := writeTempDoc(t, dir, "scene.md")

	set := NewSourceSet(nil)
	set.Add(included)

	nodes := []Node{{ID: "ghost", Text: "x", Meta: NodeMeta{SourcePath: filepath.Join(dir, "deleted.md")}}}
	got := FilterBySources(nodes, set, discardLogger())

	if len(got) != 1 || got[0].ID != "ghost" {
		t.Errorf("node with an unresolvable path must survive, got %v", got)
	}
}

func TestFilterBySourcesNilOrEmptySet(t *testing.T) {
	nodes := []Node{
		{ID: "a", Text: "x", Meta: NodeMeta{SourcePath: "/anything.md"}},
		{ID: "b", Text: "y"},
	}

	for _, set := range []*SourceSet{nil, NewSourceSet(nil)} {
		got := FilterBySources(nodes, set, discardLogger())
		if len(got) != len(nodes) {
			t.Fatalf("len = %d, want %d", len(got), len(nodes))
		}
	}
}
