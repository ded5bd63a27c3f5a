package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return w
}

func TestWorkspacePathLayout(t *testing.T) {
	w := newTestWorkspace(t)

	projectID := uuid.New()
	chapterID := uuid.New()
	sceneID := uuid.New()

	scenePath := w.ScenePath(projectID, chapterID, sceneID)
	want := filepath.Join(
		w.Root(), "projects", projectID.String(),
		"chapters", chapterID.String(),
		"scenes", sceneID.String()+".md",
	)
	if scenePath != want {
		t.Errorf("ScenePath = %q, want %q", scenePath, want)
	}

	if !strings.HasPrefix(w.ProjectPlanPath(projectID), w.ProjectDir(projectID)) {
		t.Error("project plan should live inside the project directory")
	}
	if !strings.HasSuffix(w.CharacterPath(projectID, uuid.New()), ".md") {
		t.Error("character sheets should be markdown files")
	}
}

func TestWorkspaceWriteReadRoundtrip(t *testing.T) {
	w := newTestWorkspace(t)

	projectID := uuid.New()
	path := w.ProjectSynopsisPath(projectID)

	if w.Exists(path) {
		t.Fatal("synopsis should not exist before writing")
	}

	content := "# Synopsis\n\nA soldier returns home to a city that forgot the war."
	if err := w.Write(path, content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := w.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != content {
		t.Errorf("Read = %q, want %q", got, content)
	}
	if !w.Exists(path) {
		t.Error("Exists should report written document")
	}
}

func TestWorkspaceReadMissingReturnsError(t *testing.T) {
	w := newTestWorkspace(t)

	_, err := w.Read(w.ProjectPlanPath(uuid.New()))
	if err == nil {
		t.Fatal("expected error reading missing document")
	}
}

func TestWorkspaceRemoveMissingIsNoop(t *testing.T) {
	w := newTestWorkspace(t)

	if err := w.Remove(w.NotePath(uuid.New(), uuid.New())); err != nil {
		t.Fatalf("Remove on missing document: %v", err)
	}
}

func TestWorkspaceRemoveProjectWipesTree(t *testing.T) {
	w := newTestWorkspace(t)

	projectID := uuid.New()
	chapterID := uuid.New()
	scenePath := w.ScenePath(projectID, chapterID, uuid.New())
	notePath := w.NotePath(projectID, uuid.New())

	for _, p := range []string{scenePath, notePath} {
		if err := w.Write(p, "content"); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	if err := w.RemoveProject(projectID); err != nil {
		t.Fatalf("RemoveProject: %v", err)
	}

	if w.Exists(scenePath) || w.Exists(notePath) {
		t.Error("project documents should be gone after RemoveProject")
	}
}

func TestWorkspaceRemoveChapterKeepsSiblings(t *testing.T) {
	w := newTestWorkspace(t)

	projectID := uuid.New()
	removed := uuid.New()
	kept := uuid.New()

	removedScene := w.ScenePath(projectID, removed, uuid.New())
	keptScene := w.ScenePath(projectID, kept, uuid.New())

	for _, p := range []string{removedScene, keptScene} {
		if err := w.Write(p, "scene text"); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	if err := w.RemoveChapter(projectID, removed); err != nil {
		t.Fatalf("RemoveChapter: %v", err)
	}

	if w.Exists(removedScene) {
		t.Error("removed chapter's scene should be gone")
	}
	if !w.Exists(keptScene) {
		t.Error("sibling chapter's scene should survive")
	}
}
