package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is the on-disk home of every manuscript document. Each project
// owns a directory of markdown files; the database holds metadata and
// embeddings only, so these files are the source of truth for content.
//
// Layout:
//
//	<root>/projects/<project-id>/plan.md
//	<root>/projects/<project-id>/synopsis.md
//	<root>/projects/<project-id>/chapters/<chapter-id>/plan.md
//	<root>/projects/<project-id>/chapters/<chapter-id>/synopsis.md
//	<root>/projects/<project-id>/chapters/<chapter-id>/scenes/<scene-id>.md
//	<root>/projects/<project-id>/characters/<character-id>.md
//	<root>/projects/<project-id>/notes/<note-id>.md
type Workspace struct {
	root string
}

func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Workspace{root: abs}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// Path builders

func (w *Workspace) ProjectDir(projectID uuid.UUID) string {
	return filepath.Join(w.root, "projects", projectID.String())
}

func (w *Workspace) ProjectPlanPath(projectID uuid.UUID) string {
	return filepath.Join(w.ProjectDir(projectID), "plan.md")
}

func (w *Workspace) ProjectSynopsisPath(projectID uuid.UUID) string {
	return filepath.Join(w.ProjectDir(projectID), "synopsis.md")
}

func (w *Workspace) ChapterDir(projectID, chapterID uuid.UUID) string {
	return filepath.Join(w.ProjectDir(projectID), "chapters", chapterID.String())
}

func (w *Workspace) ChapterPlanPath(projectID, chapterID uuid.UUID) string {
	return filepath.Join(w.ChapterDir(projectID, chapterID), "plan.md")
}

func (w *Workspace) ChapterSynopsisPath(projectID, chapterID uuid.UUID) string {
	return filepath.Join(w.ChapterDir(projectID, chapterID), "synopsis.md")
}

func (w *Workspace) ScenePath(projectID, chapterID, sceneID uuid.UUID) string {
	return filepath.Join(w.ChapterDir(projectID, chapterID), "scenes", sceneID.String()+".md")
}

func (w *Workspace) CharacterPath(projectID, characterID uuid.UUID) string {
	return filepath.Join(w.ProjectDir(projectID), "characters", characterID.String()+".md")
}

func (w *Workspace) NotePath(projectID, noteID uuid.UUID) string {
	return filepath.Join(w.ProjectDir(projectID), "notes", noteID.String()+".md")
}

// IO

func (w *Workspace) Write(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (w *Workspace) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (w *Workspace) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a single document. Removing a document that never existed
// is not an error.
func (w *Workspace) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

func (w *Workspace) RemoveProject(projectID uuid.UUID) error {
	return os.RemoveAll(w.ProjectDir(projectID))
}

func (w *Workspace) RemoveChapter(projectID, chapterID uuid.UUID) error {
	return os.RemoveAll(w.ChapterDir(projectID, chapterID))
}
