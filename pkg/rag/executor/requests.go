package executor

import (
	"ai-storywriting-be/pkg/llm"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/prompt"
)

// ProjectContext is the project-level material every operation may carry.
// Blank fields are simply left out of the prompt.
type ProjectContext struct {
	Title    string
	Plan     string
	Synopsis string
}

// ChapterContext narrows an operation to one chapter. PrevScenes are
// ordered oldest first.
type ChapterContext struct {
	Title      string
	Plan       string
	Synopsis   string
	PrevScenes []prompt.SceneExcerpt
}

// DirectSource is a named content block the user explicitly pulled into the
// request, e.g. a character sheet mentioned by name. Path is the workspace
// file backing it, empty for ad-hoc text.
type DirectSource struct {
	Type    string
	Name    string
	Content string
	Path    string
}

// DirectRef identifies a direct source in an operation's provenance.
type DirectRef struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// AnswerRequest asks a free-form question about a project.
type AnswerRequest struct {
	ProjectID string
	Question  string
	Project   ProjectContext
	Chapter   *ChapterContext
	Direct    []DirectSource
	Sources   *rag.SourceSet
	History   []llm.Message
}

// FreeformAnswer is the answer text plus the provenance of everything that
// shaped it.
type FreeformAnswer struct {
	Text          string
	UsedNodes     []rag.Node
	DirectSources []DirectRef
}

// DraftRequest asks for the next scene of a chapter.
type DraftRequest struct {
	ProjectID string
	Brief     string
	Guidance  string
	Project   ProjectContext
	Chapter   *ChapterContext
	Direct    []DirectSource
	Sources   *rag.SourceSet
}

// SceneDraft is one generated scene.
type SceneDraft struct {
	Title   string
	Content string
}

// SplitRequest asks to divide a chapter's text into scenes.
type SplitRequest struct {
	ProjectID    string
	ChapterTitle string
	ChapterText  string
	Guidance     string
	Project      ProjectContext
	Sources      *rag.SourceSet
}

// ProposedScene is one slice of a split chapter.
type ProposedScene struct {
	Title   string
	Content string
}

// SceneSplit is the ordered scene list proposed for a chapter.
type SceneSplit struct {
	Scenes []ProposedScene
}

// RephraseRequest asks for alternative phrasings of a selection.
// Surrounding carries the passage around the selection so suggestions keep
// the local voice.
type RephraseRequest struct {
	ProjectID   string
	Passage     string
	Surrounding string
	Guidance    string
	Count       int
	Project     ProjectContext
	Chapter     *ChapterContext
	Sources     *rag.SourceSet
}

// RephraseResult is the ordered suggestion list.
type RephraseResult struct {
	Suggestions []string
}
