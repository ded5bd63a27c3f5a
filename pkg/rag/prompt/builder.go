package prompt

import (
	"fmt"
	"strings"

	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/parse"
)

// Task selects the instruction block and the output contract the parsers
// rely on.
type Task int

const (
	TaskAnswer Task = iota
	TaskDraftScene
	TaskSplitChapter
	TaskRephrase
)

// NoRetrievedContext is rendered when retrieval produced nothing usable so
// the model never sees a dangling empty section.
const NoRetrievedContext = "No additional context was retrieved for this request."

// Limits caps how much of each kind of material enters the prompt. Project
// fields and prior-scene excerpts use MaxFieldChars, each retrieved snippet
// uses NodeCharBudget. Chapter-scope fields are never cut.
type Limits struct {
	MaxFieldChars  int
	NodeCharBudget int
}

func DefaultLimits() Limits {
	return Limits{
		MaxFieldChars:  1200,
		NodeCharBudget: 900,
	}
}

// SceneExcerpt is a neighboring scene included for continuity.
type SceneExcerpt struct {
	Number  int
	Title   string
	Content string
}

// DirectContent is material the user explicitly pointed at for this request.
// It outranks anything retrieval finds.
type DirectContent struct {
	Type    string // "Scene", "Character Sheet", "Note", "Chapter"
	Name    string
	Content string
}

// Input carries everything the builder may render. Blank fields drop their
// section entirely.
type Input struct {
	Task     Task
	Request  string // question, scene brief, or passage depending on the task
	Guidance string // optional user steering, e.g. "keep it under 500 words"

	ProjectTitle    string
	ProjectPlan     string
	ProjectSynopsis string

	ChapterTitle    string
	ChapterPlan     string
	ChapterSynopsis string
	PrevScenes      []SceneExcerpt
	Surrounding     string // passage around a rephrase selection

	Direct []DirectContent
	Nodes  []rag.Node

	SuggestionCount int // rephrase only
}

// Builder renders the full prompt for one generation call. It does no I/O;
// callers resolve all material before building.
type Builder struct {
	input  Input
	limits Limits
}

func NewBuilder(input Input, limits Limits) *Builder {
	if limits.MaxFieldChars <= 0 {
		limits.MaxFieldChars = DefaultLimits().MaxFieldChars
	}
	if limits.NodeCharBudget <= 0 {
		limits.NodeCharBudget = DefaultLimits().NodeCharBudget
	}
	return &Builder{input: input, limits: limits}
}

// Build assembles the sections in their fixed order.
func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeInstruction(&prompt)
	b.writeProjectContext(&prompt)
	b.writeChapterContext(&prompt)
	b.writeProvidedContent(&prompt)
	b.writeRetrievedContext(&prompt)
	b.writeTask(&prompt)

	return prompt.String()
}

func (b *Builder) writeInstruction(prompt *strings.Builder) {
	prompt.WriteString("<instructions>\n")
	switch b.input.Task {
	case TaskDraftScene:
		prompt.WriteString("You are a fiction co-writer drafting the next scene of the user's story.\n")
		prompt.WriteString("Stay inside the established world, voice and continuity of the project.\n")
	case TaskSplitChapter:
		prompt.WriteString("You are a story editor dividing a chapter into self-contained scenes.\n")
		prompt.WriteString("Preserve the author's text; your job is segmentation and titling, not rewriting.\n")
	case TaskRephrase:
		prompt.WriteString("You are a prose editor offering alternative phrasings of a passage.\n")
		prompt.WriteString("Keep the author's meaning and match the voice of the surrounding story.\n")
	default:
		prompt.WriteString("You are a writing assistant answering a question about the user's story project.\n")
		prompt.WriteString("Ground every statement in the material below; if it is not covered, say so honestly.\n")
	}
	prompt.WriteString("Material inside provided_content was chosen by the user for this request. ")
	prompt.WriteString("When retrieved snippets disagree with it, trust the provided content.\n")
	prompt.WriteString("</instructions>\n\n")
}

func (b *Builder) writeProjectContext(prompt *strings.Builder) {
	plan := strings.TrimSpace(b.input.ProjectPlan)
	synopsis := strings.TrimSpace(b.input.ProjectSynopsis)
	if plan == "" && synopsis == "" {
		return
	}

	prompt.WriteString("<project_context>\n")
	if title := strings.TrimSpace(b.input.ProjectTitle); title != "" {
		fmt.Fprintf(prompt, "Project: %s\n", title)
	}
	if plan != "" {
		prompt.WriteString("Story plan:\n")
		prompt.WriteString(truncate(plan, b.limits.MaxFieldChars))
		prompt.WriteString("\n")
	}
	if synopsis != "" {
		prompt.WriteString("Synopsis so far:\n")
		prompt.WriteString(truncate(synopsis, b.limits.MaxFieldChars))
		prompt.WriteString("\n")
	}
	prompt.WriteString("</project_context>\n\n")
}

func (b *Builder) writeChapterContext(prompt *strings.Builder) {
	plan := strings.TrimSpace(b.input.ChapterPlan)
	synopsis := strings.TrimSpace(b.input.ChapterSynopsis)
	surrounding := strings.TrimSpace(b.input.Surrounding)
	if plan == "" && synopsis == "" && surrounding == "" && len(b.input.PrevScenes) == 0 {
		return
	}

	prompt.WriteString("<chapter_context>\n")
	if title := strings.TrimSpace(b.input.ChapterTitle); title != "" {
		fmt.Fprintf(prompt, "Chapter: %s\n", title)
	}
	// Chapter-scope fields carry the immediate working context and are
	// rendered whole.
	if plan != "" {
		prompt.WriteString("Chapter plan:\n")
		prompt.WriteString(plan)
		prompt.WriteString("\n")
	}
	if synopsis != "" {
		prompt.WriteString("Chapter synopsis:\n")
		prompt.WriteString(synopsis)
		prompt.WriteString("\n")
	}
	for _, scene := range b.input.PrevScenes {
		fmt.Fprintf(prompt, "Previous scene %d, %q:\n", scene.Number, scene.Title)
		prompt.WriteString(truncate(strings.TrimSpace(scene.Content), b.limits.MaxFieldChars))
		prompt.WriteString("\n")
	}
	if surrounding != "" {
		prompt.WriteString("Surrounding passage:\n")
		prompt.WriteString(surrounding)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</chapter_context>\n\n")
}

func (b *Builder) writeProvidedContent(prompt *strings.Builder) {
	// Items without content are dropped, and the section header only
	// appears when something survives.
	kept := make([]DirectContent, 0, len(b.input.Direct))
	for _, dc := range b.input.Direct {
		if strings.TrimSpace(dc.Content) != "" {
			kept = append(kept, dc)
		}
	}
	if len(kept) == 0 {
		return
	}

	prompt.WriteString("<provided_content>\n")
	for _, dc := range kept {
		fmt.Fprintf(prompt, "--- Start %s %q ---\n", dc.Type, dc.Name)
		prompt.WriteString(strings.TrimSpace(dc.Content))
		prompt.WriteString("\n")
		fmt.Fprintf(prompt, "--- End %s %q ---\n", dc.Type, dc.Name)
	}
	prompt.WriteString("</provided_content>\n\n")
}

func (b *Builder) writeRetrievedContext(prompt *strings.Builder) {
	prompt.WriteString("<retrieved_context>\n")
	if len(b.input.Nodes) == 0 {
		prompt.WriteString(NoRetrievedContext)
		prompt.WriteString("\n")
	}
	for _, n := range b.input.Nodes {
		prompt.WriteString(sourceLabel(n))
		prompt.WriteString("\n")
		prompt.WriteString(truncate(strings.TrimSpace(n.Text), b.limits.NodeCharBudget))
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</retrieved_context>\n\n")
}

func (b *Builder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	switch b.input.Task {
	case TaskDraftScene:
		if req := strings.TrimSpace(b.input.Request); req != "" {
			fmt.Fprintf(prompt, "Scene brief: %s\n", req)
		}
		b.writeGuidance(prompt)
		prompt.WriteString("Write the scene now. Format your response exactly as:\n")
		prompt.WriteString("## <Scene Title>\n")
		prompt.WriteString("<scene text>\n")
		prompt.WriteString("The first line must be the ## heading; everything after it is the scene itself.\n")
		prompt.WriteString("Write the title in the same language as the story.\n")
	case TaskSplitChapter:
		b.writeGuidance(prompt)
		prompt.WriteString("Split the provided chapter into scenes. Return each scene as its own block, exactly:\n")
		prompt.WriteString(parse.SceneBlockStart + "\n")
		prompt.WriteString(parse.SceneTitleKey + " <scene title>\n")
		prompt.WriteString(parse.SceneContentKey + "\n")
		prompt.WriteString("<scene text>\n")
		prompt.WriteString(parse.SceneBlockEnd + "\n")
		prompt.WriteString("Write nothing outside the blocks. Scene titles must be in the same language as the chapter.\n")
	case TaskRephrase:
		count := b.input.SuggestionCount
		if count <= 0 {
			count = 3
		}
		if req := strings.TrimSpace(b.input.Request); req != "" {
			prompt.WriteString("Passage to rephrase:\n")
			prompt.WriteString(req)
			prompt.WriteString("\n")
		}
		b.writeGuidance(prompt)
		fmt.Fprintf(prompt, "Offer exactly %d alternative phrasings as a numbered list, one per line:\n", count)
		prompt.WriteString("1. <first alternative>\n")
		prompt.WriteString("2. <second alternative>\n")
		prompt.WriteString("Write nothing but the numbered list.\n")
	default:
		if req := strings.TrimSpace(b.input.Request); req != "" {
			fmt.Fprintf(prompt, "Question: %s\n", req)
		}
		b.writeGuidance(prompt)
		prompt.WriteString("Answer directly as plain prose. No headings, no preamble.\n")
	}
	prompt.WriteString("</task>\n")
}

func (b *Builder) writeGuidance(prompt *strings.Builder) {
	if g := strings.TrimSpace(b.input.Guidance); g != "" {
		fmt.Fprintf(prompt, "Additional guidance: %s\n", g)
	}
}

// sourceLabel renders the provenance line shown above each snippet, e.g.
// Source (Scene: "The Long Night", Character: Mara):
func sourceLabel(n rag.Node) string {
	title := n.Meta.DocTitle
	if title == "" {
		title = "Untitled"
	}
	if n.Meta.CharacterName != "" {
		return fmt.Sprintf("Source (%s: %q, Character: %s):", n.Meta.DocType.Label(), title, n.Meta.CharacterName)
	}
	return fmt.Sprintf("Source (%s: %q):", n.Meta.DocType.Label(), title)
}

// truncate cuts prose at a rune boundary and marks the cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
