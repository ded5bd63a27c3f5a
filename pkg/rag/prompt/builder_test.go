package prompt

import (
	"strings"
	"testing"

	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/parse"
)

func fullInput() Input {
	return Input{
		Task:            TaskAnswer,
		Request:         "Who forged the iron crown?",
		ProjectTitle:    "The Hollow Crown",
		ProjectPlan:     "Three act structure about a usurped throne.",
		ProjectSynopsis: "Mara flees the capital after the coup.",
		ChapterTitle:    "Chapter 3: The Ford",
		ChapterPlan:     "Mara crosses the river and meets the smith.",
		ChapterSynopsis: "The pursuit tightens.",
		PrevScenes: []SceneExcerpt{
			{Number: 7, Title: "Night Crossing", Content: "The water was black and fast."},
		},
		Direct: []DirectContent{
			{Type: "Character Sheet", Name: "Mara Vane", Content: "Exiled heir, left-handed."},
		},
		Nodes: []rag.Node{
			{ID: "n1", Text: "The crown was forged in Dunhollow.", Score: 0.91, Meta: rag.NodeMeta{
				DocType: rag.DocTypeNote, DocTitle: "Crown lore",
			}},
		},
	}
}

func TestBuildSectionOrder(t *testing.T) {
	out := NewBuilder(fullInput(), DefaultLimits()).Build()

	markers := []string{
		"<instructions>",
		"<project_context>",
		"<chapter_context>",
		"<provided_content>",
		"<retrieved_context>",
		"<task>",
	}
	last := -1
	for _, m := range markers {
		at := strings.Index(out, m)
		if at < 0 {
			t.Fatalf("section %s missing from prompt:\n%s", m, out)
		}
		if at < last {
			t.Errorf("section %s appears out of order", m)
		}
		last = at
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	input := Input{Task: TaskAnswer, Request: "What color is the crown?"}
	out := NewBuilder(input, DefaultLimits()).Build()

	for _, absent := range []string{"<project_context>", "<chapter_context>", "<provided_content>"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty section %s was rendered", absent)
		}
	}
	if !strings.Contains(out, "<instructions>") || !strings.Contains(out, "<task>") {
		t.Error("instruction and task sections must always render")
	}
	if !strings.Contains(out, NoRetrievedContext) {
		t.Error("missing retrieval fallback sentence")
	}
}

func TestBuildCapsProjectFieldsOnly(t *testing.T) {
	longText := strings.Repeat("a", 50)
	input := Input{
		Task:        TaskAnswer,
		Request:     "q",
		ProjectPlan: longText,
		ChapterPlan: longText,
	}
	out := NewBuilder(input, Limits{MaxFieldChars: 10, NodeCharBudget: 10}).Build()

	if !strings.Contains(out, strings.Repeat("a", 10)+"...") {
		t.Error("project plan was not truncated with a trailing marker")
	}
	if strings.Contains(out, strings.Repeat("a", 11)+"...") {
		t.Error("truncation cut at the wrong length")
	}
	// The chapter section must still carry the whole text.
	if !strings.Contains(out, "Chapter plan:\n"+longText) {
		t.Error("chapter plan must never be truncated")
	}
}

func TestBuildPrevSceneExcerptCapped(t *testing.T) {
	input := Input{
		Task:    TaskDraftScene,
		Request: "brief",
		PrevScenes: []SceneExcerpt{
			{Number: 2, Title: "Long One", Content: strings.Repeat("b", 40)},
		},
	}
	out := NewBuilder(input, Limits{MaxFieldChars: 8, NodeCharBudget: 8}).Build()

	if !strings.Contains(out, `Previous scene 2, "Long One":`) {
		t.Fatalf("excerpt header missing:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("b", 8)+"...") {
		t.Error("prior-scene excerpt was not capped")
	}
}

func TestBuildDirectContentWrappers(t *testing.T) {
	out := NewBuilder(fullInput(), DefaultLimits()).Build()

	if !strings.Contains(out, `--- Start Character Sheet "Mara Vane" ---`) {
		t.Error("start wrapper missing or malformed")
	}
	if !strings.Contains(out, `--- End Character Sheet "Mara Vane" ---`) {
		t.Error("end wrapper missing or malformed")
	}
	start := strings.Index(out, "--- Start")
	end := strings.Index(out, "--- End")
	body := strings.Index(out, "Exiled heir, left-handed.")
	if !(start < body && body < end) {
		t.Error("content not enclosed by its wrappers")
	}
}

func TestBuildSkipsEmptyDirectItems(t *testing.T) {
	input := Input{
		Task:    TaskAnswer,
		Request: "q",
		Direct: []DirectContent{
			{Type: "Note", Name: "Empty One", Content: "   "},
			{Type: "Note", Name: "Full One", Content: "something"},
		},
	}
	out := NewBuilder(input, DefaultLimits()).Build()

	if strings.Contains(out, "Empty One") {
		t.Error("empty direct item was rendered")
	}
	if !strings.Contains(out, `--- Start Note "Full One" ---`) {
		t.Error("non-empty direct item missing")
	}

	// All items empty: the whole section disappears.
	input.Direct = []DirectContent{{Type: "Note", Name: "Empty One", Content: ""}}
	out = NewBuilder(input, DefaultLimits()).Build()
	if strings.Contains(out, "<provided_content>") {
		t.Error("section header rendered with no surviving items")
	}
}

func TestBuildSurroundingPassage(t *testing.T) {
	input := Input{
		Task:        TaskRephrase,
		Request:     "the sky wept",
		Surrounding: "He looked up. The sky wept. The road went on.",
	}
	out := NewBuilder(input, DefaultLimits()).Build()

	if !strings.Contains(out, "Surrounding passage:\nHe looked up.") {
		t.Error("surrounding passage missing from chapter context")
	}
	if !strings.Contains(out, "<chapter_context>") {
		t.Error("surrounding passage alone should still open the scope section")
	}
}

func TestBuildSourceLabels(t *testing.T) {
	tests := []struct {
		name string
		node rag.Node
		want string
	}{
		{
			name: "without character",
			node: rag.Node{Text: "x", Meta: rag.NodeMeta{DocType: rag.DocTypeNote, DocTitle: "Crown lore"}},
			want: `Source (Note: "Crown lore"):`,
		},
		{
			name: "with character",
			node: rag.Node{Text: "x", Meta: rag.NodeMeta{DocType: rag.DocTypeScene, DocTitle: "The Ford", CharacterName: "Mara"}},
			want: `Source (Scene: "The Ford", Character: Mara):`,
		},
		{
			name: "untitled fallback",
			node: rag.Node{Text: "x", Meta: rag.NodeMeta{DocType: rag.DocTypeCharacter}},
			want: `Source (Character Sheet: "Untitled"):`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := Input{Task: TaskAnswer, Request: "q", Nodes: []rag.Node{tt.node}}
			out := NewBuilder(input, DefaultLimits()).Build()
			if !strings.Contains(out, tt.want) {
				t.Errorf("label %q missing from:\n%s", tt.want, out)
			}
		})
	}
}

func TestBuildSnippetCapped(t *testing.T) {
	input := Input{
		Task:    TaskAnswer,
		Request: "q",
		Nodes: []rag.Node{
			{Text: strings.Repeat("c", 30), Meta: rag.NodeMeta{DocType: rag.DocTypeNote, DocTitle: "n"}},
		},
	}
	out := NewBuilder(input, Limits{MaxFieldChars: 100, NodeCharBudget: 5}).Build()

	if !strings.Contains(out, strings.Repeat("c", 5)+"...") {
		t.Error("retrieved snippet was not capped to the node budget")
	}
}

func TestBuildTaskContracts(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		wants []string
	}{
		{
			name:  "answer",
			input: Input{Task: TaskAnswer, Request: "why"},
			wants: []string{"Question: why", "plain prose"},
		},
		{
			name:  "draft scene",
			input: Input{Task: TaskDraftScene, Request: "storm hits"},
			wants: []string{"Scene brief: storm hits", "## <Scene Title>"},
		},
		{
			name:  "split chapter",
			input: Input{Task: TaskSplitChapter},
			wants: []string{parse.SceneBlockStart, parse.SceneTitleKey, parse.SceneContentKey, parse.SceneBlockEnd},
		},
		{
			name:  "rephrase uses configured count",
			input: Input{Task: TaskRephrase, Request: "the sky wept", SuggestionCount: 5},
			wants: []string{"Passage to rephrase:", "exactly 5 alternative phrasings"},
		},
		{
			name:  "rephrase default count",
			input: Input{Task: TaskRephrase, Request: "the sky wept"},
			wants: []string{"exactly 3 alternative phrasings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewBuilder(tt.input, DefaultLimits()).Build()
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("contract %q missing from:\n%s", want, out)
				}
			}
		})
	}
}

func TestBuildPriorityRuleAlwaysPresent(t *testing.T) {
	for _, task := range []Task{TaskAnswer, TaskDraftScene, TaskSplitChapter, TaskRephrase} {
		out := NewBuilder(Input{Task: task, Request: "x"}, DefaultLimits()).Build()
		if !strings.Contains(out, "trust the provided content") {
			t.Errorf("task %d: priority rule missing", task)
		}
	}
}

func TestBuildGuidanceRendered(t *testing.T) {
	input := Input{Task: TaskDraftScene, Request: "brief", Guidance: "keep it under 300 words"}
	out := NewBuilder(input, DefaultLimits()).Build()

	if !strings.Contains(out, "Additional guidance: keep it under 300 words") {
		t.Error("guidance line missing")
	}
}
