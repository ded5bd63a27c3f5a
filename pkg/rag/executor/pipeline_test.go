package executor

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-storywriting-be/pkg/llm"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/parse"
	"ai-storywriting-be/pkg/rag/prompt"
)

type fakeRetriever struct {
	nodes     []rag.Node
	err       error
	calls     int
	lastQuery string
	lastTopK  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, projectID, query string, topK int) ([]rag.Node, error) {
	f.calls++
	f.lastQuery = query
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.nodes, nil
}

type fakeCompleter struct {
	reply      string
	err        error
	generates  int
	chats      int
	lastPrompt string
	lastMsgs   []llm.Message
	lastOpts   llm.Options
}

func (f *fakeCompleter) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.chats++
	f.lastMsgs = history
	if len(history) > 0 {
		f.lastPrompt = history[len(history)-1].Content
	}
	f.record(opts)
	return f.reply, f.err
}

func (f *fakeCompleter) Generate(ctx context.Context, promptText string, opts ...llm.Option) (string, error) {
	f.generates++
	f.lastPrompt = promptText
	f.record(opts)
	return f.reply, f.err
}

func (f *fakeCompleter) record(opts []llm.Option) {
	options := llm.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	f.lastOpts = options
}

var _ llm.LLMProvider = &fakeCompleter{}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestPipeline(r *fakeRetriever, c *fakeCompleter, mutate func(*Config)) *Pipeline {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPipeline(r, c, cfg, discardLogger())
}

func TestAnswerQueryDedupesRetrievedNodes(t *testing.T) {
	retriever := &fakeRetriever{nodes: []rag.Node{
		{ID: "a", Text: "The king is dead.", Score: 0.61, Meta: rag.NodeMeta{SourcePath: "/p/plan.md"}},
		{ID: "b", Text: "The king is dead.", Score: 0.87, Meta: rag.NodeMeta{SourcePath: "/p/plan.md"}},
		{ID: "c", Text: "Long live the queen.", Score: 0.52, Meta: rag.NodeMeta{SourcePath: "/p/notes.md"}},
	}}
	completer := &fakeCompleter{reply: "He died in chapter two."}
	p := newTestPipeline(retriever, completer, nil)

	answer, err := p.AnswerQuery(context.Background(), AnswerRequest{
		ProjectID: "p1",
		Question:  "When does the king die?",
		Direct: []DirectSource{
			{Type: "Character Sheet", Name: "The King", Content: "An old man."},
			{Type: "Note", Name: "Empty", Content: "   "},
		},
	})
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	if answer.Text != "He died in chapter two." {
		t.Errorf("Text = %q, want completion text", answer.Text)
	}
	if len(answer.UsedNodes) != 2 {
		t.Fatalf("UsedNodes count = %d, want 2 after dedupe", len(answer.UsedNodes))
	}
	if answer.UsedNodes[0].Score != 0.87 {
		t.Errorf("surviving duplicate score = %v, want 0.87", answer.UsedNodes[0].Score)
	}
	if len(answer.DirectSources) != 1 || answer.DirectSources[0].Name != "The King" {
		t.Errorf("DirectSources = %v, want only the non-empty item", answer.DirectSources)
	}
	if retriever.lastTopK != DefaultConfig().QueryTopK {
		t.Errorf("topK = %d, want %d", retriever.lastTopK, DefaultConfig().QueryTopK)
	}
}

func TestAnswerQueryRetrievalFailureAbortsBeforeCompletion(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("pgvector down")}
	completer := &fakeCompleter{reply: "should never be used"}
	p := newTestPipeline(retriever, completer, nil)

	_, err := p.AnswerQuery(context.Background(), AnswerRequest{ProjectID: "p1", Question: "anything"})
	if !errors.Is(err, ErrRetrieval) {
		t.Fatalf("error = %v, want ErrRetrieval", err)
	}
	if completer.generates != 0 || completer.chats != 0 {
		t.Errorf("completer was called %d/%d times, want none", completer.generates, completer.chats)
	}
}

func TestAnswerQueryMapsRateLimit(t *testing.T) {
	retriever := &fakeRetriever{}
	completer := &fakeCompleter{err: &llm.RateLimitError{Provider: "gemini", Err: errors.New("quota")}}
	p := newTestPipeline(retriever, completer, nil)

	_, err := p.AnswerQuery(context.Background(), AnswerRequest{ProjectID: "p1", Question: "anything"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestBlankCompletionIsEmptyGenerationForEveryOperation(t *testing.T) {
	tests := []struct {
		name string
		run  func(p *Pipeline) error
	}{
		{"answer", func(p *Pipeline) error {
			_, err := p.AnswerQuery(context.Background(), AnswerRequest{Question: "q"})
			return err
		}},
		{"draft", func(p *Pipeline) error {
			_, err := p.DraftScene(context.Background(), DraftRequest{Brief: "a duel"})
			return err
		}},
		{"split", func(p *Pipeline) error {
			_, err := p.SplitChapter(context.Background(), SplitRequest{ChapterText: "Some chapter text."})
			return err
		}},
		{"rephrase", func(p *Pipeline) error {
			_, err := p.Rephrase(context.Background(), RephraseRequest{Passage: "he said"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&fakeRetriever{}, &fakeCompleter{reply: "  \n\t "}, nil)
			if err := tt.run(p); !errors.Is(err, ErrEmptyGeneration) {
				t.Errorf("error = %v, want ErrEmptyGeneration", err)
			}
		})
	}
}

func TestDraftSceneParsesHeadingAndUsesDraftTemperature(t *testing.T) {
	completer := &fakeCompleter{reply: "## The Night Market\nLanterns swayed over the stalls."}
	p := newTestPipeline(&fakeRetriever{}, completer, nil)

	draft, err := p.DraftScene(context.Background(), DraftRequest{ProjectID: "p1", Brief: "visit the market"})
	if err != nil {
		t.Fatalf("DraftScene() error = %v", err)
	}
	if draft.Title != "The Night Market" {
		t.Errorf("Title = %q, want %q", draft.Title, "The Night Market")
	}
	if draft.Content != "Lanterns swayed over the stalls." {
		t.Errorf("Content = %q", draft.Content)
	}
	if completer.lastOpts.Temperature != DefaultConfig().DraftTemperature {
		t.Errorf("temperature = %v, want %v", completer.lastOpts.Temperature, DefaultConfig().DraftTemperature)
	}
}

func TestSplitChapterEmptyTextSkipsRetrievalAndCompletion(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		retriever := &fakeRetriever{}
		completer := &fakeCompleter{reply: "unused"}
		p := newTestPipeline(retriever, completer, nil)

		split, err := p.SplitChapter(context.Background(), SplitRequest{ProjectID: "p1", ChapterText: text})
		if err != nil {
			t.Fatalf("SplitChapter(%q) error = %v", text, err)
		}
		if len(split.Scenes) != 0 {
			t.Errorf("Scenes = %v, want empty", split.Scenes)
		}
		if retriever.calls != 0 {
			t.Errorf("retriever called %d times, want 0", retriever.calls)
		}
		if completer.generates != 0 || completer.chats != 0 {
			t.Errorf("completer called %d/%d times, want none", completer.generates, completer.chats)
		}
	}
}

func TestSplitChapterParsesBlocksAndWrapsChapterText(t *testing.T) {
	reply := parse.SceneBlockStart + "\n" +
		parse.SceneTitleKey + " Dawn Raid\n" +
		parse.SceneContentKey + "\nThe gates fell before sunrise.\n" +
		parse.SceneBlockEnd + "\n" +
		parse.SceneBlockStart + "\n" +
		parse.SceneTitleKey + " Aftermath\n" +
		parse.SceneContentKey + "\nSmoke hung over the square.\n" +
		parse.SceneBlockEnd + "\n"
	completer := &fakeCompleter{reply: reply}
	p := newTestPipeline(&fakeRetriever{}, completer, nil)

	split, err := p.SplitChapter(context.Background(), SplitRequest{
		ProjectID:    "p1",
		ChapterTitle: "The Siege",
		ChapterText:  "The gates fell before sunrise. Smoke hung over the square.",
	})
	if err != nil {
		t.Fatalf("SplitChapter() error = %v", err)
	}
	if len(split.Scenes) != 2 {
		t.Fatalf("Scenes count = %d, want 2", len(split.Scenes))
	}
	if split.Scenes[0].Title != "Dawn Raid" || split.Scenes[1].Title != "Aftermath" {
		t.Errorf("titles = %q, %q", split.Scenes[0].Title, split.Scenes[1].Title)
	}
	if !strings.Contains(completer.lastPrompt, `--- Start Chapter "The Siege" ---`) {
		t.Errorf("prompt missing chapter wrapper:\n%s", completer.lastPrompt)
	}
	if !strings.Contains(completer.lastPrompt, "The gates fell before sunrise.") {
		t.Errorf("prompt missing chapter text")
	}
}

func TestSplitChapterUntitledFallbackAndQueryHead(t *testing.T) {
	retriever := &fakeRetriever{}
	completer := &fakeCompleter{reply: "no blocks here"}
	p := newTestPipeline(retriever, completer, nil)

	longText := strings.Repeat("a", splitQueryRunes+500)
	if _, err := p.SplitChapter(context.Background(), SplitRequest{ProjectID: "p1", ChapterText: longText}); err != nil {
		t.Fatalf("SplitChapter() error = %v", err)
	}
	if got := len([]rune(retriever.lastQuery)); got != splitQueryRunes {
		t.Errorf("retrieval query length = %d runes, want %d", got, splitQueryRunes)
	}
	if !strings.Contains(completer.lastPrompt, `--- Start Chapter "Untitled Chapter" ---`) {
		t.Errorf("prompt missing untitled fallback wrapper")
	}
}

func TestRephraseCapsSuggestionsAtRequestedCount(t *testing.T) {
	completer := &fakeCompleter{reply: "1. one\n2. two\n3. three\n4. four\n5. five"}
	p := newTestPipeline(&fakeRetriever{}, completer, nil)

	result, err := p.Rephrase(context.Background(), RephraseRequest{ProjectID: "p1", Passage: "he walked away", Count: 3})
	if err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("Suggestions count = %d, want 3", len(result.Suggestions))
	}
	if result.Suggestions[2] != "three" {
		t.Errorf("Suggestions[2] = %q, want %q", result.Suggestions[2], "three")
	}
}

func TestRephraseFallsBackToRawCompletion(t *testing.T) {
	completer := &fakeCompleter{reply: "He strode off without a word."}
	p := newTestPipeline(&fakeRetriever{}, completer, nil)

	result, err := p.Rephrase(context.Background(), RephraseRequest{ProjectID: "p1", Passage: "he walked away"})
	if err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "He strode off without a word." {
		t.Errorf("Suggestions = %v, want the raw completion", result.Suggestions)
	}
}

func TestAnswerQueryWithHistoryUsesChat(t *testing.T) {
	completer := &fakeCompleter{reply: "As discussed, the heir survives."}
	p := newTestPipeline(&fakeRetriever{}, completer, nil)

	history := []llm.Message{
		{Role: "user", Content: "Who is the heir?"},
		{Role: "assistant", Content: "Princess Mara."},
	}
	_, err := p.AnswerQuery(context.Background(), AnswerRequest{ProjectID: "p1", Question: "Does she survive?", History: history})
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}
	if completer.chats != 1 || completer.generates != 0 {
		t.Fatalf("chats/generates = %d/%d, want 1/0", completer.chats, completer.generates)
	}
	if len(completer.lastMsgs) != 3 {
		t.Fatalf("message count = %d, want history plus prompt", len(completer.lastMsgs))
	}
	last := completer.lastMsgs[2]
	if last.Role != "user" || !strings.Contains(last.Content, "<task>") {
		t.Errorf("final message = {%s, %q...}, want assembled prompt as user turn", last.Role, snippet(last.Content, 40))
	}
}

func TestGatherSkipsRetrievalWhenDisabled(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		req    AnswerRequest
	}{
		{"zero topK", func(c *Config) { c.QueryTopK = 0 }, AnswerRequest{Question: "who?"}},
		{"blank question", nil, AnswerRequest{Question: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retriever := &fakeRetriever{}
			completer := &fakeCompleter{reply: "still answers"}
			p := newTestPipeline(retriever, completer, tt.mutate)

			answer, err := p.AnswerQuery(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("AnswerQuery() error = %v", err)
			}
			if retriever.calls != 0 {
				t.Errorf("retriever called %d times, want 0", retriever.calls)
			}
			if len(answer.UsedNodes) != 0 {
				t.Errorf("UsedNodes = %v, want none", answer.UsedNodes)
			}
			if !strings.Contains(completer.lastPrompt, prompt.NoRetrievedContext) {
				t.Errorf("prompt missing the no-context fallback sentence")
			}
		})
	}
}

func TestApplyChapterKeepsMostRecentScenes(t *testing.T) {
	completer := &fakeCompleter{reply: "drafted"}
	p := newTestPipeline(&fakeRetriever{}, completer, func(c *Config) { c.PrevSceneCount = 2 })

	chapter := &ChapterContext{
		Title: "Chapter Three",
		PrevScenes: []prompt.SceneExcerpt{
			{Number: 1, Title: "Arrival", Content: "They arrived."},
			{Number: 2, Title: "Feast", Content: "They feasted."},
			{Number: 3, Title: "Theft", Content: "Something went missing."},
		},
	}
	if _, err := p.DraftScene(context.Background(), DraftRequest{Brief: "the accusation", Chapter: chapter}); err != nil {
		t.Fatalf("DraftScene() error = %v", err)
	}

	if strings.Contains(completer.lastPrompt, "Previous scene 1,") {
		t.Errorf("prompt includes scene 1, want only the last two")
	}
	for _, want := range []string{"Previous scene 2,", "Previous scene 3,"} {
		if !strings.Contains(completer.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
