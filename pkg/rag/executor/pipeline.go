package executor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-storywriting-be/pkg/llm"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/parse"
	"ai-storywriting-be/pkg/rag/prompt"
)

// splitQueryRunes bounds how much chapter text is embedded as the retrieval
// query when splitting. The opening of a chapter is enough to find related
// material.
const splitQueryRunes = 2000

// Retriever finds the snippets most similar to a query within one project.
type Retriever interface {
	Retrieve(ctx context.Context, projectID, query string, topK int) ([]rag.Node, error)
}

// Pipeline runs the retrieval-augmented generation flow shared by every
// assist operation. The completer is expected to handle its own retrying;
// the pipeline never sleeps.
type Pipeline struct {
	retriever Retriever
	completer llm.LLMProvider
	cfg       Config
	logger    *log.Logger
}

func NewPipeline(retriever Retriever, completer llm.LLMProvider, cfg Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		retriever: retriever,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Config returns the knobs the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// AnswerQuery answers a free-form question about the project. The returned
// answer carries the retrieved nodes and direct-source descriptors that
// shaped it so callers can show provenance.
func (p *Pipeline) AnswerQuery(ctx context.Context, req AnswerRequest) (FreeformAnswer, error) {
	question := strings.TrimSpace(req.Question)
	p.logger.Printf("[EXECUTOR] Answering question %q for project %s", snippet(question, 80), req.ProjectID)

	nodes, err := p.gather(ctx, req.ProjectID, question, p.cfg.QueryTopK, req.Sources)
	if err != nil {
		return FreeformAnswer{}, err
	}

	in := prompt.Input{
		Task:            prompt.TaskAnswer,
		Request:         question,
		ProjectTitle:    req.Project.Title,
		ProjectPlan:     req.Project.Plan,
		ProjectSynopsis: req.Project.Synopsis,
		Direct:          directContent(req.Direct),
		Nodes:           nodes,
	}
	p.applyChapter(&in, req.Chapter)

	text, err := p.complete(ctx, prompt.NewBuilder(in, p.cfg.Limits).Build(), req.History, p.cfg.Temperature)
	if err != nil {
		return FreeformAnswer{}, err
	}

	return FreeformAnswer{
		Text:          parse.Answer(text),
		UsedNodes:     nodes,
		DirectSources: directRefs(req.Direct),
	}, nil
}

// DraftScene writes the next scene of a chapter from a brief.
func (p *Pipeline) DraftScene(ctx context.Context, req DraftRequest) (SceneDraft, error) {
	brief := strings.TrimSpace(req.Brief)
	p.logger.Printf("[EXECUTOR] Drafting scene for project %s", req.ProjectID)

	nodes, err := p.gather(ctx, req.ProjectID, brief, p.cfg.DraftTopK, req.Sources)
	if err != nil {
		return SceneDraft{}, err
	}

	in := prompt.Input{
		Task:            prompt.TaskDraftScene,
		Request:         brief,
		Guidance:        req.Guidance,
		ProjectTitle:    req.Project.Title,
		ProjectPlan:     req.Project.Plan,
		ProjectSynopsis: req.Project.Synopsis,
		Direct:          directContent(req.Direct),
		Nodes:           nodes,
	}
	p.applyChapter(&in, req.Chapter)

	text, err := p.complete(ctx, prompt.NewBuilder(in, p.cfg.Limits).Build(), nil, p.cfg.DraftTemperature)
	if err != nil {
		return SceneDraft{}, err
	}

	title, content := parse.HeadingBody(text)
	return SceneDraft{Title: title, Content: content}, nil
}

// SplitChapter proposes a scene breakdown for a chapter's text. A chapter
// with no text yields an empty split without touching the retriever or the
// model.
func (p *Pipeline) SplitChapter(ctx context.Context, req SplitRequest) (SceneSplit, error) {
	text := strings.TrimSpace(req.ChapterText)
	if text == "" {
		p.logger.Printf("[EXECUTOR] Chapter %q has no text to split", req.ChapterTitle)
		return SceneSplit{}, nil
	}
	p.logger.Printf("[EXECUTOR] Splitting chapter %q (%d chars)", req.ChapterTitle, len(text))

	nodes, err := p.gather(ctx, req.ProjectID, headRunes(text, splitQueryRunes), p.cfg.SplitTopK, req.Sources)
	if err != nil {
		return SceneSplit{}, err
	}

	name := strings.TrimSpace(req.ChapterTitle)
	if name == "" {
		name = "Untitled Chapter"
	}
	in := prompt.Input{
		Task:            prompt.TaskSplitChapter,
		Guidance:        req.Guidance,
		ProjectTitle:    req.Project.Title,
		ProjectPlan:     req.Project.Plan,
		ProjectSynopsis: req.Project.Synopsis,
		ChapterTitle:    name,
		Direct:          []prompt.DirectContent{{Type: "Chapter", Name: name, Content: text}},
		Nodes:           nodes,
	}

	raw, err := p.complete(ctx, prompt.NewBuilder(in, p.cfg.Limits).Build(), nil, p.cfg.Temperature)
	if err != nil {
		return SceneSplit{}, err
	}

	blocks := parse.SceneBlocks(raw, p.logger)
	scenes := make([]ProposedScene, 0, len(blocks))
	for _, block := range blocks {
		scenes = append(scenes, ProposedScene{Title: block.Title, Content: block.Content})
	}
	return SceneSplit{Scenes: scenes}, nil
}

// Rephrase offers alternative phrasings for a passage.
func (p *Pipeline) Rephrase(ctx context.Context, req RephraseRequest) (RephraseResult, error) {
	passage := strings.TrimSpace(req.Passage)
	p.logger.Printf("[EXECUTOR] Rephrasing passage %q", snippet(passage, 60))

	nodes, err := p.gather(ctx, req.ProjectID, passage, p.cfg.RephraseTopK, req.Sources)
	if err != nil {
		return RephraseResult{}, err
	}

	count := req.Count
	if count <= 0 {
		count = p.cfg.SuggestionCount
	}
	in := prompt.Input{
		Task:            prompt.TaskRephrase,
		Request:         passage,
		Guidance:        req.Guidance,
		Surrounding:     req.Surrounding,
		ProjectTitle:    req.Project.Title,
		ProjectPlan:     req.Project.Plan,
		ProjectSynopsis: req.Project.Synopsis,
		Nodes:           nodes,
		SuggestionCount: count,
	}
	p.applyChapter(&in, req.Chapter)

	raw, err := p.complete(ctx, prompt.NewBuilder(in, p.cfg.Limits).Build(), nil, p.cfg.Temperature)
	if err != nil {
		return RephraseResult{}, err
	}

	suggestions := parse.NumberedList(raw, p.logger)
	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}
	return RephraseResult{Suggestions: suggestions}, nil
}

// gather retrieves, deduplicates, and filters snippets for one operation.
// A non-positive topK or a blank query skips retrieval entirely.
func (p *Pipeline) gather(ctx context.Context, projectID, query string, topK int, sources *rag.SourceSet) ([]rag.Node, error) {
	if topK <= 0 || strings.TrimSpace(query) == "" {
		p.logger.Printf("[EXECUTOR] Skipping snippet retrieval (top_k=%d)", topK)
		return nil, nil
	}

	start := time.Now()
	nodes, err := p.retriever.Retrieve(ctx, projectID, query, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	fetched := len(nodes)
	nodes = rag.Dedupe(nodes)
	nodes = rag.FilterBySources(nodes, sources, p.logger)
	p.logger.Printf("[EXECUTOR] Kept %d of %d retrieved snippets for %q in %v",
		len(nodes), fetched, snippet(query, 60), time.Since(start).Round(time.Millisecond))
	return nodes, nil
}

// complete sends the assembled prompt to the model. With history present the
// prompt becomes the final user turn of a chat; otherwise it is a one-shot
// generation. A blank completion is reported as ErrEmptyGeneration.
func (p *Pipeline) complete(ctx context.Context, builtPrompt string, history []llm.Message, temperature float64) (string, error) {
	start := time.Now()
	opts := []llm.Option{llm.WithTemperature(temperature)}

	var text string
	var err error
	if len(history) > 0 {
		msgs := make([]llm.Message, 0, len(history)+1)
		msgs = append(msgs, history...)
		msgs = append(msgs, llm.Message{Role: "user", Content: builtPrompt})
		text, err = p.completer.Chat(ctx, msgs, opts...)
	} else {
		text, err = p.completer.Generate(ctx, builtPrompt, opts...)
	}
	if err != nil {
		if llm.IsRateLimit(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyGeneration
	}

	p.logger.Printf("[EXECUTOR] Completion returned %d chars in %v", len(text), time.Since(start).Round(time.Millisecond))
	return text, nil
}

// applyChapter copies chapter material into the prompt input, keeping only
// the most recent prior scenes allowed by configuration.
func (p *Pipeline) applyChapter(in *prompt.Input, ch *ChapterContext) {
	if ch == nil {
		return
	}
	in.ChapterTitle = ch.Title
	in.ChapterPlan = ch.Plan
	in.ChapterSynopsis = ch.Synopsis

	scenes := ch.PrevScenes
	if p.cfg.PrevSceneCount <= 0 {
		scenes = nil
	} else if len(scenes) > p.cfg.PrevSceneCount {
		scenes = scenes[len(scenes)-p.cfg.PrevSceneCount:]
	}
	in.PrevScenes = scenes
}

func directContent(items []DirectSource) []prompt.DirectContent {
	if len(items) == 0 {
		return nil
	}
	out := make([]prompt.DirectContent, 0, len(items))
	for _, item := range items {
		out = append(out, prompt.DirectContent{Type: item.Type, Name: item.Name, Content: item.Content})
	}
	return out
}

// directRefs lists the direct sources that actually reached the prompt.
// Items with no content are skipped there, so they are skipped here too.
func directRefs(items []DirectSource) []DirectRef {
	var out []DirectRef
	for _, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			continue
		}
		out = append(out, DirectRef{Type: item.Type, Name: item.Name})
	}
	return out
}

func headRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
