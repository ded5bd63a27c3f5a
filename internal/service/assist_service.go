package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/memory"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/llm"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/executor"
	"ai-storywriting-be/pkg/rag/mention"
	"ai-storywriting-be/pkg/rag/prompt"
	"ai-storywriting-be/pkg/store"

	"github.com/google/uuid"
)

const defaultAssistSessionTitle = "New session"

// assistHistoryLimit caps how many past messages of a session are replayed
// to the model on each question.
const assistHistoryLimit = 12

// IAssistService is the writing assistant: free-form questions over a
// project's indexed material plus the generation helpers (scene drafting,
// chapter splitting, rephrasing). Every operation counts against the
// caller's daily assist quota.
type IAssistService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateAssistSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetAssistHistoryResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameAssistSessionRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error

	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskAssistRequest) (*dto.AskAssistResponse, error)
	DraftScene(ctx context.Context, userId uuid.UUID, req *dto.DraftSceneRequest) (*dto.DraftSceneResponse, error)
	SplitChapter(ctx context.Context, userId uuid.UUID, req *dto.SplitChapterRequest) (*dto.SplitChapterResponse, error)
	Rephrase(ctx context.Context, userId uuid.UUID, req *dto.RephraseRequest) (*dto.RephraseResponse, error)
}

type assistService struct {
	uowFactory  unitofwork.RepositoryFactory
	planService PlanService
	pipeline    *executor.Pipeline
	workspace   *store.Workspace
	docCache    *memory.DocCache
	logger      *log.Logger
}

func NewAssistService(
	uowFactory unitofwork.RepositoryFactory,
	planService PlanService,
	pipeline *executor.Pipeline,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	logger *log.Logger,
) IAssistService {
	if logger == nil {
		logger = log.Default()
	}
	return &assistService{
		uowFactory:  uowFactory,
		planService: planService,
		pipeline:    pipeline,
		workspace:   workspace,
		docCache:    docCache,
		logger:      logger,
	}
}

func (s *assistService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateAssistSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := s.findOwnedProject(ctx, uow, userId, req.ProjectId)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found or access denied")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultAssistSessionTitle
	}

	session := entity.AssistSession{
		Id:        uuid.New(),
		ProjectId: project.Id,
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.AssistSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *assistService) GetAllSessions(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if projectId != nil {
		specs = append(specs, specification.ByProjectID{ProjectID: *projectId})
	}

	sessions, err := uow.AssistSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, sess := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			ProjectId: sess.ProjectId,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	return response, nil
}

func (s *assistService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetAssistHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	messages, err := uow.AssistMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAssistHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &dto.GetAssistHistoryResponse{
			Id:        msg.Id,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Sources:   sourceUseDTOs(msg.Sources),
			CreatedAt: msg.CreatedAt,
		})
	}
	return response, nil
}

func (s *assistService) RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameAssistSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := s.findOwnedSession(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found or access denied")
	}

	now := time.Now()
	sess.Title = req.Title
	sess.UpdatedAt = &now
	return uow.AssistSessionRepository().Update(ctx, sess)
}

func (s *assistService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.AssistSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.AssistMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// Ask answers a free-form question inside a session. Mentions in the
// question (@character:"Mara", [[Harbor District]]) and pinned attachments
// are quoted to the model verbatim and excluded from retrieval; everything
// else is found by similarity search over the project's index.
func (s *assistService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskAssistRequest) (*dto.AskAssistResponse, error) {
	if err := s.planService.CheckAssistUsage(ctx, userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := s.findOwnedSession(ctx, uow, userId, req.SessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: sess.ProjectId})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found or access denied")
	}

	recent, err := uow.AssistMessageRepository().FindRecent(ctx, sess.Id, assistHistoryLimit)
	if err != nil {
		s.logger.Printf("[WARN] Failed to load session history: %v", err)
		recent = nil
	}
	history := make([]llm.Message, 0, len(recent))
	for _, msg := range recent {
		history = append(history, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}

	parsed := mention.Parse(req.Question)
	if err := mention.Validate(parsed.Mentions); err != nil {
		return nil, err
	}

	direct, sources, err := s.resolveAttachments(ctx, uow, project, req.Attachments)
	if err != nil {
		return nil, err
	}
	if parsed.HasMentions {
		direct = s.appendMentioned(ctx, uow, project, parsed.Mentions, direct, sources)
	}

	question := req.Question
	if parsed.HasMentions && strings.TrimSpace(parsed.CleanText) != "" {
		question = parsed.CleanText
	}

	answer, err := s.pipeline.AnswerQuery(ctx, executor.AnswerRequest{
		ProjectID: project.Id.String(),
		Question:  question,
		Project:   s.projectContext(project),
		Direct:    direct,
		Sources:   sources,
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	directUses := directSourceUses(answer.DirectSources)
	replyUses := append(nodeSourceUses(answer.UsedNodes), directUses...)

	now := time.Now()
	userMsg := entity.AssistMessage{
		Id:        uuid.New(),
		SessionId: sess.Id,
		Role:      entity.AssistRoleUser,
		Content:   req.Question,
		Sources:   directUses,
		CreatedAt: now,
	}
	replyMsg := entity.AssistMessage{
		Id:        uuid.New(),
		SessionId: sess.Id,
		Role:      entity.AssistRoleAssistant,
		Content:   answer.Text,
		Sources:   replyUses,
		CreatedAt: now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.AssistMessageRepository().Create(ctx, &userMsg); err != nil {
		return nil, err
	}
	if err := uow.AssistMessageRepository().Create(ctx, &replyMsg); err != nil {
		return nil, err
	}

	// A fresh session takes its title from the first question.
	if len(recent) == 0 && sess.Title == defaultAssistSessionTitle {
		sess.Title = sessionTitleFrom(req.Question)
		sess.UpdatedAt = &now
		if err := uow.AssistSessionRepository().Update(ctx, sess); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.recordUsage(ctx, userId, "ask", &sess.Id)

	return &dto.AskAssistResponse{
		SessionId:    sess.Id,
		SessionTitle: sess.Title,
		Sent: &dto.AssistMessageDTO{
			Id:        userMsg.Id,
			Role:      string(userMsg.Role),
			Content:   userMsg.Content,
			Sources:   sourceUseDTOs(userMsg.Sources),
			CreatedAt: userMsg.CreatedAt,
		},
		Reply: &dto.AssistMessageDTO{
			Id:        replyMsg.Id,
			Role:      string(replyMsg.Role),
			Content:   replyMsg.Content,
			Sources:   sourceUseDTOs(replyMsg.Sources),
			CreatedAt: replyMsg.CreatedAt,
		},
	}, nil
}

// DraftScene generates a candidate next scene for a chapter. The result is
// not persisted; the writer saves it through the scene endpoints if they
// keep it.
func (s *assistService) DraftScene(ctx context.Context, userId uuid.UUID, req *dto.DraftSceneRequest) (*dto.DraftSceneResponse, error) {
	if err := s.planService.CheckAssistUsage(ctx, userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chapter, project, err := s.findOwnedChapter(ctx, uow, userId, req.ChapterId)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, fmt.Errorf("chapter not found or access denied")
	}

	chapterCtx, err := s.chapterContext(ctx, uow, chapter)
	if err != nil {
		return nil, err
	}

	direct, sources, err := s.resolveAttachments(ctx, uow, project, req.Attachments)
	if err != nil {
		return nil, err
	}

	draft, err := s.pipeline.DraftScene(ctx, executor.DraftRequest{
		ProjectID: project.Id.String(),
		Brief:     req.Brief,
		Guidance:  req.Guidance,
		Project:   s.projectContext(project),
		Chapter:   chapterCtx,
		Direct:    direct,
		Sources:   sources,
	})
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, userId, "draft_scene", &chapter.Id)

	return &dto.DraftSceneResponse{
		Title:   draft.Title,
		Content: draft.Content,
		Sources: sourceUseDTOs(directSourceUsesFrom(direct)),
	}, nil
}

// SplitChapter proposes scene boundaries for a chapter. With no text in the
// request the chapter's existing scenes are joined in manuscript order and
// split instead. The proposal is never persisted here.
func (s *assistService) SplitChapter(ctx context.Context, userId uuid.UUID, req *dto.SplitChapterRequest) (*dto.SplitChapterResponse, error) {
	if err := s.planService.CheckAssistUsage(ctx, userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chapter, project, err := s.findOwnedChapter(ctx, uow, userId, req.ChapterId)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, fmt.Errorf("chapter not found or access denied")
	}

	// The chapter's own scene files are the text being split; retrieval
	// must not hand them back as context.
	sources := rag.NewSourceSet(s.logger)
	scenes, err := uow.SceneRepository().FindAll(ctx,
		specification.ByChapterID{ChapterID: chapter.Id},
		specification.ByPositionAsc{},
	)
	if err != nil {
		return nil, err
	}
	for _, scene := range scenes {
		sources.Add(s.workspace.ScenePath(project.Id, chapter.Id, scene.Id))
	}

	text := req.Text
	if strings.TrimSpace(text) == "" {
		parts := make([]string, 0, len(scenes))
		for _, scene := range scenes {
			content := s.readDoc(s.workspace.ScenePath(project.Id, chapter.Id, scene.Id))
			if strings.TrimSpace(content) == "" {
				continue
			}
			parts = append(parts, content)
		}
		text = strings.Join(parts, "\n\n")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chapter has no text to split")
	}

	split, err := s.pipeline.SplitChapter(ctx, executor.SplitRequest{
		ProjectID:    project.Id.String(),
		ChapterTitle: chapter.Title,
		ChapterText:  text,
		Guidance:     req.Guidance,
		Project:      s.projectContext(project),
		Sources:      sources,
	})
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, userId, "split_chapter", &chapter.Id)

	proposed := make([]dto.ProposedSceneDTO, 0, len(split.Scenes))
	for _, scene := range split.Scenes {
		proposed = append(proposed, dto.ProposedSceneDTO{
			Title:   scene.Title,
			Content: scene.Content,
		})
	}
	return &dto.SplitChapterResponse{Scenes: proposed}, nil
}

// Rephrase suggests alternative phrasings for a passage. When the passage
// comes from a known scene, that scene's text rides along as surrounding
// context and its file is excluded from retrieval.
func (s *assistService) Rephrase(ctx context.Context, userId uuid.UUID, req *dto.RephraseRequest) (*dto.RephraseResponse, error) {
	if err := s.planService.CheckAssistUsage(ctx, userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := s.findOwnedProject(ctx, uow, userId, req.ProjectId)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found or access denied")
	}

	sources := rag.NewSourceSet(s.logger)
	surrounding := ""
	var chapterCtx *executor.ChapterContext
	var relatedId *uuid.UUID

	if req.SceneId != nil {
		scene, err := uow.SceneRepository().FindOne(ctx, specification.ByID{ID: *req.SceneId})
		if err != nil {
			return nil, err
		}
		if scene == nil || scene.ProjectId != project.Id {
			return nil, fmt.Errorf("scene not found in this project")
		}
		scenePath := s.workspace.ScenePath(project.Id, scene.ChapterId, scene.Id)
		surrounding = s.readDoc(scenePath)
		sources.Add(scenePath)
		relatedId = &scene.Id

		chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: scene.ChapterId})
		if err != nil {
			return nil, err
		}
		if chapter != nil {
			chapterCtx = &executor.ChapterContext{
				Title:    chapter.Title,
				Plan:     s.readDoc(s.workspace.ChapterPlanPath(project.Id, chapter.Id)),
				Synopsis: s.readDoc(s.workspace.ChapterSynopsisPath(project.Id, chapter.Id)),
			}
		}
	}

	result, err := s.pipeline.Rephrase(ctx, executor.RephraseRequest{
		ProjectID:   project.Id.String(),
		Passage:     req.Passage,
		Surrounding: surrounding,
		Guidance:    req.Guidance,
		Project:     s.projectContext(project),
		Chapter:     chapterCtx,
		Sources:     sources,
	})
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, userId, "rephrase", relatedId)

	return &dto.RephraseResponse{Suggestions: result.Suggestions}, nil
}

// projectContext loads the project's plan and synopsis from the workspace.
// Missing docs degrade to blank fields, never an error.
func (s *assistService) projectContext(project *entity.Project) executor.ProjectContext {
	return executor.ProjectContext{
		Title:    project.Title,
		Plan:     s.readDoc(s.workspace.ProjectPlanPath(project.Id)),
		Synopsis: s.readDoc(s.workspace.ProjectSynopsisPath(project.Id)),
	}
}

// chapterContext loads chapter docs plus the tail of its scene list so
// generated text picks up where the manuscript stops.
func (s *assistService) chapterContext(ctx context.Context, uow unitofwork.UnitOfWork, chapter *entity.Chapter) (*executor.ChapterContext, error) {
	chapterCtx := &executor.ChapterContext{
		Title:    chapter.Title,
		Plan:     s.readDoc(s.workspace.ChapterPlanPath(chapter.ProjectId, chapter.Id)),
		Synopsis: s.readDoc(s.workspace.ChapterSynopsisPath(chapter.ProjectId, chapter.Id)),
	}

	scenes, err := uow.SceneRepository().FindAll(ctx,
		specification.ByChapterID{ChapterID: chapter.Id},
		specification.ByPositionAsc{},
	)
	if err != nil {
		return nil, err
	}

	count := s.pipeline.Config().PrevSceneCount
	if count < 0 {
		count = 0
	}
	if count > len(scenes) {
		count = len(scenes)
	}
	for _, scene := range scenes[len(scenes)-count:] {
		content := s.readDoc(s.workspace.ScenePath(chapter.ProjectId, chapter.Id, scene.Id))
		if strings.TrimSpace(content) == "" {
			continue
		}
		chapterCtx.PrevScenes = append(chapterCtx.PrevScenes, prompt.SceneExcerpt{
			Number:  scene.Position,
			Title:   scene.Title,
			Content: content,
		})
	}
	return chapterCtx, nil
}

// resolveAttachments turns pinned references into direct sources and
// registers their files for retrieval exclusion. A reference that points
// outside the project is an error; one whose file is empty or gone is
// silently dropped.
func (s *assistService) resolveAttachments(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, refs []dto.AttachmentRef) ([]executor.DirectSource, *rag.SourceSet, error) {
	sources := rag.NewSourceSet(s.logger)
	if len(refs) == 0 {
		return nil, sources, nil
	}

	direct := make([]executor.DirectSource, 0, len(refs))
	seen := make(map[string]bool)
	for _, ref := range refs {
		resolved, err := s.resolveAttachment(ctx, uow, project, ref)
		if err != nil {
			return nil, nil, err
		}
		if resolved == nil || seen[resolved.Path] {
			continue
		}
		content := s.readDoc(resolved.Path)
		if strings.TrimSpace(content) == "" {
			continue
		}
		resolved.Content = content
		direct = append(direct, *resolved)
		seen[resolved.Path] = true
		sources.Add(resolved.Path)
	}
	return direct, sources, nil
}

func (s *assistService) resolveAttachment(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, ref dto.AttachmentRef) (*executor.DirectSource, error) {
	switch ref.Kind {
	case "project_plan":
		return &executor.DirectSource{
			Type: rag.DocTypePlan.Label(),
			Name: project.Title,
			Path: s.workspace.ProjectPlanPath(project.Id),
		}, nil
	case "project_synopsis":
		return &executor.DirectSource{
			Type: rag.DocTypeSynopsis.Label(),
			Name: project.Title,
			Path: s.workspace.ProjectSynopsisPath(project.Id),
		}, nil
	case "chapter_plan", "chapter_synopsis":
		chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: ref.Id})
		if err != nil {
			return nil, err
		}
		if chapter == nil || chapter.ProjectId != project.Id {
			return nil, fmt.Errorf("chapter attachment not found in this project")
		}
		if ref.Kind == "chapter_plan" {
			return &executor.DirectSource{
				Type: rag.DocTypePlan.Label(),
				Name: chapter.Title,
				Path: s.workspace.ChapterPlanPath(project.Id, chapter.Id),
			}, nil
		}
		return &executor.DirectSource{
			Type: rag.DocTypeSynopsis.Label(),
			Name: chapter.Title,
			Path: s.workspace.ChapterSynopsisPath(project.Id, chapter.Id),
		}, nil
	case "scene":
		scene, err := uow.SceneRepository().FindOne(ctx, specification.ByID{ID: ref.Id})
		if err != nil {
			return nil, err
		}
		if scene == nil || scene.ProjectId != project.Id {
			return nil, fmt.Errorf("scene attachment not found in this project")
		}
		return &executor.DirectSource{
			Type: rag.DocTypeScene.Label(),
			Name: scene.Title,
			Path: s.workspace.ScenePath(project.Id, scene.ChapterId, scene.Id),
		}, nil
	case "character":
		character, err := uow.CharacterRepository().FindOne(ctx, specification.ByID{ID: ref.Id})
		if err != nil {
			return nil, err
		}
		if character == nil || character.ProjectId != project.Id {
			return nil, fmt.Errorf("character attachment not found in this project")
		}
		return &executor.DirectSource{
			Type: rag.DocTypeCharacter.Label(),
			Name: character.Name,
			Path: s.workspace.CharacterPath(project.Id, character.Id),
		}, nil
	case "note":
		note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: ref.Id})
		if err != nil {
			return nil, err
		}
		if note == nil || note.ProjectId != project.Id {
			return nil, fmt.Errorf("note attachment not found in this project")
		}
		return &executor.DirectSource{
			Type: noteDocType(note.Kind).Label(),
			Name: note.Title,
			Path: s.workspace.NotePath(project.Id, note.Id),
		}, nil
	default:
		return nil, fmt.Errorf("unknown attachment kind %q", ref.Kind)
	}
}

// appendMentioned resolves inline mentions against the project and adds any
// hits as direct sources. Resolution is best effort. A name nobody matches
// is dropped rather than failing the question.
func (s *assistService) appendMentioned(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, mentions []mention.Mention, direct []executor.DirectSource, sources *rag.SourceSet) []executor.DirectSource {
	seen := make(map[string]bool, len(direct))
	for _, d := range direct {
		seen[d.Path] = true
	}

	for _, m := range mentions {
		resolved := s.resolveMention(ctx, uow, project, m)
		if resolved == nil || seen[resolved.Path] {
			continue
		}
		content := s.readDoc(resolved.Path)
		if strings.TrimSpace(content) == "" {
			continue
		}
		resolved.Content = content
		direct = append(direct, *resolved)
		seen[resolved.Path] = true
		sources.Add(resolved.Path)
	}
	return direct
}

func (s *assistService) resolveMention(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, m mention.Mention) *executor.DirectSource {
	switch m.Kind {
	case mention.KindCharacter:
		return s.mentionedCharacter(ctx, uow, project, m)
	case mention.KindScene:
		return s.mentionedScene(ctx, uow, project, m)
	case mention.KindChapter:
		return s.mentionedChapter(ctx, uow, project, m)
	case mention.KindNote:
		return s.mentionedNote(ctx, uow, project, m)
	case mention.KindAny:
		// Wiki-links carry no kind. Characters win over notes, notes
		// over scenes, matching how writers tend to use them.
		if ds := s.mentionedCharacter(ctx, uow, project, m); ds != nil {
			return ds
		}
		if ds := s.mentionedNote(ctx, uow, project, m); ds != nil {
			return ds
		}
		return s.mentionedScene(ctx, uow, project, m)
	default:
		return nil
	}
}

func (s *assistService) mentionedCharacter(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, m mention.Mention) *executor.DirectSource {
	specs := []specification.Specification{specification.ByProjectID{ProjectID: project.Id}}
	if m.IsID {
		specs = append(specs, specification.ByID{ID: uuid.MustParse(m.Value)})
	} else {
		specs = append(specs, specification.NameContains{Name: m.Value})
	}
	character, err := uow.CharacterRepository().FindOne(ctx, specs...)
	if err != nil || character == nil {
		return nil
	}
	return &executor.DirectSource{
		Type: rag.DocTypeCharacter.Label(),
		Name: character.Name,
		Path: s.workspace.CharacterPath(project.Id, character.Id),
	}
}

func (s *assistService) mentionedScene(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, m mention.Mention) *executor.DirectSource {
	specs := []specification.Specification{specification.ByProjectID{ProjectID: project.Id}}
	if m.IsID {
		specs = append(specs, specification.ByID{ID: uuid.MustParse(m.Value)})
	} else {
		specs = append(specs, specification.TitleContains{Title: m.Value})
	}
	scene, err := uow.SceneRepository().FindOne(ctx, specs...)
	if err != nil || scene == nil {
		return nil
	}
	return &executor.DirectSource{
		Type: rag.DocTypeScene.Label(),
		Name: scene.Title,
		Path: s.workspace.ScenePath(project.Id, scene.ChapterId, scene.Id),
	}
}

// mentionedChapter resolves to the chapter's synopsis, falling back to its
// plan when no synopsis exists.
func (s *assistService) mentionedChapter(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, m mention.Mention) *executor.DirectSource {
	specs := []specification.Specification{specification.ByProjectID{ProjectID: project.Id}}
	if m.IsID {
		specs = append(specs, specification.ByID{ID: uuid.MustParse(m.Value)})
	} else {
		specs = append(specs, specification.TitleContains{Title: m.Value})
	}
	chapter, err := uow.ChapterRepository().FindOne(ctx, specs...)
	if err != nil || chapter == nil {
		return nil
	}

	synopsisPath := s.workspace.ChapterSynopsisPath(project.Id, chapter.Id)
	if s.workspace.Exists(synopsisPath) {
		return &executor.DirectSource{
			Type: rag.DocTypeSynopsis.Label(),
			Name: chapter.Title,
			Path: synopsisPath,
		}
	}
	return &executor.DirectSource{
		Type: rag.DocTypePlan.Label(),
		Name: chapter.Title,
		Path: s.workspace.ChapterPlanPath(project.Id, chapter.Id),
	}
}

func (s *assistService) mentionedNote(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project, m mention.Mention) *executor.DirectSource {
	specs := []specification.Specification{specification.ByProjectID{ProjectID: project.Id}}
	if m.IsID {
		specs = append(specs, specification.ByID{ID: uuid.MustParse(m.Value)})
	} else {
		specs = append(specs, specification.TitleContains{Title: m.Value})
	}
	note, err := uow.NoteRepository().FindOne(ctx, specs...)
	if err != nil || note == nil {
		return nil
	}
	return &executor.DirectSource{
		Type: noteDocType(note.Kind).Label(),
		Name: note.Title,
		Path: s.workspace.NotePath(project.Id, note.Id),
	}
}

func (s *assistService) findOwnedProject(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Project, error) {
	return uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
}

func (s *assistService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.AssistSession, error) {
	return uow.AssistSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
}

// findOwnedChapter resolves a chapter plus its owning project, verifying
// the project belongs to the caller.
func (s *assistService) findOwnedChapter(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Chapter, *entity.Project, error) {
	chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, nil, err
	}
	if chapter == nil {
		return nil, nil, nil
	}

	project, err := s.findOwnedProject(ctx, uow, userId, chapter.ProjectId)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, nil
	}
	return chapter, project, nil
}

func (s *assistService) readDoc(path string) string {
	if cached, ok := s.docCache.Get(path); ok {
		return cached
	}
	content, err := s.workspace.Read(path)
	if err != nil {
		return ""
	}
	s.docCache.Set(path, content)
	return content
}

// recordUsage charges the operation against the daily quota. The reply has
// already been produced at this point, so a bookkeeping failure is logged
// rather than surfaced.
func (s *assistService) recordUsage(ctx context.Context, userId uuid.UUID, operation string, relatedId *uuid.UUID) {
	if err := s.planService.RecordAssistUsage(ctx, userId, operation, relatedId); err != nil {
		s.logger.Printf("[WARN] Failed to record assist usage for %s: %v", operation, err)
	}
}

func noteDocType(kind entity.NoteKind) rag.DocumentType {
	if kind == entity.NoteKindWorld {
		return rag.DocTypeWorld
	}
	return rag.DocTypeNote
}

// sessionTitleFrom derives a session title from the first question.
func sessionTitleFrom(question string) string {
	title := strings.TrimSpace(question)
	if i := strings.IndexByte(title, '\n'); i > 0 {
		title = strings.TrimSpace(title[:i])
	}
	runes := []rune(title)
	if len(runes) > 80 {
		title = string(runes[:80])
	}
	if title == "" {
		return defaultAssistSessionTitle
	}
	return title
}

func nodeSourceUses(nodes []rag.Node) []entity.SourceUse {
	uses := make([]entity.SourceUse, 0, len(nodes))
	for _, n := range nodes {
		ref := rag.RefOf(n)
		uses = append(uses, entity.SourceUse{
			Path:     ref.Path,
			DocType:  ref.DocType.Label(),
			DocTitle: ref.DocTitle,
			Score:    ref.Score,
		})
	}
	return uses
}

func directSourceUses(refs []executor.DirectRef) []entity.SourceUse {
	uses := make([]entity.SourceUse, 0, len(refs))
	for _, ref := range refs {
		uses = append(uses, entity.SourceUse{
			DocType:  ref.Type,
			DocTitle: ref.Name,
			Direct:   true,
		})
	}
	return uses
}

func directSourceUsesFrom(direct []executor.DirectSource) []entity.SourceUse {
	uses := make([]entity.SourceUse, 0, len(direct))
	for _, d := range direct {
		uses = append(uses, entity.SourceUse{
			Path:     d.Path,
			DocType:  d.Type,
			DocTitle: d.Name,
			Direct:   true,
		})
	}
	return uses
}

func sourceUseDTOs(uses []entity.SourceUse) []dto.SourceUseDTO {
	if len(uses) == 0 {
		return nil
	}
	out := make([]dto.SourceUseDTO, 0, len(uses))
	for _, u := range uses {
		out = append(out, dto.SourceUseDTO{
			Path:     u.Path,
			DocType:  u.DocType,
			DocTitle: u.DocTitle,
			Score:    u.Score,
			Direct:   u.Direct,
		})
	}
	return out
}
