package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"ai-storywriting-be/internal/config"
	"ai-storywriting-be/internal/controller"
	"ai-storywriting-be/internal/handler"
	"ai-storywriting-be/internal/pkg/logger"
	"ai-storywriting-be/internal/pkg/mailer"
	"ai-storywriting-be/internal/repository/memory"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/internal/service"
	"ai-storywriting-be/internal/websocket"
	"ai-storywriting-be/pkg/embedding"
	"ai-storywriting-be/pkg/embedding/jina"
	"ai-storywriting-be/pkg/llm"
	"ai-storywriting-be/pkg/llm/factory"
	"ai-storywriting-be/pkg/rag/executor"
	"ai-storywriting-be/pkg/rag/prompt"
	"ai-storywriting-be/pkg/rag/search"
	"ai-storywriting-be/pkg/store"

	pktNats "ai-storywriting-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ProjectController   controller.IProjectController
	ChapterController   controller.IChapterController
	SceneController     controller.ISceneController
	CharacterController controller.ICharacterController
	NoteController      controller.INoteController
	AssistController    controller.IAssistController
	UserController      controller.IUserController
	AuthController      controller.IAuthController
	OAuthController     controller.IOAuthController
	PaymentController   controller.IPaymentController
	PlanController      controller.PlanController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Activity Feed
	ActivityHandler *handler.ActivityHandler
	WebSocketHub    *websocket.Hub

	// Logger is exposed so main can Sync on shutdown.
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	workspace, err := store.NewWorkspace(cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open manuscript workspace at %s: %v", cfg.Workspace.Root, err)
	}
	docCache := memory.NewDocCache()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmKey := cfg.Ai.LLMAPIKey
	if llmKey == "" {
		llmKey = cfg.Keys.GoogleGemini
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		llmKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub. The feed is chatty, so it logs to its own file.
	feedLogger := logger.NewIsolatedLogger("logs/activity.log")
	wsHub := websocket.NewHub(rdb, feedLogger)
	go wsHub.Run()

	// 4. Generation Pipeline
	assistLogger := initAssistLogger()
	searcher := search.NewSearcher(embeddingProvider, uowFactory, search.Config{
		DBThreshold: 0.0,
		MinScore:    cfg.Assist.MinScore,
	}, assistLogger)

	completer := llm.NewRetryingProvider(llmProvider, llm.DefaultRetryConfig(), assistLogger)

	pipelineCfg := executor.DefaultConfig()
	pipelineCfg.QueryTopK = cfg.Assist.QueryTopK
	pipelineCfg.DraftTopK = cfg.Assist.DraftTopK
	pipelineCfg.SplitTopK = cfg.Assist.SplitTopK
	pipelineCfg.RephraseTopK = cfg.Assist.RephraseTopK
	pipelineCfg.PrevSceneCount = cfg.Assist.PrevSceneCount
	pipelineCfg.SuggestionCount = cfg.Assist.SuggestionCount
	pipelineCfg.Limits = prompt.Limits{
		MaxFieldChars:  cfg.Assist.MaxFieldChars,
		NodeCharBudget: cfg.Assist.NodeCharBudget,
	}
	pipeline := executor.NewPipeline(searcher, completer, pipelineCfg, assistLogger)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IndexDocTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IndexDocTopic,
		uowFactory,
		embeddingProvider,
		workspace,
	)

	userService := service.NewUserService(uowFactory, natsPub)
	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory)

	planService := service.NewPlanService(uowFactory)
	paymentService := service.NewPaymentService(uowFactory, natsPub)

	projectService := service.NewProjectService(uowFactory, publisherService, planService, workspace, docCache, natsPub)
	chapterService := service.NewChapterService(uowFactory, publisherService, workspace, docCache, natsPub)
	sceneService := service.NewSceneService(uowFactory, publisherService, workspace, docCache, natsPub)
	characterService := service.NewCharacterService(uowFactory, publisherService, workspace, docCache, natsPub)
	noteService := service.NewNoteService(uowFactory, publisherService, workspace, docCache, natsPub)

	assistService := service.NewAssistService(
		uowFactory,
		planService,
		pipeline,
		workspace,
		docCache,
		assistLogger,
	)

	// 6. Activity Feed (NATS -> Postgres -> WebSocket)
	activityService := service.NewActivityService(uowFactory, natsSub, wsHub, feedLogger)
	if natsSub != nil {
		go activityService.Start()
	}
	activityHandler := handler.NewActivityHandler(activityService, wsHub, feedLogger)

	// 7. Controllers
	return &Container{
		ProjectController:   controller.NewProjectController(projectService),
		ChapterController:   controller.NewChapterController(chapterService),
		SceneController:     controller.NewSceneController(sceneService),
		CharacterController: controller.NewCharacterController(characterService),
		NoteController:      controller.NewNoteController(noteService),
		AssistController:    controller.NewAssistController(assistService),
		UserController:      controller.NewUserController(userService),
		AuthController:      controller.NewAuthController(authService),
		OAuthController:     controller.NewOAuthController(oauthService),
		PaymentController:   controller.NewPaymentController(paymentService),
		PlanController:      controller.NewPlanController(planService),

		ConsumerService: consumerService,

		ActivityHandler: activityHandler,
		WebSocketHub:    wsHub,

		Logger: sysLogger,
	}
}

// initAssistLogger writes the generation pipeline's trace to its own file so
// prompt and retrieval logs do not drown the main log.
func initAssistLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "assist.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[ASSIST] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
