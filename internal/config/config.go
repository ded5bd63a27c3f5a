package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Workspace WorkspaceConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Assist    AssistConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// WorkspaceConfig locates the on-disk manuscript store. Every project's
// plan, synopsis, chapter and scene markdown lives under Root.
type WorkspaceConfig struct {
	Root string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini  string
	Jina          string
	IndexDocTopic string // messaging topic for document (re)indexing
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKey         string
}

// AssistConfig tunes the retrieval-augmented writing assistant.
type AssistConfig struct {
	QueryTopK    int
	DraftTopK    int
	SplitTopK    int
	RephraseTopK int

	PrevSceneCount  int
	SuggestionCount int

	// MinScore drops retrieved snippets below this similarity.
	MinScore float64

	MaxFieldChars  int
	NodeCharBudget int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Workspace: WorkspaceConfig{
			Root: getEnv("WORKSPACE_ROOT", "./data/workspace"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "StoryFiber"),
		},
		Keys: APIKeys{
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:          getEnv("JINA_API_KEY", ""),
			IndexDocTopic: getEnv("INDEX_DOC_TOPIC_NAME", "INDEX_PROJECT_DOC"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		},
		Assist: AssistConfig{
			QueryTopK:       getEnvAsInt("ASSIST_QUERY_TOP_K", 8),
			DraftTopK:       getEnvAsInt("ASSIST_DRAFT_TOP_K", 6),
			SplitTopK:       getEnvAsInt("ASSIST_SPLIT_TOP_K", 4),
			RephraseTopK:    getEnvAsInt("ASSIST_REPHRASE_TOP_K", 4),
			PrevSceneCount:  getEnvAsInt("ASSIST_PREV_SCENE_COUNT", 2),
			SuggestionCount: getEnvAsInt("ASSIST_SUGGESTION_COUNT", 3),
			MinScore:        getEnvAsFloat("ASSIST_MIN_SCORE", 0.35),
			MaxFieldChars:   getEnvAsInt("ASSIST_MAX_FIELD_CHARS", 1200),
			NodeCharBudget:  getEnvAsInt("ASSIST_NODE_CHAR_BUDGET", 900),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
