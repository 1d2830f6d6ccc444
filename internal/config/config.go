package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type RemoteProvider string

const (
	RemoteNone   RemoteProvider = ""
	RemoteHTTP   RemoteProvider = "http"
	RemoteOpenAI RemoteProvider = "openai"
	RemoteYandex RemoteProvider = "yandex"
)

type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageSQLite StorageBackend = "sqlite"
	StorageNone   StorageBackend = "none"
)

type Config struct {
	// HTTP widget API
	HTTPAddr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Telegram
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// Responder
	MatchMode        string        `env:"RESPONDER_MATCH_MODE" envDefault:"substring"`
	ReplyDelayMin    time.Duration `env:"REPLY_DELAY_MIN" envDefault:"1200ms"`
	ReplyDelayJitter time.Duration `env:"REPLY_DELAY_JITTER" envDefault:"800ms"`

	// Remote responder (optional)
	RemoteProvider RemoteProvider `env:"REMOTE_PROVIDER"`
	RemoteEndpoint string         `env:"CHATBOT_API_ENDPOINT"`
	RemoteAPIKey   string         `env:"CHATBOT_API_KEY"`
	RemoteTimeout  time.Duration  `env:"REMOTE_TIMEOUT" envDefault:"10s"`

	// LLM settings
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`
	LogFilePath    string         `env:"LOG_FILE_PATH" envDefault:"logs/log.jsonl"`
	SQLitePath     string         `env:"SQLITE_PATH" envDefault:"data/transcripts.db"`

	// Reports
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ReplyDelayMin < 0 || c.ReplyDelayJitter < 0 {
		return fmt.Errorf("reply delay must be non-negative")
	}
	switch c.RemoteProvider {
	case RemoteNone:
	case RemoteHTTP:
		if c.RemoteEndpoint == "" {
			return fmt.Errorf("CHATBOT_API_ENDPOINT is required for remote provider %q", c.RemoteProvider)
		}
	case RemoteOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for remote provider %q", c.RemoteProvider)
		}
	case RemoteYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for remote provider %q", c.RemoteProvider)
		}
	default:
		return fmt.Errorf("unknown remote provider: %q", c.RemoteProvider)
	}
	switch c.StorageBackend {
	case StorageFile, StorageSQLite, StorageNone:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.StorageBackend)
	}
	return nil
}
