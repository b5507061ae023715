package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// GeminiConfig configures the model-inference client.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
	Model  string `yaml:"model" envconfig:"GEMINI_MODEL"`
	// BaseURL overrides the API endpoint; empty uses the public one.
	BaseURL string `yaml:"base_url" envconfig:"GEMINI_BASE_URL"`
	// TimeoutSeconds bounds a single generate call; 0 disables the limit.
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"GEMINI_TIMEOUT_SECONDS"`
}

// AssistantConfig tunes the question-answering path.
type AssistantConfig struct {
	MaxMemory    int    `yaml:"max_memory" envconfig:"MAX_MEMORY"`
	SystemPrompt string `yaml:"system_prompt" envconfig:"VED_SYSTEM_PROMPT"`
}

// CalculatorConfig tunes the logistics calculator flow.
type CalculatorConfig struct {
	Contact string `yaml:"contact" envconfig:"CALC_CONTACT"`
}

// RatesConfig locates the tariff file.
type RatesConfig struct {
	File string `yaml:"file" envconfig:"RATES_FILE"`
	// KeepExisting skips writing default tariffs on startup when the file already exists.
	KeepExisting bool `yaml:"keep_existing" envconfig:"RATES_KEEP_EXISTING"`
}

// PostgresConfig holds connection settings for the postgres storage driver.
// Field layout matches database.Config so it converts directly.
type PostgresConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// StorageConfig selects the backend for chat sessions and conversation memory.
type StorageConfig struct {
	Driver        string         `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Postgres      PostgresConfig `yaml:"postgres"`
	MigrationsDir string         `yaml:"migrations_dir" envconfig:"MIGRATIONS_DIR"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// StorageMemory keeps all chat state in process memory.
	StorageMemory = "memory"
	// StoragePostgres keeps chat state in PostgreSQL.
	StoragePostgres = "postgres"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultMaxMemory     = 20
	DefaultContact       = "@PrologMos"
	DefaultRatesFile     = "stavki-china.txt"
	DefaultMigrationsDir = "migrations"
	DefaultSystemPrompt  = "Ты — консультант по внешнеэкономической деятельности (ВЭД), " +
		"таможенному оформлению, сертификации продукции и международной логистике между Китаем и Россией. " +
		"Отвечай на русском языке, кратко и по существу. На вопросы вне этих тем вежливо отказывайся отвечать."
)

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Logging    LoggingConfig    `yaml:"logging"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Rates      RatesConfig      `yaml:"rates"`
	Storage    StorageConfig    `yaml:"storage"`
}

// Load reads configuration from a YAML file and environment variables.
// A missing file is tolerated so the bot can run from environment alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return fmt.Errorf("gemini.api_key is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}
	if cfg.Gemini.TimeoutSeconds < 0 {
		return fmt.Errorf("gemini.timeout_seconds must be >= 0")
	}

	switch {
	case cfg.Assistant.MaxMemory == 0:
		cfg.Assistant.MaxMemory = DefaultMaxMemory
	case cfg.Assistant.MaxMemory < 0:
		return fmt.Errorf("assistant.max_memory must be > 0")
	}
	if strings.TrimSpace(cfg.Assistant.SystemPrompt) == "" {
		cfg.Assistant.SystemPrompt = DefaultSystemPrompt
	}

	if strings.TrimSpace(cfg.Calculator.Contact) == "" {
		cfg.Calculator.Contact = DefaultContact
	}
	if strings.TrimSpace(cfg.Rates.File) == "" {
		cfg.Rates.File = DefaultRatesFile
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
	case StoragePostgres:
		pg := &cfg.Storage.Postgres
		if pg.Host == "" || pg.Name == "" || pg.User == "" {
			return fmt.Errorf("storage.postgres host, name and user are required for the postgres driver")
		}
		if pg.Port == "" {
			pg.Port = "5432"
		}
		if pg.SSLMode == "" {
			pg.SSLMode = "disable"
		}
		if pg.MaxConnections <= 0 {
			pg.MaxConnections = 5
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, postgres", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver
	if strings.TrimSpace(cfg.Storage.MigrationsDir) == "" {
		cfg.Storage.MigrationsDir = DefaultMigrationsDir
	}
	return nil
}
