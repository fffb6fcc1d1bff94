package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"cinema-server/shared/logger"
	"cinema-server/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Границы опроса асинхронных задач провайдеров.
const (
	MinPollInterval    = 1 * time.Second
	MaxPollInterval    = 5 * time.Second
	MinPollMaxAttempts = 30
	MaxPollMaxAttempts = 60

	// MaxPollBudget - наибольшее время опроса одной задачи при любых настройках.
	MaxPollBudget = MaxPollInterval * MaxPollMaxAttempts
)

// ClampPoll приводит параметры опроса, заданные через system_ai_config, к тем же границам.
func ClampPoll(interval time.Duration, attempts int) (time.Duration, int) {
	return min(max(interval, MinPollInterval), MaxPollInterval),
		min(max(attempts, MinPollMaxAttempts), MaxPollMaxAttempts)
}

// Config содержит конфигурацию сервиса.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	Log        logger.Config

	// PostgreSQL
	DBHost         string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string        `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" default:"postgres"`
	DBName         string        `envconfig:"DB_NAME" default:"cinema"`
	DBSSLMode      string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns     int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout  time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	DBPassword     string        `envconfig:"DB_PASSWORD"` // секрет db_password имеет приоритет
	MigrateOnStart bool          `envconfig:"DB_MIGRATE_ON_START" default:"true"`

	// Redis: задачи генерации и rate limit
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// RabbitMQ: пусто - события генерации не публикуются
	RabbitMQURL           string `envconfig:"RABBITMQ_URL"`
	GenerationEventsQueue string `envconfig:"GENERATION_EVENTS_QUEUE" default:"generation_events"`

	JWTSecret string `envconfig:"JWT_SECRET"` // секрет jwt_secret имеет приоритет

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	CollabRateLimit    int    `envconfig:"COLLAB_RATE_LIMIT_PER_MINUTE" default:"30"`

	// Провайдеры. Ключи из окружения - последний уровень в порядке разрешения.
	ProviderTimeout time.Duration `envconfig:"AI_PROVIDER_TIMEOUT" default:"60s"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIChatModel  string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAIImageModel string `envconfig:"OPENAI_IMAGE_MODEL" default:"dall-e-3"`

	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	AnthropicModel   string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-sonnet-20241022"`

	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL"` // пусто - Ollama не участвует в цепочке
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"llama3.1"`

	KlingAccessKey string `envconfig:"KLING_ACCESS_KEY"`
	KlingSecretKey string `envconfig:"KLING_SECRET_KEY"`
	KlingBaseURL   string `envconfig:"KLING_BASE_URL" default:"https://api.klingai.com"`
	KlingModel     string `envconfig:"KLING_MODEL" default:"kling-v1"`

	RunwayAPIKey  string `envconfig:"RUNWAY_API_KEY"`
	RunwayBaseURL string `envconfig:"RUNWAY_BASE_URL" default:"https://api.dev.runwayml.com"`
	RunwayModel   string `envconfig:"RUNWAY_MODEL" default:"gen3a_turbo"`

	// Перебор устаревших форм запросов к видео-провайдерам. По умолчанию одна закрепленная форма.
	VideoLegacyShapes bool          `envconfig:"VIDEO_LEGACY_SHAPES" default:"false"`
	PollInterval      time.Duration `envconfig:"VIDEO_POLL_INTERVAL" default:"3s"`
	PollMaxAttempts   int           `envconfig:"VIDEO_POLL_MAX_ATTEMPTS" default:"40"`
}

// GetAllowedOrigins разбивает CORSAllowedOrigins по запятой.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMaskedDSN - DSN для логов, без пароля.
func (c *Config) GetMaskedDSN() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// EnvValue возвращает ключ провайдера из окружения по имени колонки/ключа.
func (c *Config) EnvValue(key string) string {
	switch key {
	case "openai_api_key":
		return c.OpenAIAPIKey
	case "anthropic_api_key":
		return c.AnthropicAPIKey
	case "kling_access_key":
		return c.KlingAccessKey
	case "kling_secret_key":
		return c.KlingSecretKey
	case "runway_api_key":
		return c.RunwayAPIKey
	case "ollama_base_url":
		return c.OllamaBaseURL
	}
	return ""
}

// normalize приводит параметры опроса к допустимым границам.
func (c *Config) normalize() {
	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		log.Printf("VIDEO_POLL_INTERVAL=%s is out of [%s, %s], using 3s", c.PollInterval, MinPollInterval, MaxPollInterval)
		c.PollInterval = 3 * time.Second
	}
	if c.PollMaxAttempts < MinPollMaxAttempts || c.PollMaxAttempts > MaxPollMaxAttempts {
		log.Printf("VIDEO_POLL_MAX_ATTEMPTS=%d is out of [%d, %d], using 40", c.PollMaxAttempts, MinPollMaxAttempts, MaxPollMaxAttempts)
		c.PollMaxAttempts = 40
	}
}

// LoadConfig загружает конфигурацию из .env (если есть), окружения и Docker secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Секреты из файлов перекрывают переменные окружения
	cfg.DBPassword = utils.ReadSecretOr("db_password", cfg.DBPassword)
	cfg.RedisPassword = utils.ReadSecretOr("redis_password", cfg.RedisPassword)
	cfg.RabbitMQURL = utils.ReadSecretOr("rabbitmq_url", cfg.RabbitMQURL)
	cfg.JWTSecret = utils.ReadSecretOr("jwt_secret", cfg.JWTSecret)
	cfg.OpenAIAPIKey = utils.ReadSecretOr("openai_api_key", cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = utils.ReadSecretOr("anthropic_api_key", cfg.AnthropicAPIKey)
	cfg.KlingAccessKey = utils.ReadSecretOr("kling_access_key", cfg.KlingAccessKey)
	cfg.KlingSecretKey = utils.ReadSecretOr("kling_secret_key", cfg.KlingSecretKey)
	cfg.RunwayAPIKey = utils.ReadSecretOr("runway_api_key", cfg.RunwayAPIKey)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is not configured (secret file jwt_secret or JWT_SECRET)")
	}

	cfg.normalize()
	return &cfg, nil
}
