// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	// Основные параметры подключения
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	// Включение/отключение БД
	Enabled bool `mapstructure:"DB_ENABLED"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	// Основные настройки подключения
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	// Включение/отключение Redis
	Enabled bool `mapstructure:"REDIS_ENABLED"`

	// Настройки пула соединений
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`      // 10
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"` // 5
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`    // 3
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`   // 5s
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`   // 3s
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`  // 3s

	// Настройки кэширования
	DefaultTTL time.Duration `mapstructure:"REDIS_DEFAULT_TTL"` // 1h
}

// ============================================
// КОНФИГУРАЦИЯ TELEGRAM
// ============================================

// TelegramConfig настройки Telegram Bot API
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"TELEGRAM_ENABLED"`
	BotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	// Telegram ID администраторов (через запятую)
	AdminIDs []int64 `mapstructure:"TELEGRAM_ADMIN_IDS"`

	// Таймаут long polling в секундах
	PollTimeout int `mapstructure:"TELEGRAM_POLL_TIMEOUT"`
}

// ============================================
// КОНФИГУРАЦИЯ ИЗВЛЕЧЕНИЯ ПРЕДЛОЖЕНИЙ (LLM)
// ============================================

// OpenRouterConfig настройки LLM-классификатора сообщений.
// Пустой API ключ переключает пайплайн в деградированный режим:
// каждое сообщение фиксируется как заявка без стороны и цены.
type OpenRouterConfig struct {
	ApiKey  string        `mapstructure:"OPENROUTER_API_KEY"`
	BaseURL string        `mapstructure:"OPENROUTER_BASE_URL"`
	Model   string        `mapstructure:"OPENROUTER_MODEL"`
	Timeout time.Duration `mapstructure:"OPENROUTER_TIMEOUT"`
}

// ============================================
// НАСТРОЙКИ СБОРА ЗАЯВОК
// ============================================

// BroadcastConfig настройки окна мониторинга по умолчанию
type BroadcastConfig struct {
	// Длительность окна мониторинга по умолчанию
	DefaultDuration time.Duration `mapstructure:"BROADCAST_DEFAULT_DURATION"`

	// Учитывать ли предложения с неопределённой стороной в ранжировании
	IncludeUnknownSide bool `mapstructure:"BROADCAST_INCLUDE_UNKNOWN_SIDE"`

	// TTL торговой сессии стакана по умолчанию (минуты)
	DefaultSessionTTLMinutes int `mapstructure:"BROADCAST_SESSION_TTL_MINUTES"`
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	LogPath  string `mapstructure:"LOG_PATH"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Debug    bool   `mapstructure:"DEBUG"`

	// ======================
	// ПОДСИСТЕМЫ
	// ======================
	Database   DatabaseConfig   `mapstructure:"DATABASE"`
	Redis      RedisConfig      `mapstructure:"REDIS"`
	Telegram   TelegramConfig   `mapstructure:"TELEGRAM"`
	OpenRouter OpenRouterConfig `mapstructure:"OPENROUTER"`
	Broadcast  BroadcastConfig  `mapstructure:"BROADCAST"`
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.LogPath = getEnv("LOG_PATH", "logs/bot.log")
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.Debug = getEnvBool("DEBUG", false)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", true)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 5)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.DefaultTTL = getEnvDuration("REDIS_DEFAULT_TTL", 1*time.Hour)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", true)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.AdminIDs = parseInt64List(getEnv("TELEGRAM_ADMIN_IDS", ""))
	cfg.Telegram.PollTimeout = getEnvInt("TELEGRAM_POLL_TIMEOUT", 30)

	// ======================
	// OPENROUTER
	// ======================
	cfg.OpenRouter.ApiKey = getEnv("OPENROUTER_API_KEY", "")
	cfg.OpenRouter.BaseURL = getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	cfg.OpenRouter.Model = getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	cfg.OpenRouter.Timeout = getEnvDuration("OPENROUTER_TIMEOUT", 10*time.Second)

	// ======================
	// СБОР ЗАЯВОК
	// ======================
	cfg.Broadcast.DefaultDuration = getEnvDuration("BROADCAST_DEFAULT_DURATION", 60*time.Minute)
	cfg.Broadcast.IncludeUnknownSide = getEnvBool("BROADCAST_INCLUDE_UNKNOWN_SIDE", true)
	cfg.Broadcast.DefaultSessionTTLMinutes = getEnvInt("BROADCAST_SESSION_TTL_MINUTES", 60)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("config: TELEGRAM_BOT_TOKEN обязателен при включенном Telegram")
	}

	if c.Database.Enabled {
		if c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("config: DB_USER и DB_NAME обязательны при включенной БД")
		}
	}

	if c.Broadcast.DefaultDuration <= 0 {
		return fmt.Errorf("config: BROADCAST_DEFAULT_DURATION должен быть положительным")
	}

	return nil
}

// GetDatabaseConfig возвращает конфигурацию базы данных
func (c *Config) GetDatabaseConfig() DatabaseConfig {
	return c.Database
}

// IsExtractionEnabled возвращает true, если LLM-классификатор настроен
func (c *Config) IsExtractionEnabled() bool {
	return c.OpenRouter.ApiKey != ""
}

// IsAdmin проверяет, входит ли telegramID в список администраторов
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseInt64List(value string) []int64 {
	var result []int64
	if value == "" {
		return result
	}

	parts := strings.Split(value, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if intValue, err := strconv.ParseInt(part, 10, 64); err == nil {
			result = append(result, intValue)
		}
	}
	return result
}
