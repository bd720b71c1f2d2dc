package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	Redis     RedisConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Vision    VisionConfig
	OpenAI    OpenAIConfig
	UISP      UISPConfig
	WhatsApp  WhatsAppConfig
	Reminder  ReminderConfig
	Cron      CronConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	MaxUploadBytes int64
}

// IsDevelopment reports whether the service runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
}

// Enabled reports whether the email channel has credentials.
func (e EmailConfig) Enabled() bool {
	return e.SendGridAPIKey != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

type AuthConfig struct {
	AllowedEmails []string
	BcryptCost    int
}

type VisionConfig struct {
	Provider          string // openai or google
	GoogleCredentials string
	GoogleCredFile    string
}

type OpenAIConfig struct {
	APIKey         string
	VisionModel    string
	PromptModel    string
	ImageModel     string
	ImageSize      string
	MaxTokens      int
	ImageOutputDir string
}

type UISPConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type WhatsAppConfig struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	SystemToken   string
	VerifyToken   string
	AutoReply     string
	Timeout       time.Duration
}

type ReminderConfig struct {
	MinOutstanding      float64
	DevClientName       string
	DevReceiverNumber   string
	Concurrency         int
	Timezone            string
	PaymentTemplateName string
	FinalTemplateName   string
}

type CronConfig struct {
	TriggerToken    string
	Enabled         bool
	PaymentSchedule string
	FinalSchedule   string
	Timezone        string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:    getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
			AllowedOrigins: getListEnv("ALLOWED_ORIGINS", []string{"*"}),
			Environment:    getEnv("APP_ENV", "production"),
			MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 20*1024*1024)),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "docflow"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		JWT: JWTConfig{
			Secret:         getEnvRequired("JWT_SECRET"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:       getEnv("FROM_NAME", "Billing"),
			CompanyName:    getEnv("COMPANY_NAME", "Docflow"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "127.0.0.1"),
			Port:         getEnv("REDIS_HOST_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_CONNECT_TIMEOUT", 10*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 5),
			Window:      rateLimitWindow(),
			KeyPrefix:   getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
		Auth: AuthConfig{
			AllowedEmails: getListEnv("ALLOWED_EMAILS", nil),
			BcryptCost:    getIntEnv("BCRYPT_COST", 12),
		},
		Vision: VisionConfig{
			Provider:          getEnv("VISION_PROVIDER", "openai"),
			GoogleCredentials: getEnv("GOOGLE_CREDENTIALS", ""),
			GoogleCredFile:    getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			VisionModel:    getEnv("OPENAI_VISION_MODEL", "gpt-4.1-mini"),
			PromptModel:    getEnv("OPENAI_PROMPT_MODEL", "gpt-4o-mini"),
			ImageModel:     getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
			ImageSize:      getEnv("OPENAI_IMAGE_SIZE", "1024x1024"),
			MaxTokens:      getIntEnv("OPENAI_MAX_TOKENS", 4096),
			ImageOutputDir: getEnv("IMAGE_OUTPUT_DIR", ""),
		},
		UISP: UISPConfig{
			BaseURL:  getEnv("UISP_API_BASE_URL", ""),
			APIKey:   getEnv("UISP_API_KEY", ""),
			Timeout:  getDurationEnv("UISP_TIMEOUT", 30*time.Second),
			CacheTTL: getDurationEnv("UISP_CACHE_TTL", 2*time.Minute),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:       getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getEnv("WHATSAPP_API_VERSION", "v23.0"),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			SystemToken:   getEnv("WHATSAPP_SYSTEM_TOKEN", ""),
			VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			AutoReply: getEnv("WHATSAPP_AUTO_REPLY",
				"Hello, thank you for contacting us. This number is not currently set up to receive messages."),
			Timeout: getDurationEnv("WHATSAPP_TIMEOUT", 15*time.Second),
		},
		Reminder: ReminderConfig{
			MinOutstanding:      getFloatEnv("REMINDER_MIN_OUTSTANDING", 10),
			DevClientName:       getEnv("REMINDER_DEV_CLIENT_NAME", ""),
			DevReceiverNumber:   getEnv("DEV_TEST_RECEIVER_NUMBER", ""),
			Concurrency:         getIntEnv("REMINDER_CONCURRENCY", 4),
			Timezone:            getEnv("REMINDER_TIMEZONE", "UTC"),
			PaymentTemplateName: getEnv("REMINDER_PAYMENT_TEMPLATE", "payment_reminder"),
			FinalTemplateName:   getEnv("REMINDER_FINAL_TEMPLATE", "final_reminder"),
		},
		Cron: CronConfig{
			TriggerToken:    getEnv("CRON_TRIGGER_TOKEN", ""),
			Enabled:         getBoolEnv("CRON_ENABLED", false),
			PaymentSchedule: getEnv("CRON_PAYMENT_SCHEDULE", "0 9 25 * *"),
			FinalSchedule:   getEnv("CRON_FINAL_SCHEDULE", "0 9 5 * *"),
			Timezone:        getEnv("CRON_TIMEZONE", "UTC"),
		},
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

// rateLimitWindow prefers RATE_LIMIT_WINDOW (Go duration) and falls back to the
// millisecond form RATE_LIMIT_WINDOW_MS.
func rateLimitWindow() time.Duration {
	if os.Getenv("RATE_LIMIT_WINDOW") != "" {
		return getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute)
	}
	if ms := getIntEnv("RATE_LIMIT_WINDOW_MS", 0); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return 15 * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty entries.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
