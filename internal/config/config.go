package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/macro-tracker/internal/logger"
)

type Config struct {
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	Storage       StorageConfig
	AI            AIConfig
	Auth          AuthConfig
	TelegramToken string
	Location      *time.Location
	SessionTTL    time.Duration
	Logger        LoggerConfig
}

type HTTPConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string for the postgres driver
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type AIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	Identifier    string // "gemini" or "rekognition"
	AWSRegion     string
	LookupTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parsing helpers collect their errors instead of failing on the first one
type parser struct {
	errs []error
}

func (p *parser) duration(key, def string) time.Duration {
	raw := getEnvOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return 0
	}
	return d
}

func (p *parser) int(key, def string) int {
	raw := getEnvOrDefault(key, def)
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return 0
	}
	return n
}

func (p *parser) location(key, def string) *time.Location {
	raw := getEnvOrDefault(key, def)
	loc, err := time.LoadLocation(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: unknown time zone %q", key, raw))
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	var p parser

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:           getEnvOrDefault("HTTP_ADDR", ":8080"),
			ReadTimeout:    p.duration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout:   p.duration("HTTP_WRITE_TIMEOUT", "60s"),
			AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "macro_tracker"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", "0"),
		},
		Storage: StorageConfig{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        getEnvOrDefault("S3_REGION", getEnvOrDefault("AWS_REGION", "us-east-1")),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: strings.TrimSuffix(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
		},
		AI: AIConfig{
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			Identifier:    strings.ToLower(getEnvOrDefault("AI_IDENTIFIER", "gemini")),
			AWSRegion:     getEnvOrDefault("AWS_REGION", "us-east-1"),
			LookupTimeout: p.duration("AI_LOOKUP_TIMEOUT", "20s"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  p.duration("JWT_TTL", "72h"),
		},
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Location:      p.location("APP_TIMEZONE", "UTC"),
		SessionTTL:    p.duration("SESSION_TTL", "1h"),
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := errors.Join(append(p.errs, cfg.Validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AI.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.AI.Identifier != "gemini" && c.AI.Identifier != "rekognition" {
		errs = append(errs, fmt.Errorf("AI_IDENTIFIER must be gemini or rekognition, got %q", c.AI.Identifier))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required"))
	}
	if c.Storage.PublicBaseURL == "" {
		errs = append(errs, errors.New("S3_PUBLIC_BASE_URL is required"))
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together"))
	}
	if c.AI.LookupTimeout < 0 || c.SessionTTL < 0 || c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("timeouts and TTLs must not be negative"))
	}
	return errors.Join(errs...)
}
