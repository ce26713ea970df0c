package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAlgorithm          = "HS256"
	DefaultTokenMinutes       = 60
	DefaultPort               = "8080"
	DefaultGeminiModel        = "gemini-2.5-flash-preview-09-2025"
	DefaultGeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultChatTimeoutSeconds = 30
	DefaultLoginRateLimit     = 10
)

type Gemini struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	DatabaseURL         string  `yaml:"database_url"`
	JWTSecret           string  `yaml:"jwt_secret_key"`
	Algorithm           string  `yaml:"algorithm"`
	AccessTokenMinutes  int     `yaml:"access_token_expire_minutes"`
	AdminCreationSecret string  `yaml:"admin_creation_secret"`
	Port                string  `yaml:"port"`
	LogLevel            string  `yaml:"log_level"`
	MigrateOnStart      bool    `yaml:"migrate_on_start"`
	LoginRateLimit      float64 `yaml:"login_rate_limit"`
	AWSRegion           string  `yaml:"aws_region"`
	TranscriptTable     string  `yaml:"chat_transcript_table"`
	Gemini              Gemini  `yaml:"gemini"`
}

func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c Config) ChatTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

func defaults() Config {
	return Config{
		Algorithm:          DefaultAlgorithm,
		AccessTokenMinutes: DefaultTokenMinutes,
		Port:               DefaultPort,
		LogLevel:           "info",
		LoginRateLimit:     DefaultLoginRateLimit,
		Gemini: Gemini{
			Model:          DefaultGeminiModel,
			BaseURL:        DefaultGeminiBaseURL,
			TimeoutSeconds: DefaultChatTimeoutSeconds,
		},
	}
}

// Load reads an optional .env file, then the YAML file named by APP_HUB_CONFIG,
// then environment variables, each layer overriding the previous one.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := defaults()
	if path := os.Getenv("APP_HUB_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.Algorithm, "ALGORITHM")
	setString(&c.AdminCreationSecret, "ADMIN_CREATION_SECRET")
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.AWSRegion, "AWS_REGION")
	setString(&c.TranscriptTable, "CHAT_TRANSCRIPT_TABLE")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Gemini.BaseURL, "GEMINI_BASE_URL")

	return errors.Join(
		setInt(&c.AccessTokenMinutes, "ACCESS_TOKEN_EXPIRE_MINUTES"),
		setInt(&c.Gemini.TimeoutSeconds, "CHAT_TIMEOUT_SECONDS"),
		setFloat(&c.LoginRateLimit, "LOGIN_RATE_LIMIT"),
		setBool(&c.MigrateOnStart, "MIGRATE_ON_START"),
	)
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.AdminCreationSecret == "" {
		errs = append(errs, errors.New("ADMIN_CREATION_SECRET is required"))
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not supported", c.Algorithm))
	}
	if c.AccessTokenMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("CHAT_TIMEOUT_SECONDS must be positive"))
	}
	if c.LoginRateLimit <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
