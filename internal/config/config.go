package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Firebase (auth provider + document database)
	FirebaseProjectID       string `envconfig:"FIREBASE_PROJECT_ID" required:"true"`
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH" default:""`
	// Секретное поле БЕЗ envconfig тега, читается из Docker secrets
	FirebaseWebAPIKey string

	// Generation service (external REST collaborator)
	GeneratorBaseURL string        `envconfig:"GENERATOR_BASE_URL" required:"true"`
	GeneratorTimeout time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"120s"`

	// Design history sidebar
	DesignsCollection string        `envconfig:"DESIGNS_COLLECTION" default:"designs"`
	SidebarPageSize   int           `envconfig:"SIDEBAR_PAGE_SIZE" default:"10"`
	SidebarLiveFeed   bool          `envconfig:"SIDEBAR_LIVE_FEED" default:"true"`
	SidebarPollPeriod time.Duration `envconfig:"SIDEBAR_POLL_PERIOD" default:"15s"`

	// Session tokens issued after provider sign-in
	SessionTokenTTL time.Duration `envconfig:"SESSION_TOKEN_TTL" default:"24h"`
	// Секретное поле БЕЗ envconfig тега
	SessionSecret string

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// AllowedOrigins разбирает строку CORS_ALLOWED_ORIGINS в срез.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации greenbuilder: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.SessionSecret, loadErr = ReadSecret("session_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.FirebaseWebAPIKey, loadErr = ReadSecret("firebase_web_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация GreenBuilder загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.ServerPort)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Firebase Project: %s", cfg.FirebaseProjectID)
	log.Printf("  Generator URL: %s", cfg.GeneratorBaseURL)
	log.Printf("  Designs Collection: %s (page size %d, live feed %t)",
		cfg.DesignsCollection, cfg.SidebarPageSize, cfg.SidebarLiveFeed)
	log.Println("  Session Secret: [ЗАГРУЖЕН]")
	log.Println("  Firebase Web API Key: [ЗАГРУЖЕН]")

	return &cfg, nil
}
