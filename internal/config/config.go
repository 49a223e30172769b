package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Workshop WorkshopConfig
	Presence PresenceConfig
	Coach    CoachConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Version            string
	Environment        string
	ContextCwd         string
	EnableWatcher      bool
	LogFilePath        string
	PresenceLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
	InstanceID         string
}

type DatabaseConfig struct {
	// Empty keeps progress in memory
	Connection string
}

type WorkshopConfig struct {
	CatalogPath string
	CacheTTL    time.Duration
	Deployed    bool
	GithubRepo  string
}

type PresenceConfig struct {
	StaleAfter    time.Duration
	ScorePolicy   string // "distance" | "staleness"
	HalfLife      time.Duration
	StreamTick    time.Duration
	PromoEnabled  bool
	LearningHost  string
	NatsSubject   string
	RedisChannel  string
	BusBufferSize int64
}

type CoachConfig struct {
	InitialDelay time.Duration
	CharDelay    time.Duration
}

type APIKeys struct {
	JWTSecret string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Load reads .env from EPICSHOP_CONTEXT_CWD (the working directory by
// default) and then the environment.
func Load() *Config {
	contextCwd := getEnv("EPICSHOP_CONTEXT_CWD", "")
	if contextCwd == "" {
		contextCwd, _ = os.Getwd()
	}
	if err := godotenv.Load(filepath.Join(contextCwd, ".env")); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	hostname, _ := os.Hostname()

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5639"),
			Version:            getEnv("EPICSHOP_APP_VERSION", "dev"),
			Environment:        getEnv("GO_ENV", "development"),
			ContextCwd:         contextCwd,
			EnableWatcher:      getEnvAsBool("EPICSHOP_ENABLE_WATCHER", true),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			PresenceLogPath:    getEnv("PRESENCE_LOG_FILE_PATH", "presence.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5639"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			InstanceID:         getEnv("INSTANCE_ID", hostname),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Workshop: WorkshopConfig{
			CatalogPath: getEnv("WORKSHOP_CATALOG_PATH", filepath.Join(contextCwd, "workshop.yaml")),
			CacheTTL:    getEnvAsDuration("WORKSHOP_CACHE_TTL", 30*time.Second),
			Deployed:    getEnvAsBool("EPICSHOP_DEPLOYED", false),
			GithubRepo:  getEnv("EPICSHOP_GITHUB_REPO", ""),
		},
		Presence: PresenceConfig{
			StaleAfter:    getEnvAsDuration("PRESENCE_STALE_AFTER", 5*time.Minute),
			ScorePolicy:   getEnv("PRESENCE_SCORE_POLICY", "distance"),
			HalfLife:      getEnvAsDuration("PRESENCE_HALF_LIFE", 2*time.Minute),
			StreamTick:    getEnvAsDuration("PRESENCE_STREAM_TICK", 15*time.Second),
			PromoEnabled:  getEnvAsBool("PRESENCE_PROMO_ENABLED", true),
			LearningHost:  getEnv("PRESENCE_LEARNING_HOST", "epicweb.dev"),
			NatsSubject:   getEnv("PRESENCE_NATS_SUBJECT", "presence.>"),
			RedisChannel:  getEnv("PRESENCE_REDIS_CHANNEL", "presence_cluster"),
			BusBufferSize: int64(getEnvAsInt("PRESENCE_BUS_BUFFER", 256)),
		},
		Coach: CoachConfig{
			InitialDelay: getEnvAsDuration("COACH_INITIAL_DELAY", time.Second),
			CharDelay:    getEnvAsDuration("COACH_CHAR_DELAY", 100*time.Millisecond),
		},
		Keys: APIKeys{
			JWTSecret: getEnv("JWT_SECRET", ""),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
