package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	SessionStoreMemory    = "memory"
	SessionStoreFirestore = "firestore"
)

type Config struct {
	BotToken string
	BotDebug bool
	LogLevel string
	AppEnv   string
	HTTPPort int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	SessionStore string
	FFmpegPath   string
	AudioTmpDir  string
}

func LoadConfig() (*Config, error) {
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	httpPort, err := intEnv("HTTP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	llmTimeout := 45 * time.Second
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		llmTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
	}

	cfg := &Config{
		BotToken:                os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotDebug:                os.Getenv("BOT_DEBUG") == "true",
		LogLevel:                envOr("LOG_LEVEL", "info"),
		AppEnv:                  envOr("APP_ENV", "production"),
		HTTPPort:                httpPort,
		DBHost:                  envOr("DB_HOST", "localhost"),
		DBPort:                  dbPort,
		DBUser:                  os.Getenv("DB_USER"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  os.Getenv("DB_NAME"),
		DBSSLMode:               envOr("DB_SSLMODE", "disable"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:              llmTimeout,
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		SessionStore:            envOr("SESSION_STORE", SessionStoreMemory),
		FFmpegPath:              envOr("FFMPEG_PATH", "ffmpeg"),
		AudioTmpDir:             envOr("AUDIO_TMP_DIR", os.TempDir()),
	}

	if cfg.SessionStore != SessionStoreMemory && cfg.SessionStore != SessionStoreFirestore {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: use %q or %q", cfg.SessionStore, SessionStoreMemory, SessionStoreFirestore)
	}
	if cfg.SessionStore == SessionStoreFirestore && cfg.FirebaseProjectID == "" {
		return nil, fmt.Errorf("SESSION_STORE=%s requires FIREBASE_PROJECT_ID", SessionStoreFirestore)
	}

	return cfg, nil
}

// IsDevelopment reports whether error responses may carry stack traces.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// PostgresURL is the URL form used by both pgxpool and golang-migrate.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
