// Package config centralises all environment configuration for the chatbot.
// It should be imported only by the cmd packages (and test code).
// Business-logic layers receive an already-built Config via dependency
// injection.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Corpus sources.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// AI fallback providers.
const (
	AIProviderNone   = ""
	AIProviderStatic = "static"
	AIProviderVertex = "vertex"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple; prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port        string
	StaticDir   string
	CORSOrigins string

	// Corpus
	CorpusSource string
	CorpusPath   string
	WatchCorpus  bool

	// Data stores
	MongoURI   string
	DBName     string
	SQLitePath string

	// Google Sheets interaction log
	SheetsID              string
	SheetsName            string
	SheetsCredentialsFile string
	SheetsRPS             float64

	// Matching
	MatchThreshold  float64
	SearchThreshold float64
	SearchLimit     int

	// AI fallback
	AIProvider      string
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
	FallbackMessage string

	// Interaction logger
	LoggerWorkers int
	LogTimeout    time.Duration

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It exits on missing critical variables so mis-configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist; safe in production.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "3000"),
		StaticDir:   getEnv("STATIC_DIR", "public"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		CorpusSource: strings.ToLower(getEnv("CORPUS_SOURCE", SourceFile)),
		CorpusPath:   getEnv("CORPUS_PATH", "data/faq.yaml"),
		WatchCorpus:  getBool("WATCH_CORPUS", true),

		DBName:     getEnv("MONGODB_DB", "faq_chatbot"),
		SQLitePath: os.Getenv("SQLITE_PATH"),

		SheetsID:   os.Getenv("SHEETS_ID"),
		SheetsName: getEnv("SHEETS_NAME", "Interactions"),
		SheetsRPS:  getFloat("SHEETS_RPS", 1),

		MatchThreshold:  getFloat("MATCH_THRESHOLD", 0.65),
		SearchThreshold: getFloat("SEARCH_THRESHOLD", 0.2),
		SearchLimit:     getInt("SEARCH_LIMIT", 5),

		AIProvider:      strings.ToLower(os.Getenv("AI_PROVIDER")),
		Model:           getEnv("GCP_MODEL", "gemini-2.0-flash"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FallbackMessage: os.Getenv("FALLBACK_MESSAGE"),

		LoggerWorkers: getInt("LOGGER_WORKERS", 4),
		LogTimeout:    getDuration("LOG_TIMEOUT_SEC", 10),

		ReadTimeout:  getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout: getDuration("WRITE_TIMEOUT_SEC", 10),
	}

	switch cfg.CorpusSource {
	case SourceFile:
	case SourceMongo:
		cfg.MongoURI = must("MONGODB_URI")
	default:
		log.Fatalf("CORPUS_SOURCE must be %q or %q, got %q", SourceFile, SourceMongo, cfg.CorpusSource)
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}

	if cfg.SheetsID != "" {
		cfg.SheetsCredentialsFile = must("SHEETS_CREDENTIALS_FILE")
	}

	switch cfg.AIProvider {
	case AIProviderNone, AIProviderStatic:
	case AIProviderVertex:
		cfg.ProjectID = must("GCP_PROJECT_ID")
		cfg.Location = must("GCP_LOCATION")
	default:
		log.Fatalf("AI_PROVIDER must be empty, %q or %q, got %q", AIProviderStatic, AIProviderVertex, cfg.AIProvider)
	}

	return cfg
}

// Origins splits CORSOrigins into the comma-separated form Fiber expects.
func (c Config) Origins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	return time.Duration(getInt(key, defaultSec)) * time.Second
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q; using default %g", key, v, defaultVal)
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid %s=%q; using default %t", key, v, defaultVal)
	}
	return defaultVal
}
