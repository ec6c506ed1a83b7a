package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend origin used when nothing else is configured
const DefaultAPIURL = "http://localhost:8080/api"

// Config holds all configuration for the CLI
type Config struct {
	// API Configuration
	API APIConfig

	// Session Store Configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig

	// Credentials for non-interactive login
	Credentials CredentialsConfig

	// Stub backend configuration (bookify-stub only)
	Stub StubConfig
}

// APIConfig holds the backend location
type APIConfig struct {
	URL string // empty when not set in the environment
}

// SessionConfig selects where the session fields are persisted
type SessionConfig struct {
	Backend string // keyring, sqlite, memory
	Path    string // sqlite file, only used by the sqlite backend
	Profile string // namespace for keyring entries
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// CredentialsConfig holds credentials read from the environment (useful for CI)
type CredentialsConfig struct {
	Email    string
	Password string
}

// StubConfig configures the local stub backend
type StubConfig struct {
	Addr             string
	DatabaseURL      string
	JWTSecret        string // generated at startup when empty
	AllowedOrigins   []string
	PaymentKeyID     string
	PaymentKeySecret string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	backend := os.Getenv("BOOKIFY_SESSION_BACKEND")
	if backend == "" {
		backend = "keyring"
	}

	sessionPath := os.Getenv("BOOKIFY_SESSION_PATH")
	if sessionPath == "" {
		sessionPath = defaultSessionPath()
	}

	profile := os.Getenv("BOOKIFY_PROFILE")
	if profile == "" {
		profile = "default"
	}

	// Logging configuration - quiet by default, the CLI prints its own output
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	stubAddr := os.Getenv("BOOKIFY_STUB_ADDR")
	if stubAddr == "" {
		stubAddr = ":8080"
	}

	stubDB := os.Getenv("BOOKIFY_STUB_DATABASE")
	if stubDB == "" {
		stubDB = ":memory:"
	}

	origins := []string{"http://localhost:3000"}
	if v := os.Getenv("BOOKIFY_STUB_ALLOWED_ORIGINS"); v != "" {
		origins = splitList(v)
	}

	keyID := os.Getenv("RAZORPAY_KEY_ID")
	if keyID == "" {
		keyID = "rzp_test_bookify"
	}
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keySecret == "" {
		keySecret = "bookify_test_secret"
	}

	return &Config{
		API: APIConfig{
			URL: os.Getenv("BOOKIFY_API_URL"),
		},
		Session: SessionConfig{
			Backend: backend,
			Path:    sessionPath,
			Profile: profile,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		Credentials: CredentialsConfig{
			Email:    os.Getenv("BOOKIFY_EMAIL"),
			Password: os.Getenv("BOOKIFY_PASSWORD"),
		},
		Stub: StubConfig{
			Addr:             stubAddr,
			DatabaseURL:      stubDB,
			JWTSecret:        os.Getenv("BOOKIFY_STUB_JWT_SECRET"),
			AllowedOrigins:   origins,
			PaymentKeyID:     keyID,
			PaymentKeySecret: keySecret,
		},
	}, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultSessionPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "bookify-session.sqlite"
	}
	return filepath.Join(homeDir, ".config", "bookify", "session.sqlite")
}
