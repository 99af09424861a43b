package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
)

// Config contains runtime settings for the server and the CLI
type Config struct {
	LogLevel string
	LogFile  string // empty logs to stderr only
	Host     string // default 0.0.0.0
	Port     string // default PORT env or 8080

	Store struct {
		Driver      string // sqlite, postgres or neo4j
		SQLitePath  string
		DatabaseURL string
	}
	Neo4j struct {
		URI      string
		Username string
		Password string
		Database string
	}
	InHire struct {
		BaseURL string
		Tenant  string
		Token   string
		Timeout time.Duration
	} // unset BaseURL disables the external provider
	Anthropic struct {
		APIKey string
		Model  string
	} // unset APIKey disables enrichment
	Sync struct {
		MaxInFlight int           // 0 means unbounded
		Timeout     time.Duration // per sync run
		RetryAfter  time.Duration // sweep picks talents untouched for this long
		SweepBatch  int
	}
	CacheTTL        time.Duration
	SheetsCredsPath string
	MetricsEnabled  bool
}

// InHireEnabled reports whether an external provider is configured
func (c Config) InHireEnabled() bool {
	return c.InHire.BaseURL != ""
}

// Load populates config from environment variables, reading an optional .env first
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:       "info",
		Host:           "0.0.0.0",
		Port:           "8080",
		CacheTTL:       5 * time.Minute,
		MetricsEnabled: true,
	}
	cfg.Store.Driver = DriverSQLite
	cfg.Store.SQLitePath = "data/talentsync.db"
	cfg.InHire.Timeout = 15 * time.Second
	cfg.Anthropic.Model = "claude-sonnet-4-5"
	cfg.Sync.MaxInFlight = 16
	cfg.Sync.Timeout = 2 * time.Minute
	cfg.Sync.RetryAfter = 10 * time.Minute
	cfg.Sync.SweepBatch = 100

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogFile = os.Getenv("LOG_FILE")

	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")
	cfg.Neo4j.Database = os.Getenv("NEO4J_DATABASE")

	cfg.InHire.BaseURL = os.Getenv("INHIRE_BASE_URL")
	cfg.InHire.Tenant = os.Getenv("INHIRE_TENANT")
	cfg.InHire.Token = os.Getenv("INHIRE_TOKEN")

	cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		cfg.Anthropic.Model = v
	}

	cfg.SheetsCredsPath = os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH")

	var invalidVars []string
	parseDuration("INHIRE_TIMEOUT", &cfg.InHire.Timeout, &invalidVars)
	parseDuration("SYNC_TIMEOUT", &cfg.Sync.Timeout, &invalidVars)
	parseDuration("SYNC_RETRY_AFTER", &cfg.Sync.RetryAfter, &invalidVars)
	parseDuration("CACHE_TTL", &cfg.CacheTTL, &invalidVars)
	parseInt("SYNC_MAX_IN_FLIGHT", &cfg.Sync.MaxInFlight, &invalidVars)
	parseInt("SYNC_SWEEP_BATCH", &cfg.Sync.SweepBatch, &invalidVars)
	parseBool("METRICS_ENABLED", &cfg.MetricsEnabled, &invalidVars)

	if len(invalidVars) > 0 {
		return cfg, fmt.Errorf("invalid environment variables: %s", strings.Join(invalidVars, ", "))
	}

	var missingVars []string

	switch cfg.Store.Driver {
	case DriverSQLite:
		if cfg.Store.SQLitePath == "" {
			missingVars = append(missingVars, "SQLITE_PATH")
		}
	case DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			missingVars = append(missingVars, "DATABASE_URL")
		}
	case DriverNeo4j:
		if cfg.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	default:
		return cfg, fmt.Errorf("unsupported STORE_DRIVER %q (want sqlite, postgres or neo4j)", cfg.Store.Driver)
	}

	if cfg.InHire.BaseURL != "" && cfg.InHire.Token == "" {
		missingVars = append(missingVars, "INHIRE_TOKEN")
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	return cfg, nil
}

func parseDuration(name string, dst *time.Duration, invalid *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*invalid = append(*invalid, name)
		return
	}
	*dst = d
}

func parseInt(name string, dst *int, invalid *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*invalid = append(*invalid, name)
		return
	}
	*dst = n
}

func parseBool(name string, dst *bool, invalid *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*invalid = append(*invalid, name)
		return
	}
	*dst = b
}
