package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Source   SourceConfig
	Fetch    FetchConfig
	Extract  ExtractConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	State    StateConfig
	Output   OutputConfig
	Daemon   DaemonConfig
}

// SourceConfig describes where documents are discovered
type SourceConfig struct {
	ListingURL  string
	BaseURL     string
	Keywords    []string
	UserAgent   string
	PageTimeout time.Duration
}

// FetchConfig holds download settings. InsecureSkipVerify applies to the
// document fetcher only: the source site serves a broken certificate chain.
type FetchConfig struct {
	DownloadDir        string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// ExtractConfig holds text and field extraction settings
type ExtractConfig struct {
	Method          string // "pdftotext" | "native"
	Pdftotext       string
	StrategyFile    string
	MaxRecords      int
	Workers         int
	DocTimeout      time.Duration
	DefaultDistrict string
}

// CatalogConfig holds catalog store settings
type CatalogConfig struct {
	Kind               string // "http" | "postgres" | "sqlite" | "none"
	BackendURL         string
	APIKey             string
	RequestTimeout     time.Duration
	PingTimeout        time.Duration
	UploadDelay        time.Duration
	ClearDelay         time.Duration
	InsecureSkipVerify bool
	SQLitePath         string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// StateConfig holds the local document ledger location
type StateConfig struct {
	SQLitePath string
}

// OutputConfig holds artifact settings
type OutputConfig struct {
	Dir     string
	Formats []string // json, csv, xlsx, report
}

// DaemonConfig holds long-running service settings
type DaemonConfig struct {
	WatchDirs []string
	Schedule  string
	AdminAddr string
	GRPCAddr  string
	Debounce  time.Duration
}

const (
	DefaultListingURL = "https://www.volgograd.ru/vo-project/obekty-stroitelstva-natsionalnykh-proektov/"
	DefaultBaseURL    = "https://www.volgograd.ru"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DefaultKeywords are matched against link text and paths during discovery.
var DefaultKeywords = []string{
	"благоустройство",
	"объекты благоустройства",
	"общественная территория",
	"парк",
	"сквер",
	"площадка",
	"набережная",
	"бульвар",
}

// LoadConfig loads configuration from environment variables, reading an optional .env first
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Source: SourceConfig{
			ListingURL:  getEnv("SOURCE_LISTING_URL", DefaultListingURL),
			BaseURL:     getEnv("SOURCE_BASE_URL", DefaultBaseURL),
			Keywords:    getEnvAsList("SOURCE_KEYWORDS", DefaultKeywords),
			UserAgent:   getEnv("SOURCE_USER_AGENT", DefaultUserAgent),
			PageTimeout: getEnvAsDuration("SOURCE_PAGE_TIMEOUT", 10*time.Second),
		},
		Fetch: FetchConfig{
			DownloadDir:        getEnv("FETCH_DOWNLOAD_DIR", "./data/pdfs"),
			Timeout:            getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
			InsecureSkipVerify: getEnvAsBool("FETCH_INSECURE_TLS", true),
		},
		Extract: ExtractConfig{
			Method:          getEnv("EXTRACT_METHOD", "native"),
			Pdftotext:       getEnv("PDFTOTEXT_BIN", "pdftotext"),
			StrategyFile:    getEnv("EXTRACT_STRATEGY_FILE", ""),
			MaxRecords:      getEnvAsInt("EXTRACT_MAX_RECORDS", 100),
			Workers:         getEnvAsInt("EXTRACT_WORKERS", 1),
			DocTimeout:      getEnvAsDuration("EXTRACT_DOC_TIMEOUT", 3*time.Minute),
			DefaultDistrict: getEnv("EXTRACT_DEFAULT_DISTRICT", "Не указан"),
		},
		Catalog: CatalogConfig{
			Kind:               getEnv("CATALOG_KIND", "http"),
			BackendURL:         getEnv("CATALOG_URL", "http://localhost:5000"),
			APIKey:             getEnv("CATALOG_API_KEY", ""),
			RequestTimeout:     getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
			PingTimeout:        getEnvAsDuration("CATALOG_PING_TIMEOUT", 5*time.Second),
			UploadDelay:        getEnvAsDuration("CATALOG_UPLOAD_DELAY", 100*time.Millisecond),
			ClearDelay:         getEnvAsDuration("CATALOG_CLEAR_DELAY", 50*time.Millisecond),
			InsecureSkipVerify: getEnvAsBool("CATALOG_INSECURE_TLS", false),
			SQLitePath:         getEnv("CATALOG_SQLITE_PATH", "./data/catalog.db"),
		},
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		State: StateConfig{
			SQLitePath: getEnv("STATE_DB_PATH", "./data/state.db"),
		},
		Output: OutputConfig{
			Dir:     getEnv("OUTPUT_DIR", "./data/output"),
			Formats: getEnvAsList("OUTPUT_FORMATS", []string{"json", "csv", "report"}),
		},
		Daemon: DaemonConfig{
			WatchDirs: getEnvAsList("WATCH_DIRS", nil),
			Schedule:  getEnv("DISCOVERY_SCHEDULE", "@daily"),
			AdminAddr: getEnv("ADMIN_ADDR", ":8081"),
			GRPCAddr:  getEnv("GRPC_ADDR", ":8080"),
			Debounce:  getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Source.ListingURL == "" {
		return NewAppError("CONFIG_ERROR", "SOURCE_LISTING_URL is required", ErrInvalidInput)
	}
	if c.Fetch.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "FETCH_TIMEOUT must be positive", ErrInvalidInput)
	}
	switch c.Extract.Method {
	case "native", "pdftotext":
	default:
		return NewAppError("CONFIG_ERROR", "EXTRACT_METHOD must be native or pdftotext", ErrInvalidInput)
	}
	switch c.Catalog.Kind {
	case "http":
		if c.Catalog.BackendURL == "" {
			return NewAppError("CONFIG_ERROR", "CATALOG_URL is required", ErrInvalidInput)
		}
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
		}
	case "sqlite":
		if c.Catalog.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "CATALOG_SQLITE_PATH is required", ErrInvalidInput)
		}
	case "none":
	default:
		return NewAppError("CONFIG_ERROR", "CATALOG_KIND must be http, postgres, sqlite or none", ErrInvalidInput)
	}
	if c.Extract.Workers < 1 {
		c.Extract.Workers = 1
	}
	return nil
}
