package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"personals/internal"
)

const (
	SourceGoogle = "google"
	SourceXLSX   = "xlsx"
	SourceHTML   = "html"
)

type Config struct {
	SpreadsheetID      string
	CredentialsJSON    string
	CredentialsFile    string
	Source             string
	XLSXPath           string
	HTMLDir            string
	MirrorRange        string
	SubmissionsRange   string
	OutputPath         string
	MatchStrategy      string
	IDPolicy           string
	Timezone           string
	HistoryDBPath      string
	MetricsTextfile    string
	LogLevel           string
	LogFormat          string
	SampleSize         int
	RequestTimeoutSecs int
	WatchIntervalSecs  int
	WatchExportPath    string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SpreadsheetID:      strings.TrimSpace(getEnv("GOOGLE_SPREADSHEET_ID", "")),
		CredentialsJSON:    getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
		CredentialsFile:    getEnv("GOOGLE_CREDENTIALS_FILE", "google_credentials.json"),
		Source:             strings.ToLower(strings.TrimSpace(getEnv("SHEETS_SOURCE", SourceGoogle))),
		XLSXPath:           getEnv("SHEETS_XLSX_PATH", ""),
		HTMLDir:            getEnv("SHEETS_HTML_DIR", ""),
		MirrorRange:        getEnv("MIRROR_RANGE", "Mirror!A:O"),
		SubmissionsRange:   getEnv("SUBMISSIONS_RANGE", "Form Responses 1!A:Z"),
		OutputPath:         getEnv("PERSONALS_OUTPUT", filepath.Join(cwd, "src", "data", "personals.json")),
		MatchStrategy:      strings.ToLower(strings.TrimSpace(getEnv("MATCH_STRATEGY", "url"))),
		IDPolicy:           strings.ToLower(strings.TrimSpace(getEnv("ID_POLICY", "column"))),
		Timezone:           getEnv("TIMEZONE", "UTC"),
		HistoryDBPath:      getEnv("HISTORY_DB_PATH", filepath.Join(cwd, "data", "sync.db")),
		MetricsTextfile:    getEnv("METRICS_TEXTFILE", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		SampleSize:         getEnvInt("SAMPLE_SIZE", 3),
		RequestTimeoutSecs: getEnvInt("SHEETS_TIMEOUT_SEC", 30),
		WatchIntervalSecs:  getEnvInt("WATCH_INTERVAL_SEC", 900),
		WatchExportPath:    getEnv("WATCH_EXPORT_PATH", ""),
	}

	return cfg, nil
}

// Require reports a MISSING_CONFIG error when value is blank.
func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return internal.NewError(internal.CodeMissingConfig, "%s environment variable is required", name)
	}
	return nil
}

// RequireSource checks the settings the selected table source needs.
func (c Config) RequireSource() error {
	switch c.Source {
	case SourceGoogle:
		return c.Require("GOOGLE_SPREADSHEET_ID", c.SpreadsheetID)
	case SourceXLSX:
		return c.Require("SHEETS_XLSX_PATH", c.XLSXPath)
	case SourceHTML:
		return c.Require("SHEETS_HTML_DIR", c.HTMLDir)
	default:
		return internal.NewError(internal.CodeMissingConfig, "unsupported SHEETS_SOURCE: %s", c.Source)
	}
}

// Location resolves TIMEZONE, falling back to UTC.
func (c Config) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
