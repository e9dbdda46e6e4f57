package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-highlighter/internal/domain"
)

// Seed sources.
const (
	SeedSourceFixtures = "fixtures"
	SeedSourceSupabase = "supabase"
)

// Documents known to the viewer when KNOWN_DOCUMENTS is not set.
const (
	PrimaryDocumentURL   = "https://arxiv.org/pdf/1708.08021.pdf"
	SecondaryDocumentURL = "https://arxiv.org/pdf/1604.02480.pdf"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	UploadPath         string
	MaxFileSize        int64
	LogLevel           string
	LogPretty          bool
	DefaultDocumentURL string
	KnownDocuments     []string
	SeedSource         string
	SupabaseURL        string
	SupabaseKey        string
	RenderScale        float64
	FetchTimeout       time.Duration
	CORSOrigins        []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// PaaS platforms provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:         getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogPretty:          getEnvBoolOrDefault("LOG_PRETTY", false),
		DefaultDocumentURL: getEnvOrDefault("DEFAULT_DOCUMENT_URL", PrimaryDocumentURL),
		KnownDocuments:     getEnvListOrDefault("KNOWN_DOCUMENTS", []string{PrimaryDocumentURL, SecondaryDocumentURL}),
		SeedSource:         strings.ToLower(getEnvOrDefault("SEED_SOURCE", SeedSourceFixtures)),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		RenderScale:        getEnvFloatOrDefault("RENDER_SCALE", 1.5),
		FetchTimeout:       getEnvDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		CORSOrigins: getEnvListOrDefault("CORS_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:4173",
			"http://localhost:3000",
		}),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogPretty reports whether logs go to a human-readable console writer
func (c *AppConfig) GetLogPretty() bool {
	return c.LogPretty
}

// GetDefaultDocumentURL returns the document opened when no url query is given
func (c *AppConfig) GetDefaultDocumentURL() string {
	return c.DefaultDocumentURL
}

// GetKnownDocuments returns the documents the session toggle cycles through
func (c *AppConfig) GetKnownDocuments() []string {
	return append([]string(nil), c.KnownDocuments...)
}

// GetSeedSource returns where seed highlights are read from
func (c *AppConfig) GetSeedSource() string {
	return c.SeedSource
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func (c *AppConfig) GetRenderScale() float64 {
	return c.RenderScale
}

func (c *AppConfig) GetFetchTimeout() time.Duration {
	return c.FetchTimeout
}

func (c *AppConfig) GetCORSOrigins() []string {
	return append([]string(nil), c.CORSOrigins...)
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue > 0 {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
