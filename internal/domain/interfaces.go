package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogPretty() bool
	GetDefaultDocumentURL() string
	GetKnownDocuments() []string
	GetSeedSource() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetRenderScale() float64
	GetFetchTimeout() time.Duration
	GetCORSOrigins() []string
}
