package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "tabsynth-server"
	AppDescription = "Privacy-Safe Tabular Synthetic Data Server"
	AppVersion     = "0.1.0"

	// API constants
	APIVersion = "v1"
	APIPrefix  = "/api/v1"

	// Default configuration values
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Generation loop defaults. The loop over-requests each pass to
	// compensate for rows lost to leakage filtering and deduplication:
	// ceil(needed * OverRequestFactor) + OverRequestPadding.
	DefaultMaxAttempts = 10
	OverRequestFactor  = 1.1
	OverRequestPadding = 10
	DefaultTargetCount = 1000

	// Storage defaults
	DefaultStorageTimeout    = 30 * time.Second
	DefaultConnectionTimeout = 10 * time.Second

	// Oracle defaults
	DefaultOracleURL     = "http://localhost:11434"
	DefaultOracleModel   = "gemma3:4b"
	DefaultOracleTimeout = 300 * time.Second

	// HTTP headers and content types
	HeaderContentType  = "Content-Type"
	HeaderRequestID    = "X-Request-ID"
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	ContentTypeJSON    = "application/json"
	ContentTypeCSV     = "text/csv"

	// File size limits
	MaxUploadSize = 100 * 1024 * 1024 // 100MB

	// Pagination defaults
	DefaultPageSize = 100
	MaxPageSize     = 1000

	// Cache defaults
	DefaultCacheTTL = 1 * time.Hour
)
