package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const MaintenanceJobInterval = 15 * time.Minute

// Timeout for fire-and-forget access log writes
const AccessLogWriteTimeout = 5 * time.Second

// Upstream provider request timeouts
const (
	PaymentRequestTimeout = 30 * time.Second
	EmailRequestTimeout   = 15 * time.Second
)
