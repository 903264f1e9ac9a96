// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
)

// Engine defaults, overridable per invocation via flags.
const (
	DefaultDepthLimit  = 8
	DefaultWorkers     = 8
	DefaultMaxFileSize = 16 * 1024 * 1024 // 16MB, matching typical feed caps
)

// Config holds all configuration for the treetab CLI.
type Config struct {
	DepthLimit  int   // TREETAB_DEPTH_LIMIT, default 8
	Workers     int   // TREETAB_WORKERS, default 8
	MaxFileSize int64 // TREETAB_MAX_FILE_SIZE, default 16MB

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		DepthLimit:  getEnvInt("TREETAB_DEPTH_LIMIT", DefaultDepthLimit),
		Workers:     getEnvInt("TREETAB_WORKERS", DefaultWorkers),
		MaxFileSize: int64(getEnvInt("TREETAB_MAX_FILE_SIZE", DefaultMaxFileSize)),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
