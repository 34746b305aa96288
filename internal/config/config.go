// Package config loads application settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	DatabaseDSN  string
	QueryTimeout time.Duration
	ExportDir    string
}

// Load reads configuration from environment variables with reasonable
// defaults. A .env file in the working directory is applied first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	dsn := os.Getenv("DISHLEDGER_DB")
	if dsn == "" {
		dsn = "dishledger.db"
	}

	exportDir := os.Getenv("DISHLEDGER_EXPORT_DIR")
	if exportDir == "" {
		exportDir = "."
	}

	timeout := 60
	if raw := os.Getenv("DISHLEDGER_QUERY_TIMEOUT"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			log.Printf("invalid DISHLEDGER_QUERY_TIMEOUT value %q, defaulting to %d", raw, timeout)
		} else {
			timeout = seconds
		}
	}

	return Config{
		DatabaseDSN:  dsn,
		QueryTimeout: time.Duration(timeout) * time.Second,
		ExportDir:    exportDir,
	}
}
