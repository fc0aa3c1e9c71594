package logger

import (
	"errors"
	"os"
	"strconv"
)

var errUnknownOutput = errors.New("unknown log output")

// DefaultConfig reads FTPCONSOLE_LOG_LEVEL, FTPCONSOLE_LOG_OUTPUT and
// FTPCONSOLE_DEBUG, falling back to the unprefixed LOG_LEVEL, LOG_OUTPUT and DEBUG.
func DefaultConfig() *Config {
	return &Config{
		Level:  envOr("LOG_LEVEL", "info"),
		Debug:  envBool("DEBUG"),
		Output: envOr("LOG_OUTPUT", OutputStdout),
	}
}

func lookupEnv(key string) string {
	if v := os.Getenv("FTPCONSOLE_" + key); v != "" {
		return v
	}

	return os.Getenv(key)
}

func envOr(key, fallback string) string {
	if v := lookupEnv(key); v != "" {
		return v
	}

	return fallback
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(lookupEnv(key))

	return err == nil && b
}
