package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds logger configuration.
type Config struct {
	Level        Level
	Format       Format
	EnableColors bool
	TimeFormat   string
	Output       io.Writer
}

// DefaultConfig returns console output at INFO level.
func DefaultConfig() *Config {
	return &Config{
		Level:        LevelInfo,
		Format:       FormatConsole,
		EnableColors: true,
		TimeFormat:   time.RFC3339,
		Output:       os.Stdout,
	}
}

// LoadFromEnv builds a Config from LOG_LEVEL, LOG_FORMAT and LOG_COLOR.
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}
	if format := strings.ToLower(os.Getenv("LOG_FORMAT")); format == "json" {
		config.Format = FormatJSON
	}
	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = strings.ToLower(color) == "true" || color == "1"
	}
	return config
}
