package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fields is a map of structured log data.
type Fields map[string]any

// LogEntry is a single log record handed to a Formatter.
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
}

// Formatter encodes a LogEntry for output.
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// ---------------------------------------------------------------------------
// Console formatter
// ---------------------------------------------------------------------------

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

type consoleFormatter struct {
	config *Config
}

// NewConsoleFormatter returns a human-readable formatter.
func NewConsoleFormatter(config *Config) Formatter {
	return &consoleFormatter{config: config}
}

func (f *consoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	b.WriteString(entry.Timestamp.Format(f.config.TimeFormat))
	b.WriteByte(' ')

	level := fmt.Sprintf("%-5s", entry.Level)
	if f.config.EnableColors {
		b.WriteString(f.levelColor(entry.Level) + level + colorReset)
	} else {
		b.WriteString(level)
	}

	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *consoleFormatter) levelColor(l Level) string {
	switch l {
	case LevelDebug:
		return colorGray
	case LevelInfo:
		return colorBlue
	case LevelWarn:
		return colorYellow
	default:
		return colorRed
	}
}

// ---------------------------------------------------------------------------
// JSON formatter
// ---------------------------------------------------------------------------

type jsonFormatter struct {
	config *Config
}

// NewJSONFormatter returns a line-delimited JSON formatter.
func NewJSONFormatter(config *Config) Formatter {
	return &jsonFormatter{config: config}
}

func (f *jsonFormatter) Format(entry *LogEntry) ([]byte, error) {
	record := make(map[string]any, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		record[k] = v
	}
	record["time"] = entry.Timestamp.Format(f.config.TimeFormat)
	record["level"] = entry.Level.String()
	record["message"] = entry.Message
	if entry.Error != nil {
		record["error"] = entry.Error.Error()
	}

	out, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
