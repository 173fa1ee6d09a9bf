package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

type implLogger struct {
	logger *log.Logger
	out    io.Writer
	level  string
	format string
}

// New creates a Logger writing to stdout in the given format
// ("text" or "json").
func New(level, format string) Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a Logger writing to an arbitrary writer.
func NewWithWriter(w io.Writer, level, format string) Logger {
	return &implLogger{
		logger: log.New(w, "", log.LstdFlags),
		out:    w,
		level:  strings.ToLower(level),
		format: strings.ToLower(format),
	}
}

var levelRanks = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

func (l *implLogger) shouldLog(level string) bool {
	current, ok := levelRanks[l.level]
	if !ok {
		current = 1 // default to info
	}

	target, ok := levelRanks[level]
	if !ok {
		return true
	}

	return target >= current
}

func (l *implLogger) write(level, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	formatted := fmt.Sprintf(msg, args...)

	if l.format == "json" {
		line, err := json.Marshal(map[string]string{
			"time":    time.Now().Format(time.RFC3339),
			"level":   level,
			"message": formatted,
		})
		if err == nil {
			fmt.Fprintln(l.out, string(line))
			return
		}
		// fall through to text on marshal failure
	}

	l.logger.Printf("[%s] %s", strings.ToUpper(level), formatted)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.write("debug", msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.write("info", msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.write("warn", msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.write("error", msg, args...)
}
