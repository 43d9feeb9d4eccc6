package log

import (
	"fmt"
	"log/slog"
	"strings"
)

type Key struct{}

// LoggerKey stores the *slog.Logger in a command context.
var LoggerKey = Key{}

// LevelTrace sits below debug. HTTP traffic is logged at this level.
const LevelTrace = slog.LevelDebug - 4

var levels = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a log-level setting to its slog level. An empty setting means error.
func ParseLevel(level string) (slog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return slog.LevelError, nil
	}
	if l, ok := levels[level]; ok {
		return l, nil
	}
	return slog.LevelError, fmt.Errorf("invalid log level %q, must be one of trace|debug|info|warn|error", level)
}

// replaceLevelName prints LevelTrace as TRACE instead of DEBUG-4.
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
