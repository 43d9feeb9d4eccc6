package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/cognite/powerops/internal/util"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the CLI logger. Records at or above level go to a text handler on
// logFile; records at or above mirrorLevel are also rendered on errOut by the friendly
// handler. An empty logFile, or "-", logs to errOut directly and does not mirror.
// The returned closer releases the log file.
func NewLogger(level, logFile string, mirrorLevel slog.Level, errOut io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLevelName}

	if logFile == "" || logFile == "-" {
		return slog.New(NewDualHandler(slog.NewTextHandler(errOut, opts), nil, mirrorLevel)), nopCloser{}, nil
	}

	logFile = os.ExpandEnv(logFile)
	if err := util.InitDir(logFile, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}

	handler := NewDualHandler(slog.NewTextHandler(f, opts), NewFriendlyHandler(errOut, mirrorLevel), mirrorLevel)
	return slog.New(handler), f, nil
}
