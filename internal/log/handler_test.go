package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualHandler(t *testing.T) {
	newLogger := func(mirrorLevel slog.Level) (*slog.Logger, *bytes.Buffer, *bytes.Buffer) {
		var primaryBuf, secondaryBuf bytes.Buffer
		primary := slog.NewTextHandler(&primaryBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
		secondary := slog.NewTextHandler(&secondaryBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(NewDualHandler(primary, secondary, mirrorLevel)), &primaryBuf, &secondaryBuf
	}

	t.Run("mirrors errors", func(t *testing.T) {
		logger, primary, secondary := newLogger(slog.LevelError)
		logger.Error("boom", slog.String("foo", "bar"))
		logger.Info("still going")

		assert.Contains(t, primary.String(), "boom")
		assert.Contains(t, primary.String(), "still going")
		assert.Contains(t, secondary.String(), "foo=bar")
		assert.NotContains(t, secondary.String(), "still going")
	})

	t.Run("mirrors warnings when asked", func(t *testing.T) {
		logger, _, secondary := newLogger(slog.LevelWarn)
		logger.Warn("careful")
		logger.Info("fine")

		assert.Contains(t, secondary.String(), "careful")
		assert.NotContains(t, secondary.String(), "fine")
	})

	t.Run("attrs and groups reach both handlers", func(t *testing.T) {
		logger, primary, secondary := newLogger(slog.LevelError)
		logger.With("kind", "assets").WithGroup("req").Error("failed", "id", "a")

		assert.Contains(t, primary.String(), "kind=assets req.id=a")
		assert.Contains(t, secondary.String(), "kind=assets req.id=a")
	})

	t.Run("enabled below primary level when mirrored", func(t *testing.T) {
		var buf bytes.Buffer
		primary := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
		secondary := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
		h := NewDualHandler(primary, secondary, slog.LevelWarn)

		assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
		assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("nil secondary", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewDualHandler(slog.NewTextHandler(&buf, nil), nil, slog.LevelError)
		slog.New(h).With("a", 1).Error("only primary")
		assert.Contains(t, buf.String(), "only primary")
	})
}

func TestNewLogger(t *testing.T) {

	t.Run("file with warnings mirrored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "powerops.log")
		var errOut bytes.Buffer

		logger, closer, err := NewLogger("debug", path, slog.LevelWarn, &errOut)
		require.NoError(t, err)

		logger.Debug("Listing assets", "data_set", "powerops:bootstrap")
		logger.Warn("Failed to write resource", "kind", "sequence_content", "external_id", "seq_a",
			"error", errors.New("400 Bad Request"))
		require.NoError(t, closer.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Listing assets")
		assert.Contains(t, string(content), "external_id=seq_a")

		assert.Equal(t,
			"Warning: Failed to write resource\n  error: 400 Bad Request\n  external_id: seq_a\n  kind: sequence_content\n",
			errOut.String())
	})

	t.Run("stderr only", func(t *testing.T) {
		var errOut bytes.Buffer
		logger, closer, err := NewLogger("error", "", slog.LevelError, &errOut)
		require.NoError(t, err)
		defer closer.Close()

		logger.Info("hidden")
		logger.Error("Failed to read data set", "data_set", "missing")
		assert.NotContains(t, errOut.String(), "hidden")
		assert.Equal(t, 1, strings.Count(errOut.String(), "Failed to read data set"))
	})
}

func TestFriendlyErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewFriendlyErrorHandler(&buf))

	logger.Warn("not shown")
	logger.Error("", "error", "data set powerops:bootstrap not found", "suggestion", "check --data-set")

	assert.Equal(t,
		"Error: data set powerops:bootstrap not found\n  suggestion: check --data-set\n",
		buf.String())
}

func TestFriendlyHandler_GroupsAndMultiline(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewFriendlyHandler(&buf, slog.LevelWarn)).WithGroup("http")

	logger.Info("hidden")
	logger.Error("Request failed", "status", 400, "body", "line one\n\n  line two")

	assert.Equal(t,
		"Error: Request failed\n  http.body: line one\n    line two\n  http.status: 400\n",
		buf.String())
}
