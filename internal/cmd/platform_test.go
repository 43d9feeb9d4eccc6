package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognite/powerops/internal/cmd/common"
	cerr "github.com/cognite/powerops/internal/err"
	testConfig "github.com/cognite/powerops/test/config"
)

func TestDefaultPlatformFactory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("in memory", func(t *testing.T) {
		cfg := testConfig.NewMapConfigHook(map[string]any{common.InMemoryConfigPath: true})
		client, err := DefaultPlatformFactory(ctx, cfg, logger, "powerops:test")
		require.NoError(t, err)

		ds, err := client.DataSets.RetrieveByExternalID(ctx, "powerops:test")
		require.NoError(t, err)
		assert.Equal(t, "powerops:test", ds.ExternalID)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := DefaultPlatformFactory(ctx, testConfig.NewMapConfigHook(nil), logger, "ds")
		require.Error(t, err)
		assert.True(t, cerr.IsConfigurationError(err))
		assert.ErrorContains(t, err, common.ProjectConfigPath)
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := testConfig.NewMapConfigHook(map[string]any{
			common.ProjectConfigPath:  "power-ops",
			common.ClientIDConfigPath: "id",
		})
		_, err := DefaultPlatformFactory(ctx, cfg, logger, "ds")
		require.Error(t, err)
		assert.True(t, cerr.IsConfigurationError(err))
		assert.ErrorContains(t, err, "token-url")
	})

	t.Run("static token", func(t *testing.T) {
		cfg := testConfig.NewMapConfigHook(map[string]any{
			common.ProjectConfigPath: "power-ops",
			common.TokenConfigPath:   "secret",
		})
		client, err := DefaultPlatformFactory(ctx, cfg, logger, "ds")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}
