package jq

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdcommon "github.com/cognite/powerops/internal/cmd/common"
	cerr "github.com/cognite/powerops/internal/err"
	testConfig "github.com/cognite/powerops/test/config"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	command := &cobra.Command{Use: "test"}
	AddFlags(command.Flags())
	require.NoError(t, command.Flags().Parse(args))
	return command
}

func TestResolveSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		settings, err := ResolveSettings(newCommand(t), nil)
		require.NoError(t, err)
		assert.False(t, settings.HasFilter())
		assert.Equal(t, cmdcommon.ColorModeAuto, settings.ColorMode)
		assert.Equal(t, DefaultTheme, settings.Theme)
	})

	t.Run("empty filter is identity", func(t *testing.T) {
		settings, err := ResolveSettings(newCommand(t, "--jq="), nil)
		require.NoError(t, err)
		assert.Equal(t, ".", settings.Filter)
	})

	t.Run("command without jq flags", func(t *testing.T) {
		settings, err := ResolveSettings(&cobra.Command{Use: "plain"}, testConfig.NewMapConfigHook(nil))
		require.NoError(t, err)
		assert.False(t, settings.HasFilter())
	})

	t.Run("config", func(t *testing.T) {
		cfg := testConfig.NewMapConfigHook(map[string]any{
			cmdcommon.ColorConfigPath: "never",
			ThemeConfigPath:           "github",
			RawOutputConfigPath:       true,
		})
		settings, err := ResolveSettings(newCommand(t, "--jq", ".status"), cfg)
		require.NoError(t, err)
		assert.Equal(t, ".status", settings.Filter)
		assert.Equal(t, cmdcommon.ColorModeNever, settings.ColorMode)
		assert.Equal(t, "github", settings.Theme)
		assert.True(t, settings.RawOutput)
	})

	t.Run("invalid color mode", func(t *testing.T) {
		cfg := testConfig.NewMapConfigHook(map[string]any{cmdcommon.ColorConfigPath: "sometimes"})
		_, err := ResolveSettings(newCommand(t, "--jq", "."), cfg)
		assert.True(t, cerr.IsConfigurationError(err))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		outType  cmdcommon.OutputFormat
		settings Settings
		wantErr  string
	}{
		{name: "no filter", outType: cmdcommon.TEXT},
		{name: "json filter", outType: cmdcommon.JSON, settings: Settings{Filter: "."}},
		{name: "yaml filter", outType: cmdcommon.YAML, settings: Settings{Filter: "."}},
		{name: "text filter", outType: cmdcommon.TEXT, settings: Settings{Filter: "."}, wantErr: "--jq is only supported"},
		{name: "raw without filter", outType: cmdcommon.JSON, settings: Settings{RawOutput: true}, wantErr: "requires --jq"},
		{
			name: "raw with yaml", outType: cmdcommon.YAML,
			settings: Settings{Filter: ".", RawOutput: true}, wantErr: "only supported with --output json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.outType, tt.settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, cerr.IsConfigurationError(err))
		})
	}
}

func TestApplyToRaw(t *testing.T) {
	raw := map[string]any{
		"status": "success",
		"result": map[string]any{"written": map[string]int{"assets": 3, "events": 1}},
	}

	t.Run("no filter passes through", func(t *testing.T) {
		var out bytes.Buffer
		payload, written, err := ApplyToRaw(raw, cmdcommon.JSON, Settings{}, &out)
		require.NoError(t, err)
		assert.False(t, written)
		assert.Equal(t, raw, payload)
	})

	t.Run("single result", func(t *testing.T) {
		var out bytes.Buffer
		payload, written, err := ApplyToRaw(raw, cmdcommon.JSON,
			Settings{Filter: ".result.written.assets", ColorMode: cmdcommon.ColorModeNever}, &out)
		require.NoError(t, err)
		assert.False(t, written)
		assert.EqualValues(t, 3, payload)
	})

	t.Run("multiple results", func(t *testing.T) {
		var out bytes.Buffer
		payload, _, err := ApplyToRaw(raw, cmdcommon.YAML,
			Settings{Filter: ".result.written | keys[]"}, &out)
		require.NoError(t, err)
		assert.Equal(t, []any{"assets", "events"}, payload)
	})

	t.Run("raw output", func(t *testing.T) {
		var out bytes.Buffer
		_, written, err := ApplyToRaw(raw, cmdcommon.JSON, Settings{Filter: ".status", RawOutput: true}, &out)
		require.NoError(t, err)
		assert.True(t, written)
		assert.Equal(t, "success\n", out.String())
	})

	t.Run("colored json", func(t *testing.T) {
		var out bytes.Buffer
		_, written, err := ApplyToRaw(raw, cmdcommon.JSON,
			Settings{Filter: ".result", ColorMode: cmdcommon.ColorModeAlways, Theme: DefaultTheme}, &out)
		require.NoError(t, err)
		assert.True(t, written)
		assert.Contains(t, out.String(), "\x1b[")
		assert.Contains(t, out.String(), "written")
	})

	t.Run("invalid expression", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := ApplyToRaw(raw, cmdcommon.JSON, Settings{Filter: ".["}, &out)
		assert.ErrorContains(t, err, "invalid jq expression")
	})
}

func TestEvaluate_RuntimeError(t *testing.T) {
	_, err := Evaluate([]byte(`{"a": 1}`), ".a | keys")
	assert.ErrorContains(t, err, "jq filter failed")
}
