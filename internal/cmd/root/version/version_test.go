package version

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/config"
	"github.com/cognite/powerops/internal/iostreams"
	"github.com/cognite/powerops/internal/meta"
	"github.com/cognite/powerops/test/cmd"
	testConfig "github.com/cognite/powerops/test/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHelper(format common.OutputFormat, showCommit bool) (*cmd.MockHelper, *iostreams.IOStreams, func() string) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	cfg := testConfig.NewMapConfigHook(map[string]any{ShowCommitConfigPath: showCommit})

	return &cmd.MockHelper{
		GetOutputFormatMock: func() (common.OutputFormat, error) {
			return format, nil
		},
		GetConfigMock: func() (config.Hook, error) {
			return cfg, nil
		},
		GetStreamsMock: func() *iostreams.IOStreams {
			return &all
		},
		GetLoggerMock: func() (*slog.Logger, error) {
			return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
		},
	}, &all, out.String
}

func Test_VersionCmd(t *testing.T) {
	helper, _, out := newHelper(common.TEXT, false)

	require.NoError(t, validate(helper))
	require.NoError(t, run(helper))
	assert.Equal(t, meta.VERSION+"\n", out())
}

func Test_VersionCmdShowCommit(t *testing.T) {
	helper, _, out := newHelper(common.TEXT, true)

	require.NoError(t, run(helper))
	assert.Equal(t, meta.VERSION+" ("+meta.COMMIT+")\n", out())
}

func Test_VersionCmdJsonOutput(t *testing.T) {
	helper, _, out := newHelper(common.JSON, true)

	require.NoError(t, run(helper))

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out()), &got))
	assert.Equal(t, map[string]string{"version": meta.VERSION, "commit": meta.COMMIT}, got)
}

func Test_NewVersionCmd(t *testing.T) {
	c := NewVersionCmd()
	assert.Equal(t, "version", c.Use)
	assert.NotNil(t, c.Flags().Lookup(ShowCommitFlagName))
	assert.Contains(t, c.Example, meta.CLIName)
}
