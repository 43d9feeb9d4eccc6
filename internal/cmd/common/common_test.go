package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatStringToIota(t *testing.T) {
	for _, f := range []OutputFormat{JSON, YAML, TEXT} {
		got, err := OutputFormatStringToIota(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := OutputFormatStringToIota("")
	require.NoError(t, err)
	assert.Equal(t, TEXT, got)

	_, err = OutputFormatStringToIota("table")
	assert.ErrorContains(t, err, `invalid output format "table"`)
}

func TestColorModeStringToIota(t *testing.T) {
	got, err := ColorModeStringToIota("never")
	require.NoError(t, err)
	assert.Equal(t, ColorModeNever, got)
	assert.Equal(t, "always", ColorModeAlways.String())

	_, err = ColorModeStringToIota("sometimes")
	assert.Error(t, err)
}

func TestEnumValues(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml", "text"}, OutputFormats())
	assert.Equal(t, []string{"auto", "always", "never"}, ColorModes())
	assert.Contains(t, LogLevels(), DefaultLogLevel)
	assert.Equal(t, DefaultOutputFormat, OutputFormat(42).String())

	levels := LogLevels()
	levels[0] = "changed"
	assert.Equal(t, "trace", LogLevels()[0], "callers get a copy")
}
