package common

import (
	"fmt"
	"slices"
)

// OutputFormat is the value of --output.
type OutputFormat int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
)

// ColorMode is the value of --color.
type ColorMode int

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

var (
	outputFormatNames = []string{"json", "yaml", "text"}
	colorModeNames    = []string{"auto", "always", "never"}
	logLevelNames     = []string{"trace", "debug", "info", "warn", "error"}
)

// OutputFormats returns the accepted --output values.
func OutputFormats() []string { return slices.Clone(outputFormatNames) }

// ColorModes returns the accepted --color values.
func ColorModes() []string { return slices.Clone(colorModeNames) }

// LogLevels returns the accepted --log-level values, most verbose first.
func LogLevels() []string { return slices.Clone(logLevelNames) }

const (
	// related to the --output flag
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	// related to the --color flag
	ColorFlagName    = "color"
	ColorConfigPath  = ColorFlagName
	DefaultColorMode = "auto"

	// related to the --color-theme flag
	ColorThemeFlagName   = "color-theme"
	ColorThemeConfigPath = ColorThemeFlagName
	DefaultColorTheme    = "powerops"

	// related to the --profile flag
	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"

	// related to the --config-file flag
	ConfigFilePathFlagName = "config-file"

	// related to the --log-level flag
	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "info"
	LogLevelConfigPath = LogLevelFlagName

	// related to the --log-file flag
	LogFileFlagName   = "log-file"
	LogFileConfigPath = LogFileFlagName
)

// Bootstrap verb flags.
const (
	FilenameFlagName  = "filename"
	FilenameFlagShort = "f"

	DataSetFlagName   = "data-set"
	DataSetConfigPath = "bootstrap." + DataSetFlagName

	SkipDataModelFlagName   = "skip-data-model"
	SkipDataModelConfigPath = "bootstrap." + SkipDataModelFlagName

	OverwriteFilesFlagName   = "overwrite-files"
	OverwriteFilesConfigPath = "bootstrap." + OverwriteFilesFlagName

	InMemoryFlagName   = "in-memory"
	InMemoryConfigPath = "cdf." + InMemoryFlagName

	OutputFileFlagName = "output-file"
)

// Platform connection settings. These are configuration or environment only.
const (
	ProjectConfigPath      = "cdf.project"
	BaseURLConfigPath      = "cdf.base-url"
	TokenURLConfigPath     = "cdf.token-url"
	ClientIDConfigPath     = "cdf.client-id"
	ClientSecretConfigPath = "cdf.client-secret"
	ScopesConfigPath       = "cdf.scopes"
	TokenConfigPath        = "cdf.token"
)

func (of OutputFormat) String() string {
	if int(of) < 0 || int(of) >= len(outputFormatNames) {
		return DefaultOutputFormat
	}
	return outputFormatNames[of]
}

// OutputFormatStringToIota parses an --output value. An empty value means text.
func OutputFormatStringToIota(format string) (OutputFormat, error) {
	if format == "" {
		return TEXT, nil
	}
	if i := slices.Index(outputFormatNames, format); i >= 0 {
		return OutputFormat(i), nil
	}
	return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format, outputFormatNames)
}

func (cm ColorMode) String() string {
	if int(cm) < 0 || int(cm) >= len(colorModeNames) {
		return DefaultColorMode
	}
	return colorModeNames[cm]
}

// ColorModeStringToIota parses a --color value. An empty value means auto.
func ColorModeStringToIota(mode string) (ColorMode, error) {
	if mode == "" {
		return ColorModeAuto, nil
	}
	if i := slices.Index(colorModeNames, mode); i >= 0 {
		return ColorMode(i), nil
	}
	return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode, colorModeNames)
}
