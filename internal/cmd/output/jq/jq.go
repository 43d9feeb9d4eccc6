// Package jq filters structured command output with jq expressions.
package jq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdcommon "github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/cognite/powerops/internal/iostreams"
)

const (
	FlagName            = "jq"
	RawOutputFlagName   = "jq-raw-output"
	ThemeConfigPath     = "jq.color-theme"
	RawOutputConfigPath = "jq.raw-output"
	DefaultTheme        = "friendly"
)

var queryCache sync.Map

type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	Theme     string
	RawOutput bool
}

// HasFilter reports whether a jq expression was given.
func (s Settings) HasFilter() bool {
	return strings.TrimSpace(s.Filter) != ""
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "",
		"Filter json or yaml output with a jq expression, for example '.result.written'")
	flags.Bool(RawOutputFlagName, false,
		fmt.Sprintf(`Print string results of --%s without JSON quotes (like jq -r).
- Config path: [ %s ]`, FlagName, RawOutputConfigPath))
}

// ResolveSettings reads the jq flags of command. Colors follow the global color
// mode; the chroma style comes from jq.color-theme.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{ColorMode: cmdcommon.ColorModeAuto, Theme: DefaultTheme}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}

	flags := command.Flags()
	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	filter = strings.TrimSpace(filter)
	if flags.Changed(FlagName) && filter == "" {
		filter = "."
	}
	settings.Filter = filter

	if cfg == nil {
		settings.RawOutput, err = flags.GetBool(RawOutputFlagName)
		return settings, err
	}

	if f := flags.Lookup(RawOutputFlagName); f != nil {
		if err := cfg.BindFlag(RawOutputConfigPath, f); err != nil {
			return Settings{}, err
		}
	}
	settings.RawOutput = cfg.GetBool(RawOutputConfigPath)

	mode, err := cmdcommon.ColorModeStringToIota(strings.ToLower(cfg.GetString(cmdcommon.ColorConfigPath)))
	if err != nil {
		return Settings{}, &cerr.ConfigurationError{Err: err}
	}
	settings.ColorMode = mode
	if theme := strings.TrimSpace(cfg.GetString(ThemeConfigPath)); theme != "" {
		settings.Theme = theme
	}
	return settings, nil
}

// Validate rejects flag combinations the output format cannot honor.
func Validate(outType cmdcommon.OutputFormat, settings Settings) error {
	switch {
	case settings.RawOutput && !settings.HasFilter():
		return &cerr.ConfigurationError{Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName)}
	case settings.RawOutput && outType != cmdcommon.JSON:
		return &cerr.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
		}
	case settings.HasFilter() && outType == cmdcommon.TEXT:
		return &cerr.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
		}
	}
	return nil
}

// ApplyToRaw runs the filter over raw. It returns the value to print, or
// written=true when the result was already written to out.
func ApplyToRaw(raw any, outType cmdcommon.OutputFormat, settings Settings, out io.Writer) (any, bool, error) {
	if !settings.HasFilter() {
		return raw, false, nil
	}
	if err := Validate(outType, settings); err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode output for jq: %w", err)
	}
	results, err := Evaluate(body, settings.Filter)
	if err != nil {
		return nil, false, err
	}

	if settings.RawOutput {
		return nil, true, writeRaw(results, out)
	}

	var payload any
	switch len(results) {
	case 0:
	case 1:
		payload = results[0]
	default:
		payload = results
	}

	if outType == cmdcommon.JSON && shouldColor(settings.ColorMode, out) {
		formatted, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, false, err
		}
		_, err = fmt.Fprintln(out, strings.TrimRight(colorize(string(formatted), settings.Theme), "\n"))
		return nil, true, err
	}
	return payload, false, nil
}

// Evaluate runs filter over a JSON document and returns every emitted value.
func Evaluate(body []byte, filter string) ([]any, error) {
	if strings.TrimSpace(filter) == "" {
		filter = "."
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	code, err := compile(filter)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(payload)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func compile(filter string) (*gojq.Code, error) {
	if code, ok := queryCache.Load(filter); ok {
		return code.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: fmt.Errorf("invalid jq expression: %w", err)}
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: fmt.Errorf("failed to compile jq expression: %w", err)}
	}
	queryCache.Store(filter, code)
	return code, nil
}

func writeRaw(results []any, out io.Writer) error {
	for _, r := range results {
		line, ok := r.(string)
		if !ok {
			b, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to encode jq result: %w", err)
			}
			line = string(b)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func shouldColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	case cmdcommon.ColorModeAuto:
	}
	return iostreams.IsTerminal(out)
}

func colorize(formatted, theme string) string {
	lexer := lexers.Get("json")
	formatter := formatters.Get("terminal256")
	if lexer == nil || formatter == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}

	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return buf.String()
}
