package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs/apply"
	"github.com/cognite/powerops/internal/cmd/root/verbs/dump"
	"github.com/cognite/powerops/internal/cmd/root/verbs/plan"
	"github.com/cognite/powerops/internal/cmd/root/version"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/cognite/powerops/internal/iostreams"
	"github.com/cognite/powerops/internal/log"
	"github.com/cognite/powerops/internal/meta"
	"github.com/cognite/powerops/internal/util"
	"github.com/cognite/powerops/internal/util/i18n"
	"github.com/cognite/powerops/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  powerops bootstraps the resources power operations workflows depend on:
  watercourses, plants and generators, price scenarios, bid processes and
  the SHOP model files and data-model entries that tie them together.

  Describe them in a YAML configuration, review the changes with 'plan'
  and write them with 'apply'.`))

	rootShort = i18n.T("root/rootShort", fmt.Sprintf("%s bootstraps power operations resources", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path,
	configFilePath string
	currProfile    = config.DefaultProfile

	currConfig   config.Hook
	streams      *iostreams.IOStreams
	logger       *slog.Logger
	logCloser    io.Closer
	outputFormat = cmd.NewEnum(common.OutputFormats(), common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum(common.LogLevels(), common.DefaultLogLevel)
	colorMode    = cmd.NewEnum(common.ColorModes(), common.DefaultColorMode)

	platformFactory cmd.PlatformFactory = cmd.DefaultPlatformFactory
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			ctx := context.WithValue(c.Context(), config.ConfigKey, currConfig)
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = context.WithValue(ctx, cmd.PlatformFactoryKey, platformFactory)
			ctx = log.WithHTTPLogContext(ctx, log.HTTPLogContext{
				CommandPath: c.CommandPath(),
				CommandVerb: c.Name(),
			})
			c.SetContext(ctx)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	defaultPath, err := config.GetDefaultConfigFilePath()
	util.CheckError(err)
	configFilePath = defaultPath

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName, defaultPath,
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		config.DefaultProfile,
		"Specify the profile to use for this command.")

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		cmd.EnumUsage("Configures the output format.", common.OutputConfigPath, outputFormat))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		cmd.EnumUsage("Configures the logging level.", common.LogLevelConfigPath, logLevel))

	rootCmd.PersistentFlags().String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write logs to this file ('-' for stderr). Errors are also shown on stderr.
- Config path: [ %s ]`, common.LogFileConfigPath))

	rootCmd.PersistentFlags().Var(colorMode, common.ColorFlagName,
		cmd.EnumUsage("Controls colored output.", common.ColorConfigPath, colorMode))

	rootCmd.PersistentFlags().String(common.ColorThemeFlagName, common.DefaultColorTheme,
		fmt.Sprintf(`Color theme for styled output.
- Config path: [ %s ]`, common.ColorThemeConfigPath))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())

	for _, build := range []func() (*cobra.Command, error){
		plan.NewPlanCmd,
		apply.NewApplyCmd,
		dump.NewDumpCmd,
	} {
		c, err := build()
		if err != nil {
			return err
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	util.CheckError(err)

	// Because the profile is not part of the configuration, we can't use viper
	// to read it following it's built in priorities. So here we look for a well known
	// profile variable and set our package level variable if it's set before
	// continuing to process the command run. This creates a ENV_VAR < CLI_FLAG priority
	profileEnvVar, found := os.LookupEnv(fmt.Sprintf("%s_PROFILE", strings.ToUpper(meta.CLIName)))
	if found {
		currProfile = profileEnvVar
	}
}

var persistentBindings = []struct{ flag, path string }{
	{common.OutputFlagName, common.OutputConfigPath},
	{common.LogLevelFlagName, common.LogLevelConfigPath},
	{common.LogFileFlagName, common.LogFileConfigPath},
	{common.ColorFlagName, common.ColorConfigPath},
	{common.ColorThemeFlagName, common.ColorThemeConfigPath},
}

func initConfig() {
	defaultPath, err := config.GetDefaultConfigFilePath()
	util.CheckError(err)

	cfg, err := config.GetConfig(configFilePath, currProfile, defaultPath)
	util.CheckError(err)
	currConfig = cfg

	for _, b := range persistentBindings {
		f := rootCmd.PersistentFlags().Lookup(b.flag)
		util.CheckError(cfg.BindFlag(b.path, f))
	}

	logger, logCloser, err = log.NewLogger(
		cfg.GetString(common.LogLevelConfigPath),
		cfg.GetString(common.LogFileConfigPath),
		slog.LevelError,
		streams.ErrOut,
	)
	util.CheckError(err)
}

func Execute(ctx context.Context, s *iostreams.IOStreams) {
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var executionError *cerr.ExecutionError
	if errors.As(err, &executionError) {
		format := outputFormat.String()
		if currConfig != nil {
			format = currConfig.GetString(common.OutputConfigPath)
		}
		printExecutionError(s.ErrOut, format, executionError)
	}
	os.Exit(1)
}

func printExecutionError(w io.Writer, format string, e *cerr.ExecutionError) {
	if format == "" || format == common.DefaultOutputFormat {
		fmt.Fprintf(w, "Error: %s\n", e.Msg)
		if e.Err != nil && e.Err.Error() != e.Msg {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(e.Err.Error(), "\n", "\n  "))
		}
		for i := 0; i+1 < len(e.Attrs); i += 2 {
			fmt.Fprintf(w, "  %v: %v\n", e.Attrs[i], e.Attrs[i+1])
		}
		return
	}

	printer, err := cli.Format(format, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", e.Msg)
		return
	}
	defer printer.Flush()
	out := map[string]any{"error": e.Msg}
	if e.Err != nil {
		out["details"] = e.Err.Error()
	}
	printer.Print(out)
}
