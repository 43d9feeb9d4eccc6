package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/cognite/powerops/internal/iostreams"
	"github.com/cognite/powerops/internal/log"
	"github.com/spf13/cobra"
)

type Helper interface {
	GetCmd() *cobra.Command
	GetArgs() []string
	GetVerb() (verbs.VerbValue, error)
	GetStreams() *iostreams.IOStreams
	GetConfig() (config.Hook, error)
	GetOutputFormat() (common.OutputFormat, error)
	GetLogger() (*slog.Logger, error)
	GetContext() context.Context
	GetPlatformClient(cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error)
}

type CommandHelper struct {
	// Cmd is a pointer to the command that is being executed
	Cmd *cobra.Command
	// Args are the arguments (not flags) passed to the command
	Args []string
}

func (r *CommandHelper) GetCmd() *cobra.Command {
	return r.Cmd
}

func (r *CommandHelper) GetArgs() []string {
	return r.Args
}

func (r *CommandHelper) GetLogger() (*slog.Logger, error) {
	rv, ok := r.Cmd.Context().Value(log.LoggerKey).(*slog.Logger)
	if !ok || rv == nil {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("no logger configured"),
		}
	}
	return rv, nil
}

func (r *CommandHelper) GetVerb() (verbs.VerbValue, error) {
	verbVal := r.Cmd.Context().Value(verbs.Verb)
	if verbVal == nil {
		return "", PrepareExecutionErrorMsg(r, "no verb found in context")
	}
	return verbVal.(verbs.VerbValue), nil
}

func (r *CommandHelper) GetStreams() *iostreams.IOStreams {
	return r.Cmd.Context().Value(iostreams.StreamsKey).(*iostreams.IOStreams)
}

func (r *CommandHelper) GetConfig() (config.Hook, error) {
	cfgVal := r.Cmd.Context().Value(config.ConfigKey)
	if cfgVal == nil {
		return nil, PrepareExecutionErrorMsg(r, "no config found in context")
	}
	return cfgVal.(config.Hook), nil
}

func (r *CommandHelper) GetOutputFormat() (common.OutputFormat, error) {
	c, e := r.GetConfig()
	if e != nil {
		return common.TEXT, e
	}
	s := c.GetString(common.OutputConfigPath)
	rv, e := common.OutputFormatStringToIota(s)
	if e != nil {
		return common.TEXT, &cerr.ConfigurationError{Err: e}
	}
	return rv, nil
}

func (r *CommandHelper) GetContext() context.Context {
	return r.Cmd.Context()
}

func (r *CommandHelper) GetPlatformClient(cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error) {
	factory, ok := r.Cmd.Context().Value(PlatformFactoryKey).(PlatformFactory)
	if !ok || factory == nil {
		return nil, PrepareExecutionErrorMsg(r, "no platform client factory configured")
	}
	client, err := factory(r.GetContext(), cfg, logger, dataSet)
	if err != nil {
		if cerr.IsConfigurationError(err) {
			return nil, err
		}
		return nil, PrepareExecutionErrorFromErr(r, err)
	}
	return client, nil
}

func BuildHelper(cmd *cobra.Command, args []string) Helper {
	return &CommandHelper{
		Cmd:  cmd,
		Args: args,
	}
}

// PrepareExecutionErrorWithHelper mirrors PrepareExecutionError but accepts a Helper.
// It ensures command usage/error output is silenced for runtime failures.
func PrepareExecutionErrorWithHelper(helper Helper, msg string, err error, attrs ...any) *cerr.ExecutionError {
	if helper == nil {
		return PrepareExecutionError(msg, err, nil, attrs...)
	}
	return PrepareExecutionError(msg, err, helper.GetCmd(), attrs...)
}

// PrepareExecutionErrorFromErr converts an arbitrary error into an ExecutionError while
// silencing usage/error output on the associated command. The friendly message defaults
// to the underlying error string.
func PrepareExecutionErrorFromErr(helper Helper, err error, attrs ...any) *cerr.ExecutionError {
	if err == nil {
		return nil
	}
	return PrepareExecutionErrorWithHelper(helper, err.Error(), err, attrs...)
}

// PrepareExecutionErrorMsg builds an ExecutionError from a message when a backing error
// is not already available.
func PrepareExecutionErrorMsg(helper Helper, msg string, attrs ...any) *cerr.ExecutionError {
	if msg == "" {
		return PrepareExecutionErrorWithHelper(helper, msg, errors.New("an unknown error occurred"), attrs...)
	}
	return PrepareExecutionErrorWithHelper(helper, msg, errors.New(msg), attrs...)
}

// This will construct an execution error AND turn off error and usage output for the command
func PrepareExecutionError(msg string, err error, cmd *cobra.Command, attrs ...any) *cerr.ExecutionError {
	if cmd != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
	}

	return &cerr.ExecutionError{
		Msg:   msg,
		Err:   err,
		Attrs: attrs,
	}
}
