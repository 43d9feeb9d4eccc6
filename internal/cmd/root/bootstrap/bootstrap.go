// Package bootstrap implements the plan, apply and dump commands. The verb
// packages wrap these with their help text and register them on the root command.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/cognite/powerops/internal/bootstrap/converter"
	"github.com/cognite/powerops/internal/bootstrap/loader"
	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/cognite/powerops/internal/log"
	"github.com/cognite/powerops/internal/meta"
	"github.com/spf13/cobra"
)

const workflowName = "bootstrap"

// NewBootstrapCmd creates the command that implements verb.
func NewBootstrapCmd(verb verbs.VerbValue) (*cobra.Command, error) {
	switch verb {
	case verbs.Plan:
		return newPlanCmd(), nil
	case verbs.Apply:
		return newApplyCmd(), nil
	case verbs.Dump:
		return newDumpCmd(), nil
	case verbs.Version:
		return nil, fmt.Errorf("verb %s does not read a bootstrap configuration", verb)
	}
	return nil, fmt.Errorf("unexpected verb %s", verb)
}

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringP(common.FilenameFlagName, common.FilenameFlagShort, "",
		"Bootstrap configuration file, or a directory of YAML files merged in name order")
	_ = c.MarkFlagRequired(common.FilenameFlagName)
}

func addDataSetFlag(c *cobra.Command) {
	c.Flags().String(common.DataSetFlagName, "",
		fmt.Sprintf(`External id of the data set bootstrap resources belong to.
Defaults to the configuration file's data_set, then to %q.
- Config path: [ %s ]`, meta.DefaultDataSetExternalID, common.DataSetConfigPath))
}

func addInMemoryFlag(c *cobra.Command) {
	c.Flags().Bool(common.InMemoryFlagName, false,
		fmt.Sprintf(`Use an empty in-memory platform instead of the configured project.
- Config path: [ %s ]`, common.InMemoryConfigPath))
}

// bindFlags binds the flags c defines to their config paths.
func bindFlags(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	bindings := []struct{ flag, path string }{
		{common.DataSetFlagName, common.DataSetConfigPath},
		{common.InMemoryFlagName, common.InMemoryConfigPath},
		{common.SkipDataModelFlagName, common.SkipDataModelConfigPath},
		{common.OverwriteFilesFlagName, common.OverwriteFilesConfigPath},
	}
	for _, b := range bindings {
		f := helper.GetCmd().Flags().Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := cfg.BindFlag(b.path, f); err != nil {
			return err
		}
	}
	return nil
}

// local is the collection built from the bootstrap configuration.
type local struct {
	collection *resources.Collection
	dataSet    string
}

// buildLocal loads the configuration named by --filename and converts it.
func buildLocal(helper cmd.Helper, cfg config.Hook, logger *slog.Logger) (*local, error) {
	filename, _ := helper.GetCmd().Flags().GetString(common.FilenameFlagName)
	if filename == "" {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("no bootstrap configuration given; use -f/--%s", common.FilenameFlagName),
		}
	}

	logger.Debug("Loading bootstrap configuration", "path", filename)
	model, err := loader.New(filename).Load()
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: fmt.Errorf("failed to load configuration: %w", err)}
	}

	col, err := converter.Build(model, converter.Options{Logger: logger})
	if err != nil {
		return nil, cmd.PrepareExecutionErrorFromErr(helper, fmt.Errorf("failed to build resources: %w", err))
	}

	return &local{
		collection: col,
		dataSet:    resolveDataSet(helper, cfg, model.DataSet),
	}, nil
}

// resolveDataSet picks an explicit --data-set first, then the configuration file,
// then the CLI configuration, then the built-in default.
func resolveDataSet(helper cmd.Helper, cfg config.Hook, fromModel string) string {
	if f := helper.GetCmd().Flags().Lookup(common.DataSetFlagName); f != nil && f.Changed {
		return f.Value.String()
	}
	if fromModel != "" {
		return fromModel
	}
	if ds := cfg.GetString(common.DataSetConfigPath); ds != "" {
		return ds
	}
	return meta.DefaultDataSetExternalID
}

// prepare collects what every bootstrap command needs and tags the context so
// HTTP trace logs carry the workflow phase.
func prepare(c *cobra.Command, args []string, verb verbs.VerbValue) (cmd.Helper, config.Hook, *slog.Logger, error) {
	helper := cmd.BuildHelper(c, args)
	if err := bindFlags(helper); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	c.SetContext(log.WithHTTPLogContext(c.Context(), log.HTTPLogContext{
		Workflow:      workflowName,
		WorkflowPhase: verb.String(),
	}))
	return helper, cfg, logger, nil
}
