package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/cognite/powerops/internal/bootstrap/converter"
	"github.com/cognite/powerops/internal/bootstrap/executor"
	"github.com/cognite/powerops/internal/bootstrap/resources"
	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/output/jq"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const autoApproveFlagName = "auto-approve"

// now is replaced in tests.
var now = time.Now

func newApplyCmd() *cobra.Command {
	c := &cobra.Command{
		Args: verbs.NoPositionalArgs,
		RunE: runApply,
	}
	addSourceFlags(c)
	addDataSetFlag(c)
	addInMemoryFlag(c)
	c.Flags().Bool(common.SkipDataModelFlagName, false,
		fmt.Sprintf(`Write platform resources only; leave model templates, mappings,
transformations and file references untouched.
- Config path: [ %s ]`, common.SkipDataModelConfigPath))
	c.Flags().Bool(common.OverwriteFilesFlagName, false,
		fmt.Sprintf(`Upload shop files even when the platform already holds the same content.
- Config path: [ %s ]`, common.OverwriteFilesConfigPath))
	c.Flags().Bool(autoApproveFlagName, false, "Skip the confirmation prompt for --overwrite-files")
	jq.AddFlags(c.Flags())
	return c
}

func runApply(command *cobra.Command, args []string) error {
	helper, cfg, logger, err := prepare(command, args, verbs.Apply)
	if err != nil {
		return err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	jqSettings, err := jq.ResolveSettings(command, cfg)
	if err != nil {
		return err
	}
	if err := jq.Validate(outType, jqSettings); err != nil {
		return err
	}

	loc, err := buildLocal(helper, cfg, logger)
	if err != nil {
		return err
	}
	if err := loc.collection.Add(converter.BootstrapFinishedEvent(loc.dataSet, now())); err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	overwrite := cfg.GetBool(common.OverwriteFilesConfigPath)
	if overwrite {
		autoApprove, _ := command.Flags().GetBool(autoApproveFlagName)
		cmd.SetAutoApprove(command, autoApprove)
		files := loc.collection.Len(resources.KindShopFile)
		if err := cmd.Confirm(helper,
			fmt.Sprintf("re-upload %d shop files to data set %s", files, loc.dataSet),
			"Existing files with the same external id are replaced."); err != nil {
			return err
		}
	}

	client, err := helper.GetPlatformClient(cfg, logger, loc.dataSet)
	if err != nil {
		return err
	}

	var reporter executor.ProgressReporter
	if outType == common.TEXT {
		reporter = executor.NewConsoleReporter(helper.GetStreams().ErrOut)
	}

	exec := executor.New(client, reporter, logger, executor.Options{
		DataSetExternalID: loc.dataSet,
		SkipDataModel:     cfg.GetBool(common.SkipDataModelConfigPath),
		OverwriteFiles:    overwrite,
	})
	result, execErr := exec.Execute(helper.GetContext(), loc.collection)

	if err := outputApplyResult(helper, outType, jqSettings, loc.dataSet, result, execErr); err != nil {
		return err
	}
	if execErr != nil {
		return cmd.PrepareExecutionError("apply failed", execErr, command, "data_set", loc.dataSet)
	}
	if warnings := result.Err(); warnings != nil {
		return cmd.PrepareExecutionError(
			fmt.Sprintf("apply completed with %d warnings", len(result.Warnings)),
			cerr.NewErrorsBucket("some resources were not written:", unwrapAll(warnings)...),
			command)
	}
	return nil
}

// applyOutput is the structured form of an apply run.
type applyOutput struct {
	Status  string                    `json:"status" yaml:"status"`
	Message string                    `json:"message" yaml:"message"`
	DataSet string                    `json:"data_set" yaml:"data_set"`
	Result  *executor.ExecutionResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// outputApplyResult prints the summary of a finished run. After a fatal error
// nothing is printed here; the error itself is rendered by the root command.
func outputApplyResult(helper cmd.Helper, outType common.OutputFormat, jqSettings jq.Settings,
	dataSet string, result *executor.ExecutionResult, execErr error,
) error {
	if execErr != nil || result == nil {
		return nil
	}
	out := applyOutput{Status: "success", DataSet: dataSet, Result: result, Message: result.Message()}
	if len(result.Warnings) > 0 {
		out.Status = "partial_success"
	}

	if outType == common.TEXT {
		// The console reporter has printed progress and the summary.
		return nil
	}

	w := helper.GetStreams().Out
	payload, written, err := jq.ApplyToRaw(out, outType, jqSettings, w)
	if err != nil || written {
		return err
	}

	p, err := cli.Format(outType.String(), w)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(payload)
	return nil
}

func unwrapAll(err error) []error {
	var me *multierror.Error
	if errors.As(err, &me) {
		return me.WrappedErrors()
	}
	return []error{err}
}
