package bootstrap

import (
	"fmt"
	"io"

	"github.com/cognite/powerops/internal/bootstrap/diff"
	"github.com/cognite/powerops/internal/bootstrap/state"
	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
	"github.com/cognite/powerops/internal/theme"
	"github.com/spf13/cobra"
)

// NoDifferences is printed when the local and remote collections match.
const NoDifferences = "No differences"

func newPlanCmd() *cobra.Command {
	c := &cobra.Command{
		Args: verbs.NoPositionalArgs,
		RunE: runPlan,
	}
	addSourceFlags(c)
	addDataSetFlag(c)
	addInMemoryFlag(c)
	return c
}

func runPlan(command *cobra.Command, args []string) error {
	helper, cfg, logger, err := prepare(command, args, verbs.Plan)
	if err != nil {
		return err
	}

	loc, err := buildLocal(helper, cfg, logger)
	if err != nil {
		return err
	}

	client, err := helper.GetPlatformClient(cfg, logger, loc.dataSet)
	if err != nil {
		return err
	}

	remote, err := state.NewReader(client, logger, state.Options{}).Read(helper.GetContext(), loc.dataSet)
	if err != nil {
		return cmd.PrepareExecutionError("failed to read platform state", err, command,
			"data_set", loc.dataSet)
	}

	report := diff.Compute(loc.collection, remote, diff.DefaultOptions())
	logger.Info("Computed bootstrap diff", "data_set", loc.dataSet, "kinds", len(report.Kinds()))

	out := helper.GetStreams().Out
	if report.IsEmpty() {
		_, err = fmt.Fprintln(out, NoDifferences)
		return err
	}

	palette, err := resolvePalette(cfg, out)
	if err != nil {
		return err
	}
	return diff.Render(out, report, palette)
}

// resolvePalette returns nil when output should not be styled.
func resolvePalette(cfg config.Hook, out io.Writer) (*theme.Palette, error) {
	mode, err := common.ColorModeStringToIota(cfg.GetString(common.ColorConfigPath))
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: err}
	}
	switch mode {
	case common.ColorModeNever:
		return nil, nil
	case common.ColorModeAuto:
		if !diff.ColorEnabled(out) {
			return nil, nil
		}
	case common.ColorModeAlways:
	}

	p, err := theme.Get(cfg.GetString(common.ColorThemeConfigPath))
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: err}
	}
	return &p, nil
}
