package apply

import (
	"context"
	"fmt"

	"github.com/cognite/powerops/internal/cmd/root/bootstrap"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/meta"
	"github.com/cognite/powerops/internal/util/i18n"
	"github.com/cognite/powerops/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Apply
)

var (
	applyUse = Verb.String()

	applyShort = i18n.T("root.verbs.apply.applyShort", "Write a bootstrap configuration to the platform")

	applyLong = normalizers.LongDesc(i18n.T("root.verbs.apply.applyLong",
		`Build the resources a bootstrap configuration describes and upsert them into
the platform data set. Labels, assets, sequences, relationships and events are
written first and any failure there aborts the run. Data-model entries follow
unless --skip-data-model is given. Sequence rows and shop files are written one
at a time; a failure is reported as a warning and the run continues.

Shop files whose content hash matches the platform copy are skipped unless
--overwrite-files is given.`))

	applyExamples = normalizers.Examples(i18n.T("root.verbs.apply.applyExamples",
		fmt.Sprintf(`
		# Apply a configuration
		%[1]s apply -f bootstrap.yaml

		# Apply platform resources only and report as JSON
		%[1]s apply -f bootstrap.yaml --skip-data-model -o json

		# Re-upload every shop file without prompting
		%[1]s apply -f bootstrap.yaml --overwrite-files --auto-approve
		`, meta.CLIName)))
)

func NewApplyCmd() (*cobra.Command, error) {
	cmd, err := bootstrap.NewBootstrapCmd(Verb)
	if err != nil {
		return nil, err
	}

	cmd.Use = applyUse
	cmd.Short = applyShort
	cmd.Long = applyLong
	cmd.Example = applyExamples
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
	}

	return cmd, nil
}
