package plan

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
	Verb = verbs.Plan
)

var (
	planUse = Verb.String()

	planShort = i18n.T("root.verbs.plan.planShort",
		"Show how the platform differs from a bootstrap configuration")

	planLong = normalizers.LongDesc(i18n.T("root.verbs.plan.planLong",
		`Build the resources a bootstrap configuration describes, read the resources
of the same data set back from the platform, and print the differences per
resource type. Nothing is written.

Resources present only locally are reported as missing in [remote], resources
present only on the platform as missing in [local].`))

	planExamples = normalizers.Examples(i18n.T("root.verbs.plan.planExamples",
		fmt.Sprintf(`
		# Compare a configuration with the configured project
		%[1]s plan -f bootstrap.yaml

		# Compare against another data set
		%[1]s plan -f ./config --data-set powerops:staging

		# See what a first apply would create
		%[1]s plan -f bootstrap.yaml --in-memory
		`, meta.CLIName)))
)

func NewPlanCmd() (*cobra.Command, error) {
	cmd, err := bootstrap.NewBootstrapCmd(Verb)
	if err != nil {
		return nil, err
	}

	cmd.Use = planUse
	cmd.Short = planShort
	cmd.Long = planLong
	cmd.Example = planExamples
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
	}

	return cmd, nil
}
