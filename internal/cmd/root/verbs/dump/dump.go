package dump

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
	Verb = verbs.Dump
)

var (
	dumpUse = Verb.String()

	dumpShort = i18n.T("root.verbs.dump.dumpShort",
		"Print the resources a bootstrap configuration produces")

	dumpLong = normalizers.LongDesc(i18n.T("root.verbs.dump.dumpLong",
		`Build the resources a bootstrap configuration describes and write them as
YAML, grouped by resource type. The platform is not contacted.`))

	dumpExamples = normalizers.Examples(i18n.T("root.verbs.dump.dumpExamples",
		fmt.Sprintf(`
		# Print resources to stdout
		%[1]s dump -f bootstrap.yaml

		# Save resources to a file
		%[1]s dump -f ./config --output-file resources.yaml
		`, meta.CLIName)))
)

func NewDumpCmd() (*cobra.Command, error) {
	cmd, err := bootstrap.NewBootstrapCmd(Verb)
	if err != nil {
		return nil, err
	}

	cmd.Use = dumpUse
	cmd.Short = dumpShort
	cmd.Long = dumpLong
	cmd.Example = dumpExamples
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
	}

	return cmd, nil
}
