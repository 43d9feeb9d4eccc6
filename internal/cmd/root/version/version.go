package version

import (
	"context"
	"fmt"
	"io"

	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/meta"
	"github.com/cognite/powerops/internal/util/i18n"
	"github.com/cognite/powerops/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	ShowCommitFlagName   = "show-commit"
	ShowCommitConfigPath = "version." + ShowCommitFlagName
)

var (
	versionUse   = verbs.Version.String()
	versionShort = i18n.T("root.version.versionShort",
		fmt.Sprintf("Print the %s version", meta.CLIName))
	versionLong = normalizers.LongDesc(i18n.T("root.version.versionLong",
		`The version command prints the version and other optional information`))
	versionExample = normalizers.Examples(i18n.T("root.version.versionExamples",
		fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version and the git commit hash as JSON
		%[1]s version --show-commit -o json
		`, meta.CLIName)))
)

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, verbs.Version))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)

			if err := bindFlags(helper); err != nil {
				return err
			}
			if err := validate(helper); err != nil {
				return err
			}
			return run(helper)
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false,
		i18n.T(fmt.Sprintf("root.%s", ShowCommitConfigPath),
			fmt.Sprintf("True to show the git commit hash when built.\n (config path = '%s')", ShowCommitConfigPath)))

	return rv
}

func bindFlags(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	f := helper.GetCmd().Flags().Lookup(ShowCommitFlagName)
	return cfg.BindFlag(ShowCommitConfigPath, f)
}

// Validate ensures the configured command is valid
func validate(_ cmd.Helper) error {
	return nil
}

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// Run performs the actual version command logic
func run(helper cmd.Helper) error {
	info := versionInfo{Version: meta.VERSION}

	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	if cfg.GetBool(ShowCommitConfigPath) {
		info.Commit = meta.COMMIT
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	if outType == common.TEXT {
		return printText(info, helper.GetStreams().Out)
	}

	p, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(info)

	return nil
}

func printText(info versionInfo, out io.Writer) error {
	if _, err := fmt.Fprint(out, info.Version); err != nil {
		return err
	}
	if info.Commit != "" {
		if _, err := fmt.Fprintf(out, " (%s)", info.Commit); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}
