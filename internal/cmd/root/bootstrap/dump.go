package bootstrap

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cognite/powerops/internal/cmd"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDumpCmd() *cobra.Command {
	c := &cobra.Command{
		Args: verbs.NoPositionalArgs,
		RunE: runDump,
	}
	addSourceFlags(c)
	c.Flags().String(common.OutputFileFlagName, "", "Write the resources to this file instead of stdout")
	return c
}

func runDump(command *cobra.Command, args []string) error {
	helper, cfg, logger, err := prepare(command, args, verbs.Dump)
	if err != nil {
		return err
	}

	loc, err := buildLocal(helper, cfg, logger)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(loc.collection); err != nil {
		return cmd.PrepareExecutionError("failed to encode resources", err, command)
	}
	if err := enc.Close(); err != nil {
		return cmd.PrepareExecutionError("failed to encode resources", err, command)
	}

	outputFile, _ := command.Flags().GetString(common.OutputFileFlagName)
	if outputFile == "" {
		_, err = helper.GetStreams().Out.Write(buf.Bytes())
		return err
	}

	if err := util.InitDir(outputFile, 0o755); err != nil {
		return cmd.PrepareExecutionError(fmt.Sprintf("failed to create directory for %s", outputFile), err, command)
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o600); err != nil {
		return cmd.PrepareExecutionError(fmt.Sprintf("failed to write %s", outputFile), err, command)
	}
	logger.Info("Wrote bootstrap resources", "path", outputFile, "resources", loc.collection.Size())
	return nil
}
