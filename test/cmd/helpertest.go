package cmd

import (
	"context"
	"log/slog"

	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/cmd/root/verbs"
	"github.com/cognite/powerops/internal/config"
	"github.com/cognite/powerops/internal/iostreams"
	"github.com/spf13/cobra"
)

type MockHelper struct {
	GetCmdMock            func() *cobra.Command
	GetArgsMock           func() []string
	GetVerbMock           func() (verbs.VerbValue, error)
	GetStreamsMock        func() *iostreams.IOStreams
	GetConfigMock         func() (config.Hook, error)
	GetOutputFormatMock   func() (common.OutputFormat, error)
	GetLoggerMock         func() (*slog.Logger, error)
	GetContextMock        func() context.Context
	GetPlatformClientMock func(cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error)
}

func (m *MockHelper) GetCmd() *cobra.Command {
	return m.GetCmdMock()
}

func (m *MockHelper) GetArgs() []string {
	return m.GetArgsMock()
}

func (m *MockHelper) GetVerb() (verbs.VerbValue, error) {
	return m.GetVerbMock()
}

func (m *MockHelper) GetStreams() *iostreams.IOStreams {
	return m.GetStreamsMock()
}

func (m *MockHelper) GetConfig() (config.Hook, error) {
	return m.GetConfigMock()
}

func (m *MockHelper) GetOutputFormat() (common.OutputFormat, error) {
	return m.GetOutputFormatMock()
}

func (m *MockHelper) GetLogger() (*slog.Logger, error) {
	return m.GetLoggerMock()
}

func (m *MockHelper) GetContext() context.Context {
	if m.GetContextMock == nil {
		return context.Background()
	}
	return m.GetContextMock()
}

func (m *MockHelper) GetPlatformClient(cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error) {
	return m.GetPlatformClientMock(cfg, logger, dataSet)
}
