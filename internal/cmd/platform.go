package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cognite/powerops/internal/cdf"
	"github.com/cognite/powerops/internal/cdf/auth"
	"github.com/cognite/powerops/internal/cdf/httpclient"
	"github.com/cognite/powerops/internal/cdf/memory"
	"github.com/cognite/powerops/internal/cmd/common"
	"github.com/cognite/powerops/internal/config"
	cerr "github.com/cognite/powerops/internal/err"
)

// PlatformFactory builds the platform client a verb talks to. dataSet is the data
// set the verb will resolve; the in-memory platform registers it up front.
type PlatformFactory func(ctx context.Context, cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error)

type platformFactoryKey struct{}

// PlatformFactoryKey stores the PlatformFactory in a command context.
var PlatformFactoryKey = platformFactoryKey{}

// DefaultPlatformFactory returns the REST client configured under cdf.*, or an
// empty in-memory platform when cdf.in-memory is set.
func DefaultPlatformFactory(ctx context.Context, cfg config.Hook, logger *slog.Logger, dataSet string) (*cdf.Client, error) {
	if cfg.GetBool(common.InMemoryConfigPath) {
		p := memory.NewPlatform()
		p.AddDataSet(dataSet)
		logger.Info("Using in-memory platform", "data_set", dataSet)
		return p.Client(), nil
	}

	project := cfg.GetString(common.ProjectConfigPath)
	if project == "" {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("%s is not set (use the config file or POWEROPS_CDF_PROJECT)", common.ProjectConfigPath),
		}
	}
	baseURL := cfg.GetString(common.BaseURLConfigPath)
	if baseURL == "" {
		baseURL = cdf.DefaultBaseURL
	}
	scopes := cfg.GetStringSlice(common.ScopesConfigPath)
	if len(scopes) == 0 {
		scopes = auth.DefaultScopes(baseURL)
	}

	tokens, err := auth.NewTokenSource(ctx, auth.Credentials{
		Token:        cfg.GetString(common.TokenConfigPath),
		TokenURL:     cfg.GetString(common.TokenURLConfigPath),
		ClientID:     cfg.GetString(common.ClientIDConfigPath),
		ClientSecret: cfg.GetString(common.ClientSecretConfigPath),
		Scopes:       scopes,
	})
	if err != nil {
		return nil, &cerr.ConfigurationError{Err: err}
	}

	logger.Debug("Creating platform client", "project", project, "base_url", baseURL)
	return cdf.NewRESTClient(cdf.RESTConfig{
		BaseURL: baseURL,
		Project: project,
		Tokens:  tokens,
	}, httpclient.NewLoggingHTTPClient(logger))
}
