// Package cli implements the clearpath command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// version is set at build time.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "clearpath/skip-bootstrap"

var (
	configPath string
	verbose    bool
)

// Services wired by the bootstrap hook.
var (
	indexService        driving.IndexService
	retrievalService    driving.RetrievalService
	routerService       driving.RouterService
	queryService        driving.QueryService
	settingsService     driving.SettingsService
	resultActionService driving.ResultActionService
	requestLog          driven.RequestLogger
	documentSource      driven.DocumentSource
)

// Services is the set of services a bootstrap produces.
type Services struct {
	Index        driving.IndexService
	Retrieval    driving.RetrievalService
	Router       driving.RouterService
	Query        driving.QueryService
	Settings     driving.SettingsService
	ResultAction driving.ResultActionService
	RequestLog   driven.RequestLogger
	Source       driven.DocumentSource

	// Close releases resources after the command finishes. Optional.
	Close func() error
}

// Bootstrap builds services from the resolved config path.
type Bootstrap func(ctx context.Context, configPath string) (*Services, error)

var (
	bootstrap     Bootstrap
	closeServices func() error
)

var rootCmd = &cobra.Command{
	Use:   "clearpath",
	Short: "Answer questions from your documents",
	Long: `ClearPath indexes a folder of documents with BM25, retrieves the passages
that best match a question, routes the question to a light or heavy model,
and answers with citations.

Run 'clearpath index' once, then 'clearpath ask' or 'clearpath serve'.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./clearpath.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap installs the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs services directly, bypassing the bootstrap hook.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	indexService = s.Index
	retrievalService = s.Retrieval
	routerService = s.Router
	queryService = s.Query
	settingsService = s.Settings
	resultActionService = s.ResultAction
	requestLog = s.RequestLog
	documentSource = s.Source
	closeServices = s.Close
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases services afterwards.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("closing services: %v", cerr)
		}
		closeServices = nil
	}
	return err
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if _, skip := cmd.Annotations[skipBootstrap]; skip || bootstrap == nil {
		return nil
	}

	services, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

// errNotConfigured reports a service missing from the bootstrap.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
