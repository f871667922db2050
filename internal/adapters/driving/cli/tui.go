package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// TUIConfig holds configuration for the TUI command.
// Fields left nil fall back to the bootstrapped services.
type TUIConfig struct {
	RetrievalService    driving.RetrievalService
	RouterService       driving.RouterService
	QueryService        driving.QueryService
	IndexService        driving.IndexService
	ResultActionService driving.ResultActionService
	SettingsService     driving.SettingsService
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for ClearPath.

The TUI lets you ask questions with cited answers, search passages,
and check or rebuild the index with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Submit / Select
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from tuiConfig and the bootstrapped services.
func tuiPorts() *tui.Ports {
	ports := tui.NewPorts(retrievalService, routerService)
	ports.Query = queryService
	ports.Index = indexService
	ports.ResultAction = resultActionService
	ports.Settings = settingsService

	if tuiConfig == nil {
		return ports
	}
	if tuiConfig.RetrievalService != nil {
		ports.Retrieval = tuiConfig.RetrievalService
	}
	if tuiConfig.RouterService != nil {
		ports.Router = tuiConfig.RouterService
	}
	if tuiConfig.QueryService != nil {
		ports.Query = tuiConfig.QueryService
	}
	if tuiConfig.IndexService != nil {
		ports.Index = tuiConfig.IndexService
	}
	if tuiConfig.ResultActionService != nil {
		ports.ResultAction = tuiConfig.ResultActionService
	}
	if tuiConfig.SettingsService != nil {
		ports.Settings = tuiConfig.SettingsService
	}
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Set up context from command
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
