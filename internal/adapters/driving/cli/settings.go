package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change paths, chunking, retrieval, routing and LLM settings.

Settings are stored in the config file. The LLM API key is normally read
from the environment variable named by llm.api_key_env.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting",
	Long: `Change a single setting. Run 'clearpath settings keys' for the list of keys.

When the value is omitted for llm.api_key, it is read from the terminal
without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsRequestLogCmd = &cobra.Command{
	Use:   "request-log",
	Short: "Choose the request log backend",
	RunE:  runSettingsRequestLog,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsRequestLogCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Documents: %s\n", settings.Paths.DocumentsDir)
	cmd.Printf("  Index: %s\n", settings.Paths.IndexDir)
	cmd.Printf("  Logs: %s\n", settings.Paths.LogDir)
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  Chunk size: %d words\n", settings.Chunking.Size)
	cmd.Printf("  Chunk overlap: %d words\n", settings.Chunking.Overlap)
	cmd.Printf("  Stemming: %t\n", settings.Tokenizer.Stemming)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Router]")
	cmd.Printf("  Light model: %s\n", settings.Router.LightModel)
	cmd.Printf("  Heavy model: %s\n", settings.Router.HeavyModel)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	if settings.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set, export %s)\n", settings.LLM.APIKeyEnv)
	}
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	cmd.Printf("  History turns: %d\n", settings.LLM.HistoryTurns)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	if settings.Server.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Server.RequestsPerSecond)
	} else {
		cmd.Printf("  Rate limit: off\n")
	}
	cmd.Printf("  Request log: %s\n", settings.RequestLog.Kind)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if key != "llm.api_key" {
			return fmt.Errorf("a value is required for %s", key)
		}
		cmd.Print("Enter API key: ")
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("API key is required")
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == "llm.api_key" {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsRequestLog(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Request Log Backend")
	cmd.Println("--------------------------")
	kinds := []domain.RequestLogKind{domain.RequestLogJSONL, domain.RequestLogSQLite, domain.RequestLogNone}
	for i, kind := range kinds {
		cmd.Printf("  %d. %s\n", i+1, kind)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	selected := kinds[parseChoice(input, len(kinds), 1)-1]

	if err := settingsService.Set("request_log.kind", string(selected)); err != nil {
		return fmt.Errorf("failed to set request log backend: %w", err)
	}
	cmd.Printf("Request log backend set to: %s\n", selected)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
