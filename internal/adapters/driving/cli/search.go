package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 100

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks indexed passages against the query with BM25 and prints the best
matches with their source document and page. No language model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	ctx := cmd.Context()
	if err := retrievalService.EnsureLoaded(ctx); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results, err := retrievalService.Retrieve(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	if routerService != nil {
		route := routerService.Route(query)
		cmd.Printf("Route: %s -> %s\n\n", route.Classification, route.Model)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	width := terminalWidth() - 6
	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] source, page P (score)
		cmd.Printf("  [%d] %s, page %d (%.2f)\n",
			i+1, results[i].Source, results[i].Page, results[i].RelevanceScore)
		if snippet := snippet(results[i].Text, width); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

// terminalWidth returns the stdout width, or defaultWidth when unknown.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// snippet collapses whitespace and truncates text to width runes.
func snippet(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if width < 4 || len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}
