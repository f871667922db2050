package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/watcher"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index when documents change",
	Long: `Watches the documents directory and rebuilds the index after changes settle.
Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a rebuild")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}
	if documentSource == nil {
		return errNotConfigured("document source")
	}

	w := watcher.New(documentSource, indexService, watchDebounce)
	w.OnBuild = func(report *domain.BuildReport, err error) {
		if err == nil && !report.Skipped {
			cmd.Printf("Rebuilt index: %d chunks from %d documents\n", report.Chunks, report.Documents)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", documentSource.Root())
	return w.Run(cmd.Context())
}
