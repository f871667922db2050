package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	requestsLimit int
	requestsJSON  bool
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Show recent requests",
	Long: `Lists the most recent answered questions from the request log with the
model used, token counts and latency.`,
	Args: cobra.NoArgs,
	RunE: runRequests,
}

func init() {
	requestsCmd.Flags().IntVarP(&requestsLimit, "limit", "n", 20, "number of requests to show (0 = all)")
	requestsCmd.Flags().BoolVar(&requestsJSON, "json", false, "output records as JSON lines")
	rootCmd.AddCommand(requestsCmd)
}

func runRequests(cmd *cobra.Command, _ []string) error {
	if requestLog == nil {
		return fmt.Errorf("request log disabled: %w", errNotConfigured("request log"))
	}

	records, err := requestLog.Recent(cmd.Context(), requestsLimit)
	if err != nil {
		return fmt.Errorf("failed to read request log: %w", err)
	}

	if requestsJSON {
		for i := range records {
			data, err := json.Marshal(records[i])
			if err != nil {
				return fmt.Errorf("failed to marshal record: %w", err)
			}
			cmd.Println(string(data))
		}
		return nil
	}

	if len(records) == 0 {
		cmd.Println("No requests logged yet.")
		return nil
	}

	for i := range records {
		r := records[i]
		cmd.Printf("%s  %-7s  %-24s  %5d+%-5d  %6d ms  %s\n",
			r.Timestamp.Local().Format(time.DateTime),
			r.Classification, r.ModelUsed,
			r.TokensInput, r.TokensOutput, r.LatencyMS,
			snippet(r.Query, 60))
	}
	return nil
}
