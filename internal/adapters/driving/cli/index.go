package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var (
	indexForce bool
	statusJSON bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the search index",
	Long: `Extracts text from every supported document in the documents directory,
splits it into overlapping word windows, and persists a BM25 index.

The build is skipped when the documents have not changed since the last
build. Use --force to rebuild anyway.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Long:  `Shows the persisted index manifest and whether the documents changed since it was built.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "rebuild even if the index is current")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	report, err := indexService.BuildIndex(cmd.Context(), indexForce)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if report.Skipped {
		cmd.Println("Index is up to date. Use --force to rebuild.")
		return nil
	}

	cmd.Printf("Indexed %d chunks from %d documents in %s.\n",
		report.Chunks, report.Documents, report.Duration.Round(time.Millisecond))
	cmd.Printf("Average tokens per chunk: %.1f\n", report.AverageTokens)
	if report.EmptyChunks > 0 {
		cmd.Printf("Chunks with no terms: %d\n", report.EmptyChunks)
	}
	if len(report.FailedDocuments) > 0 {
		cmd.Printf("Skipped %d document(s):\n", len(report.FailedDocuments))
		for _, doc := range report.FailedDocuments {
			cmd.Printf("  - %s\n", doc)
		}
	}
	return nil
}

type statusOutput struct {
	Exists             bool             `json:"exists"`
	Stale              bool             `json:"stale"`
	CurrentFingerprint string           `json:"current_fingerprint"`
	Manifest           *domain.Manifest `json:"manifest,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index status: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(statusOutput{
			Exists:             status.Exists,
			Stale:              status.Stale,
			CurrentFingerprint: status.CurrentFingerprint,
			Manifest:           status.Manifest,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !status.Exists || status.Manifest == nil {
		cmd.Println("No index found. Run 'clearpath index' to build one.")
		return nil
	}

	m := status.Manifest
	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Built:       %s\n", m.CreatedAt.Local().Format(time.DateTime))
	cmd.Printf("  Documents:   %d\n", m.DocumentCount)
	cmd.Printf("  Chunks:      %d\n", m.ChunkCount)
	cmd.Printf("  Stemming:    %t\n", m.Tokenizer.Stemming)
	cmd.Printf("  Fingerprint: %s\n", m.Fingerprint)
	cmd.Println()
	if status.Stale {
		cmd.Println("Documents changed since the last build. Run 'clearpath index' to refresh.")
	} else {
		cmd.Println("Index is up to date.")
	}
	return nil
}
