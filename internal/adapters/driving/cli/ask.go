package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var (
	askConversation string
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the documents",
	Long: `Retrieves the passages most relevant to the question, routes it to the light
or heavy model, and prints the generated answer with its sources.

Without an argument, questions are read from stdin one per line and answered
as a single conversation. An empty line or EOF ends the session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "continue an existing conversation")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return fmt.Errorf("%w: query service not configured", domain.ErrLLMUnavailable)
	}
	if retrievalService != nil {
		if err := retrievalService.EnsureLoaded(cmd.Context()); err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
	}

	if len(args) == 1 {
		_, err := askOnce(cmd, args[0], askConversation)
		return err
	}
	return askInteractive(cmd, cmd.InOrStdin())
}

func askOnce(cmd *cobra.Command, question, conversationID string) (*domain.Answer, error) {
	answer, err := queryService.Ask(cmd.Context(), domain.Question{
		Text:           question,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return answer, nil
	}

	printAnswer(cmd, answer)
	return answer, nil
}

func askInteractive(cmd *cobra.Command, in io.Reader) error {
	reader := bufio.NewReader(in)
	conversationID := askConversation
	for {
		cmd.Print("> ")
		line, err := reader.ReadString('\n')
		question := strings.TrimSpace(line)
		if question == "" {
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading question: %w", err)
			}
			return nil
		}

		answer, askErr := askOnce(cmd, question, conversationID)
		switch {
		case askErr == nil:
			conversationID = answer.ConversationID
		case errors.Is(askErr, domain.ErrInvalidInput):
			cmd.Printf("%v\n", askErr)
		default:
			return askErr
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Answer)
	cmd.Println()

	meta := answer.Metadata
	cmd.Printf("[%s · %s · %d ms · %d+%d tokens]\n",
		meta.Classification, meta.ModelUsed, meta.LatencyMS, meta.Tokens.Input, meta.Tokens.Output)
	for _, flag := range meta.EvaluatorFlags {
		cmd.Printf("! %s\n", flag)
	}
	if len(answer.Sources) > 0 {
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s, page %d (%.2f)\n", i+1, src.Document, src.Page, src.RelevanceScore)
		}
	}
	if answer.ConversationID != "" {
		cmd.Printf("Conversation: %s\n", answer.ConversationID)
	}
}
