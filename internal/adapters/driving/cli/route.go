package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var routeJSON bool

var routeCmd = &cobra.Command{
	Use:   "route [question]",
	Short: "Show which model a question would use",
	Long: `Classifies the question as simple or complex with the keyword and length
rules, and prints the model tier it would be answered by.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "output the route as JSON")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	if routerService == nil {
		return errNotConfigured("router")
	}

	route := routerService.Route(args[0])
	if routeJSON {
		data, err := json.Marshal(route)
		if err != nil {
			return fmt.Errorf("failed to marshal route: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Classification: %s\n", route.Classification)
	cmd.Printf("Model:          %s\n", route.Model)
	return nil
}
