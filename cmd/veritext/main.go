package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veritext/veritext/internal/cli"
	"github.com/veritext/veritext/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "veritext",
		Short: "Veritext CLI - Semantic search over curated content",
		Long: `Veritext CLI provides commands to store, browse and search content.

Environment variables:
  VERITEXT_API_TOKEN   API token for authentication (optional for open servers)
  VERITEXT_API_URL     API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.TopicsCmd())
	rootCmd.AddCommand(client.DeleteCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
