package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentsift/jobdex/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobdex",
		Short: "Jobdex CLI - semantic search over job descriptions",
		Long: `Jobdex CLI provides commands to index and query job descriptions.

Environment variables:
  JOBDEX_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.SyncCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.LabelsCmd())
	rootCmd.AddCommand(client.JDCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
