package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentsift/jobdex/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobdexd",
		Short: "Jobdex daemon",
		Long:  "Jobdex daemon for running the API server and importing job-description corpora",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ImportCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
