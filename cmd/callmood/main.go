// Package main provides the callmood CLI for working with analysis files offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "callmood",
		Short: "Turn call emotion analyses into dashboards",
		Long: `callmood builds call dashboards from saved analysis responses.

Commands:
  transform  Print the dashboard bundle as JSON, YAML or tables
  render     Write the dashboard charts as an HTML page`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newTransformCommand())
	rootCmd.AddCommand(newRenderCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
