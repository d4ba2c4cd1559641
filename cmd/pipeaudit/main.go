// pipeaudit is the CLI: run an audit over CSV exports, serve the audit as
// an HTTP endpoint, or generate a sample dataset.
//
// Usage:
//
//	pipeaudit run --deals deals.csv [--activities activities.csv] [--html report.html]
//	pipeaudit serve
//	pipeaudit sample --dir ./sample
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pipeaudit",
	Short: "Find revenue leaks in CRM pipeline exports",
	Long: "Pipeaudit ingests deal and activity exports and computes diagnostic\n" +
		"metrics: dormant opportunities, slow lead response, funnel drop-off,\n" +
		"rep performance variance, and data hygiene defects.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
