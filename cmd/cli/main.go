package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    string = "http://localhost:8788"
	output    string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "gltch",
	Short: "GLTCH CLI - Inspect feeds and manage members from the command line",
	Long: `GLTCH CLI provides command-line access to a running GLTCH backend.
Fetch ranked feeds, register members, and inspect community hashtags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if authToken == "" {
			authToken = os.Getenv("GLTCH_TOKEN")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to GLTCH_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(hashtagsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
