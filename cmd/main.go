package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"searchagent/api"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "searchagent",
	Short: "Search the web and summarize what it says",
	Long: `searchagent queries a web search provider, reads the result pages in
parallel, ranks them by relevance and source credibility, and returns a
structured analysis: summary, key points, statistics, expert opinions,
pros and cons, related topics and credibility ratings.

Examples:
  searchagent serve --config config.yaml
  searchagent chat
  searchagent query "electric vehicles" --max-results 5 --json`,
	Version:       api.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(queryCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}
