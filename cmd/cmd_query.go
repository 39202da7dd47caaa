package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"searchagent/agent"
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a single search and print the analysis",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntP("max-results", "n", 0, "Number of results to analyze (default agent.default_max_results)")
	queryCmd.Flags().Bool("json", false, "Print the analysis bundle as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := newAppFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if !cmd.Flags().Changed("max-results") {
		maxResults = a.cfg.Agent.DefaultMaxResults
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if a.cfg.App.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.App.RequestTimeout)
		defer cancel()
	}

	out := cmd.OutOrStdout()
	bundle, err := a.service.Search(ctx, agent.SearchRequest{Query: strings.Join(args, " "), MaxResults: maxResults})
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	printBundle(out, bundle)
	return nil
}
