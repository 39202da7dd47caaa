package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"searchagent/agent"
	"searchagent/api"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive search loop",
	Long:  `Prompt for queries until 'exit' or end of input, printing the analysis of each.`,
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().IntP("max-results", "n", 0, "Number of results to analyze (default agent.default_max_results)")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newAppFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if !cmd.Flags().Changed("max-results") {
		maxResults = a.cfg.Agent.DefaultMaxResults
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return chatLoop(ctx, a.service, cmd.InOrStdin(), cmd.OutOrStdout(), maxResults, a.cfg.App.RequestTimeout)
}

// chatLoop bounds each search by timeout when it is positive.
func chatLoop(ctx context.Context, service api.SearchService, in io.Reader, out io.Writer, maxResults int, timeout time.Duration) error {
	fmt.Fprintln(out, "\nWelcome to the Search Agent!")
	fmt.Fprintln(out, "Type 'exit' to quit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nEnter your search query: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(query, "exit") {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		if query == "" {
			fmt.Fprintln(out, "Please enter a valid search query")
			continue
		}

		fmt.Fprintln(out, "\nSearching...")
		bundle, err := searchWithTimeout(ctx, service, agent.SearchRequest{Query: query, MaxResults: maxResults}, timeout)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			printError(out, err)
			continue
		}

		printBundle(out, bundle)
		fmt.Fprintln(out, "\nSearch completed! Type another query or 'exit' to quit.")
	}
}

func searchWithTimeout(ctx context.Context, service api.SearchService, req agent.SearchRequest, timeout time.Duration) (*agent.AnalysisBundle, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return service.Search(ctx, req)
}
