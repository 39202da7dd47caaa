package main

import (
	"fmt"
	"io"
	"strings"

	"searchagent/agent"
)

const rule = "================================================================================"

func printError(w io.Writer, err error) {
	switch agent.Kind(err) {
	case agent.KindValidation:
		fmt.Fprintf(w, "\nInvalid request: %v\n", err)
	case agent.KindNoResults:
		fmt.Fprintln(w, "\nNo results found. Try a different search query.")
	case agent.KindUpstreamUnavailable:
		fmt.Fprintln(w, "\nThe search provider is unavailable right now. Please try again later.")
	case agent.KindTimeout:
		fmt.Fprintln(w, "\nThe search timed out. Try again or ask for fewer results.")
	default:
		fmt.Fprintf(w, "\nAn error occurred: %v\n", err)
	}
}

func printBundle(w io.Writer, b *agent.AnalysisBundle) {
	fmt.Fprintln(w, "\nSearch Results:")
	fmt.Fprintln(w, rule)
	if b.Outcome == agent.OutcomePartial {
		fmt.Fprintf(w, "Analyzed %d of %d results; %d could not be read.\n", b.AnalyzedCount, b.CandidateCount, len(b.FailedSources))
	}

	for i, src := range b.Sources {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, src.Title)
		fmt.Fprintf(w, "URL: %s\n", src.URL)
		fmt.Fprintf(w, "Source Credibility: %.1f - %s\n", src.Credibility.Score, src.Credibility.Label)

		if src.Summary != "" {
			fmt.Fprintln(w, "\nSummary:")
			fmt.Fprintln(w, src.Summary)
		}
		printList(w, "Key Points", src.KeyPoints)

		stats := make([]string, len(src.Statistics))
		for j, s := range src.Statistics {
			stats[j] = fmt.Sprintf("%s: %s", s.Figure, s.Context)
		}
		printList(w, "Statistics", stats)

		opinions := make([]string, len(src.ExpertOpinions))
		for j, o := range src.ExpertOpinions {
			opinions[j] = attributed(o.Statement, o.Attribution)
		}
		printList(w, "Expert Opinions", opinions)

		if len(src.Pros) > 0 || len(src.Cons) > 0 {
			fmt.Fprintln(w, "\nPros & Cons:")
			if len(src.Pros) > 0 {
				fmt.Fprintln(w, "Advantages:")
				for _, p := range src.Pros {
					fmt.Fprintf(w, "  • %s\n", p)
				}
			}
			if len(src.Cons) > 0 {
				fmt.Fprintln(w, "Disadvantages:")
				for _, c := range src.Cons {
					fmt.Fprintf(w, "  • %s\n", c)
				}
			}
		}
		printList(w, "Related Topics", src.RelatedTopics)
		fmt.Fprintln(w, strings.Repeat("-", len(rule)))
	}

	fmt.Fprintln(w, "\nOverall:")
	fmt.Fprintln(w, rule)
	if b.Summary != "" {
		fmt.Fprintln(w, b.Summary)
	}
	printList(w, "Key Points", b.KeyPoints)

	stats := make([]string, len(b.Statistics))
	for i, s := range b.Statistics {
		stats[i] = fmt.Sprintf("%s: %s (%s)", s.Figure, s.Context, s.SourceURL)
	}
	printList(w, "Statistics", stats)

	opinions := make([]string, len(b.ExpertOpinions))
	for i, o := range b.ExpertOpinions {
		opinions[i] = attributed(o.Statement, o.Attribution)
	}
	printList(w, "Expert Opinions", opinions)
	printList(w, "Pros", b.Pros)
	printList(w, "Cons", b.Cons)
	printList(w, "Related Topics", b.RelatedTopics)

	if len(b.FailedSources) > 0 {
		failed := make([]string, len(b.FailedSources))
		for i, f := range b.FailedSources {
			failed[i] = fmt.Sprintf("%s (%s)", f.URL, f.Reason)
		}
		printList(w, "Unreadable Sources", failed)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "• %s\n", item)
	}
}

func attributed(statement, attribution string) string {
	if attribution == "" {
		return statement
	}
	return fmt.Sprintf("%s (%s)", statement, attribution)
}
