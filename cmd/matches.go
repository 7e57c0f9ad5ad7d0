package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/matches"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show the AI-generated ranked job matches for your resume",
	Run: func(cmd *cobra.Command, _ []string) {
		showMatches(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().Int("limit", 10, "maximum matches to show")
	matchesCmd.Flags().Int("skip", 0, "matches to skip (pagination)")
}

func showMatches(cmd *cobra.Command) {
	a := newApp()
	a.requireAuth()

	limit, _ := cmd.Flags().GetInt("limit")
	skip, _ := cmd.Flags().GetInt("skip")

	feed, err := a.feed().List(a.ctx, skip, limit)
	if err != nil {
		a.logger.Fatal("fetching matches", zap.Error(err))
	}

	if feed.Empty() {
		fmt.Println("No matches yet. Your matches are being generated; processing in background.")
		return
	}

	for _, m := range feed.Matches {
		if score, ok := matches.FormatScore(m.Score); ok {
			fmt.Printf("%s match  %s / %s\n", score, m.Title, m.Company)
		} else {
			fmt.Printf("%s / %s\n", m.Title, m.Company)
		}
		if m.Location != "" {
			fmt.Printf("  %s\n", m.Location)
		}
		fmt.Printf("  %s\n", m.Analysis)
		if m.URL != "" {
			fmt.Printf("  %s\n", m.URL)
		}
		fmt.Println()
	}

	fmt.Printf("%d of %d matches shown\n", feed.Len(), feed.Total)
}
