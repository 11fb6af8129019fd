package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfenderov/songsim/internal/parser"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/internal/textdiff"
)

var showLCS bool

var diffCmd = &cobra.Command{
	Use:   "diff <song-a> <song-b>",
	Short: "Show the line differences between two songs",
	Long: `Parse two song files and show how their lyrics differ line by line.

Changed lines are shown with their relative edit distance, and with --lcs
also with their longest common subsequence.

Example:
  songsim diff hymns/grace.sng worship/grace-2.sng --lcs`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&showLCS, "lcs", false, "show the longest common subsequence of changed lines")
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}
	b, err := parser.ParseFile(args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	changes := textdiff.Lines(a, b)
	summary := textdiff.Summarize(changes)

	fmt.Fprintf(out, "--- %s (%s)\n", a.Name(), a.SourceID())
	fmt.Fprintf(out, "+++ %s (%s)\n", b.Name(), b.SourceID())
	fmt.Fprint(out, textdiff.Format(changes, showLCS))
	fmt.Fprintf(out, "\n%d equal, %d changed, %d removed, %d added; score %.4f\n",
		summary.Equal, summary.Replaced, summary.Deleted, summary.Inserted, similarity.Score(a, b))
	return nil
}
