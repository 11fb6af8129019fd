package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/internal/similarity"
)

var (
	maxScore     float64
	exportScores bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [dirs...]",
	Short: "Score every pair of songs",
	Long: `Load a song library, compare every pair of songs and print the scores.

Scores are distances between 0 and 1: lower means more similar.

Examples:
  # Compare the songs below the configured library directories
  songsim compare

  # Compare two directories and show only close matches
  songsim compare ./hymns ./worship --max-score 0.5

  # Include songs stored in S3 and export the scores to Elasticsearch
  songsim compare --s3-prefix imports/songs.example.com/2024-12-04T17-30-00 --export`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	addLibraryFlags(compareCmd)
	compareCmd.Flags().Float64Var(&maxScore, "max-score", 1, "only print pairs scoring at most this distance")
	compareCmd.Flags().BoolVar(&exportScores, "export", false, "export the scores to Elasticsearch")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	out := cmd.OutOrStdout()

	sources, err := librarySources(&cfg, libraryDirs(&cfg, args))
	if err != nil {
		return err
	}

	l := loader.New(loader.Config{Workers: cfg.Engine.Workers, Progress: progress.LogManager{}})
	docs, err := loadLibrary(ctx, cmd.ErrOrStderr(), l, sources)
	if err != nil {
		return err
	}

	engine := similarity.New(
		similarity.WithWorkers(cfg.Engine.Workers),
		similarity.WithProgress(progress.LogManager{}),
	)
	added := engine.AddDocuments(docs...)
	if skipped := len(docs) - added; skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d duplicate songs\n", skipped)
	}
	if added < 2 {
		fmt.Fprintf(out, "Found %d songs, need at least 2 to compare\n", added)
		return nil
	}

	start := time.Now()
	engine.Start()
	if err := engine.Wait(ctx); err != nil {
		return fmt.Errorf("comparison interrupted: %w", err)
	}

	scores := engine.Scores()
	shown := printScores(out, scores, maxScore)
	fmt.Fprintf(out, "\n%d songs, %d pairs (%d shown) in %v\n", added, len(scores), shown, time.Since(start).Round(time.Millisecond))

	if exportScores {
		esClient, err := newExporter(&cfg)
		if err != nil {
			return err
		}
		n, err := esClient.Export(ctx, scores)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d scores to %s\n", n, cfg.Elasticsearch.Index)
	}
	return nil
}

// printScores writes one line per pair scoring at most limit and returns how
// many were written.
func printScores(w io.Writer, scores []similarity.PairScore, limit float64) int {
	shown := 0
	for _, s := range scores {
		if s.Score > limit {
			continue
		}
		fmt.Fprintf(w, "%.4f  %s  <->  %s\n", s.Score, s.A.Name(), s.B.Name())
		shown++
	}
	return shown
}
