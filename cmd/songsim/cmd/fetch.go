package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var fetchURLs []string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download songs linked from web pages into S3",
	Long: `Crawl web pages for links to SongBeamer files and store the songs in
the configured S3 bucket, under a new prefix per page.

Examples:
  songsim fetch --url https://songs.example.com/library/

  # Compare the fetched songs afterwards
  songsim compare --no-dirs --s3-prefix imports/songs.example.com/2024-12-04T17-30-00`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchURLs, "url", nil, "page to crawl for songs (repeatable)")
	fetchCmd.MarkFlagRequired("url")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	out := cmd.OutOrStdout()
	slog.Debug("fetch command starting", "urls", len(fetchURLs))

	storageClient, err := newStorageClient(&cfg)
	if err != nil {
		return err
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	s := newScraper(&cfg)
	totalSongs := 0
	var prefixes []string
	for _, url := range fetchURLs {
		fmt.Fprintf(out, "Fetching songs from: %s\n", url)

		result, err := s.ScrapeToS3(ctx, url, storageClient)
		if err != nil {
			fmt.Fprintf(out, "  Error: %v\n", err)
			continue
		}
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Warning: %v\n", e)
		}

		totalSongs += result.SongCount
		prefixes = append(prefixes, result.Prefix)
		fmt.Fprintf(out, "  Songs: %d, Prefix: %s\n", result.SongCount, result.Prefix)
	}

	fmt.Fprintf(out, "\nTotal: %d songs written to s3://%s\n", totalSongs, storageClient.Bucket())
	for _, prefix := range prefixes {
		fmt.Fprintf(out, "Run 'songsim compare --s3-prefix %s' to compare them\n", prefix)
	}
	return nil
}
