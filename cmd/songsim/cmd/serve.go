package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/mcp"
	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/internal/watcher"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve [dirs...]",
	Short: "Start the MCP server",
	Long: `Start the MCP server for song and similarity lookups.

The library is loaded and scored in the background while the server is
already answering. The server communicates via stdio and provides four tools:
  - list_songs: List songs with their IDs and titles
  - get_song: Get a song and its lyrics by ID
  - get_similarity: Get the distance score of two songs
  - similarity_status: Report how far scoring has come

Example:
  songsim serve ./hymns --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addLibraryFlags(serveCmd)
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "keep watching the library directories for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	dirs := libraryDirs(&cfg, args)
	sources, err := librarySources(&cfg, dirs)
	if err != nil {
		return err
	}

	counter := &progress.Counter{}
	engine := similarity.New(
		similarity.WithWorkers(cfg.Engine.Workers),
		similarity.WithProgress(progress.Fanout{counter, progress.LogManager{}}),
	)
	l := loader.New(loader.Config{Workers: cfg.Engine.Workers, Progress: progress.LogManager{}})

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, engine, counter)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// stdout carries the protocol, so loading reports go to stderr.
	go func() {
		docs, err := loadLibrary(ctx, cmd.ErrOrStderr(), l, sources)
		if err != nil {
			slog.Error("failed to load library", "error", err)
			return
		}
		engine.AddDocuments(docs...)
		engine.Start()
	}()

	if serveWatch && len(dirs) > 0 {
		w, err := watcher.New(watcher.Config{Dirs: dirs, Debounce: cfg.Library.Debounce}, engine, l)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Error("watcher stopped", "error", err)
			}
		}()
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
