package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfenderov/songsim/internal/config"
	"github.com/mfenderov/songsim/internal/events"
	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/metrics"
	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/internal/watcher"
)

var (
	metricsAddr string
	watchExport bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Keep scores up to date while the library changes",
	Long: `Load a song library, score every pair and keep watching the library
directories. New or changed songs are parsed and scored against the rest of
the library as soon as they appear.

Examples:
  songsim watch ./hymns

  # Expose Prometheus metrics and export scores after every change
  songsim watch ./hymns --metrics-addr :9090 --export`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addLibraryFlags(watchCmd)
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default from config)")
	watchCmd.Flags().BoolVar(&watchExport, "export", false, "export the scores to Elasticsearch whenever they settle")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	out := cmd.OutOrStdout()

	dirs := libraryDirs(&cfg, args)
	if len(dirs) == 0 {
		return fmt.Errorf("watch needs at least one library directory")
	}
	sources, err := librarySources(&cfg, dirs)
	if err != nil {
		return err
	}

	m := metrics.New()
	if addr := firstNonEmpty(metricsAddr, cfg.Metrics.Addr); addr != "" {
		serveMetrics(ctx, addr, m)
	}

	l := loader.New(loader.Config{Workers: cfg.Engine.Workers, Progress: progress.LogManager{}, Metrics: m})
	engine := similarity.New(
		similarity.WithWorkers(cfg.Engine.Workers),
		similarity.WithProgress(progress.LogManager{}),
		similarity.WithMetrics(m),
	)

	l.OnLoadComplete(loadReporter(out))
	if err := onSettled(ctx, &cfg, engine, func(ev events.PassComplete) {
		fmt.Fprintf(out, "%d songs, %d pairs scored (%d new, %d passes) in %v\n",
			ev.Documents, engine.ScoredPairs(), ev.PairsComputed, ev.Passes, ev.Duration)
	}); err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{Dirs: dirs, Debounce: cfg.Library.Debounce}, engine, l)
	if err != nil {
		return err
	}
	defer w.Close()

	docs, err := loadLibrary(ctx, cmd.ErrOrStderr(), l, sources)
	if err != nil {
		return err
	}
	engine.AddDocuments(docs...)
	engine.Start()

	fmt.Fprintf(out, "Watching %v (Ctrl+C to stop)\n", dirs)
	return w.Run(ctx)
}

// onSettled registers report, and the Elasticsearch export when enabled,
// to run whenever the engine settles.
func onSettled(ctx context.Context, cfg *config.Config, engine *similarity.Engine, report func(events.PassComplete)) error {
	engine.OnPassComplete(report)
	if !watchExport {
		return nil
	}

	esClient, err := newExporter(cfg)
	if err != nil {
		return err
	}
	engine.OnPassComplete(func(events.PassComplete) {
		if _, err := esClient.Export(ctx, engine.Scores()); err != nil {
			slog.Error("failed to export scores", "error", err)
		}
	})
	return nil
}

// loadReporter prints one summary line per finished load, including the
// batches picked up by the watcher.
func loadReporter(w io.Writer) func(events.LoadComplete) {
	return func(ev events.LoadComplete) {
		fmt.Fprintf(w, "Loaded %d songs from %s (%d failed) in %v\n",
			ev.Loaded, ev.Source, ev.Failed, ev.Duration.Round(time.Millisecond))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
