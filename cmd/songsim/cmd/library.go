package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mfenderov/songsim/internal/config"
	"github.com/mfenderov/songsim/internal/elasticsearch"
	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/metrics"
	"github.com/mfenderov/songsim/internal/scraper"
	"github.com/mfenderov/songsim/internal/storage"
	"github.com/mfenderov/songsim/pkg/models"
	"github.com/spf13/cobra"
)

// Library source flags shared by compare, watch and serve.
var (
	s3Prefix string
	fromURL  string
	noDirs   bool
)

func addLibraryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "", "also load the songs stored under this S3 prefix")
	cmd.Flags().StringVar(&fromURL, "url", "", "also load the songs linked from this web page")
	cmd.Flags().BoolVar(&noDirs, "no-dirs", false, "do not load the configured library directories")
}

// libraryDirs returns the directories given as arguments, falling back to
// the configured library.
func libraryDirs(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	if noDirs {
		return nil
	}
	return cfg.Library.Dirs
}

// librarySources builds every source selected by arguments and flags.
func librarySources(cfg *config.Config, dirs []string) ([]loader.Source, error) {
	var sources []loader.Source
	if len(dirs) > 0 {
		sources = append(sources, loader.NewDirSource(dirs...))
	}

	if s3Prefix != "" {
		storageClient, err := newStorageClient(cfg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, storageClient.Source(s3Prefix))
	}

	if fromURL != "" {
		sources = append(sources, newScraper(cfg).Source(fromURL))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no song library given: pass directories, --s3-prefix or --url")
	}
	return sources, nil
}

// loadLibrary loads all sources and returns the parsed songs. Songs that
// cannot be read are reported on w and skipped.
func loadLibrary(ctx context.Context, w io.Writer, l *loader.Loader, sources []loader.Source) ([]*models.Document, error) {
	var docs []*models.Document
	for _, src := range sources {
		result, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  Warning: %v\n", e)
		}
		docs = append(docs, result.Documents...)
	}
	return docs, nil
}

func newStorageClient(cfg *config.Config) (*storage.Client, error) {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func newScraper(cfg *config.Config) *scraper.Scraper {
	return scraper.New(scraper.Config{
		Delay:       cfg.Scraper.Delay,
		MaxDepth:    cfg.Scraper.MaxDepth,
		FollowLinks: cfg.Scraper.FollowLinks,
		Timeout:     cfg.Scraper.Timeout,
		UserAgent:   cfg.Scraper.UserAgent,
	})
}

func newExporter(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// serveMetrics exposes m on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
}
