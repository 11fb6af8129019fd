// Package loader reads song files from a Source and parses them into
// documents in parallel.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mfenderov/songsim/internal/events"
	"github.com/mfenderov/songsim/internal/metrics"
	"github.com/mfenderov/songsim/internal/parser"
	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/pkg/models"
)

// Config holds loader configuration.
type Config struct {
	Workers  int
	Progress progress.Manager
	Metrics  *metrics.Metrics // optional
}

// Result holds the outcome of a load.
type Result struct {
	Source    string
	Documents []*models.Document
	Errors    []error
	Duration  time.Duration
}

// Loader parses every song of a source.
type Loader struct {
	workers  int
	progress progress.Manager
	metrics  *metrics.Metrics

	mu    sync.Mutex
	hooks []func(events.LoadComplete)
}

// New creates a new loader.
func New(config Config) *Loader {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Progress == nil {
		config.Progress = progress.Nop{}
	}
	return &Loader{
		workers:  config.Workers,
		progress: config.Progress,
		metrics:  config.Metrics,
	}
}

// OnLoadComplete registers a hook called after every load.
func (l *Loader) OnLoadComplete(hook func(events.LoadComplete)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook)
}

// Load lists the source and parses everything it returns.
func (l *Loader) Load(ctx context.Context, src Source) (*Result, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", src.Name(), err)
	}
	slog.Info("found songs to load", "source", src.Name(), "count", len(ids))
	return l.LoadIDs(ctx, src, ids)
}

// LoadIDs parses the given ids of a source. Songs that cannot be read are
// reported in Result.Errors as *parser.SourceError and do not stop the load.
// Documents keep the order of ids.
func (l *Loader) LoadIDs(ctx context.Context, src Source, ids []string) (*Result, error) {
	start := time.Now()
	result := &Result{Source: src.Name()}

	task := l.progress.NewTask(fmt.Sprintf("Loading %d songs", len(ids)))
	task.SetTotal(len(ids))

	docs := make([]*models.Document, len(ids))
	errs := make([]error, len(ids))

	p := pool.New().WithMaxGoroutines(l.workers)
	for i, id := range ids {
		p.Go(func() {
			defer task.Advance(1)
			if ctx.Err() != nil {
				return
			}
			docs[i], errs[i] = l.loadOne(ctx, src, id)
		})
	}
	p.Wait()
	task.Complete()

	for i := range ids {
		switch {
		case errs[i] != nil:
			slog.Warn("failed to load song", "id", ids[i], "error", errs[i])
			result.Errors = append(result.Errors, errs[i])
		case docs[i] != nil:
			result.Documents = append(result.Documents, docs[i])
		}
	}
	result.Duration = time.Since(start)

	if l.metrics != nil {
		l.metrics.DocumentsLoadedTotal.WithLabelValues("ok").Add(float64(len(result.Documents)))
		l.metrics.DocumentsLoadedTotal.WithLabelValues("failed").Add(float64(len(result.Errors)))
	}

	slog.Info("load complete",
		"source", result.Source,
		"loaded", len(result.Documents),
		"failed", len(result.Errors),
		"duration", result.Duration)

	l.emit(events.LoadComplete{
		Source:   result.Source,
		Loaded:   len(result.Documents),
		Failed:   len(result.Errors),
		Duration: result.Duration,
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("load cancelled: %w", err)
	}
	return result, nil
}

func (l *Loader) loadOne(ctx context.Context, src Source, id string) (*models.Document, error) {
	rc, err := src.Open(ctx, id)
	if err != nil {
		return nil, &parser.SourceError{SourceID: id, Err: err}
	}
	defer rc.Close()

	doc, err := parser.Parse(rc, id)
	if err != nil {
		return nil, err
	}
	slog.Debug("song loaded", "id", id, "title", doc.Title(), "lines", doc.Len())
	return doc, nil
}

func (l *Loader) emit(event events.LoadComplete) {
	l.mu.Lock()
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	for _, hook := range hooks {
		hook(event)
	}
}
