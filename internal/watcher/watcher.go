// Package watcher feeds song files that appear or change in the library
// directories into a running similarity engine.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/internal/songfile"
)

// Config holds watcher configuration.
type Config struct {
	Dirs     []string
	Debounce time.Duration // quiet period before a batch is loaded
}

// Watcher watches library directories recursively.
type Watcher struct {
	config Config
	engine *similarity.Engine
	loader *loader.Loader
	fs     *fsnotify.Watcher
	source *loader.DirSource
}

// New creates a watcher and registers every directory below config.Dirs.
func New(config Config, engine *similarity.Engine, l *loader.Loader) (*Watcher, error) {
	if len(config.Dirs) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		config: config,
		engine: engine,
		loader: l,
		fs:     fsw,
		source: loader.NewDirSource(config.Dirs...),
	}
	for _, dir := range config.Dirs {
		if _, err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches dir and its subdirectories and returns the song files
// already inside.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var songs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			return nil
		}
		if songfile.IsSongFile(d.Name()) {
			songs = append(songs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return songs, nil
}

// Run processes file events until ctx is done. Events are collected until
// the directories have been quiet for the debounce period; the batch is then
// parsed, added to the engine and a pass is started.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	slog.Info("watching song library", "dirs", w.config.Dirs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handle(event, pending) {
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

// handle records the songs touched by event and reports whether anything
// was recorded.
func (w *Watcher) handle(event fsnotify.Event, pending map[string]bool) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Gone again before we looked.
		return false
	}

	if info.IsDir() {
		if !event.Has(fsnotify.Create) {
			return false
		}
		songs, err := w.addTree(event.Name)
		if err != nil {
			slog.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			return false
		}
		for _, song := range songs {
			pending[song] = true
		}
		return len(songs) > 0
	}

	if !songfile.IsSongFile(event.Name) {
		return false
	}
	slog.Debug("song changed", "path", event.Name, "op", event.Op.String())
	pending[event.Name] = true
	return true
}

func (w *Watcher) flush(ctx context.Context, pending map[string]bool) {
	if len(pending) == 0 {
		return
	}

	ids := make([]string, 0, len(pending))
	for path := range pending {
		ids = append(ids, path)
	}
	slices.Sort(ids)

	result, err := w.loader.LoadIDs(ctx, w.source, ids)
	if err != nil {
		slog.Warn("failed to load changed songs", "error", err)
		return
	}

	added := w.engine.AddDocuments(result.Documents...)
	slog.Info("library changed", "songs", len(ids), "new_documents", added, "failed", len(result.Errors))
	if added > 0 {
		w.engine.Start()
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
