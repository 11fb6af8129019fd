package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfenderov/songsim/internal/loader"
	"github.com/mfenderov/songsim/internal/similarity"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startWatcher(t *testing.T, dir string) *similarity.Engine {
	t.Helper()
	engine := similarity.New()
	w, err := New(Config{Dirs: []string{dir}, Debounce: 50 * time.Millisecond}, engine, loader.New(loader.Config{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
		w.Close()
	})
	return engine
}

func writeSong(t *testing.T, path, title, line string) {
	t.Helper()
	content := "#Title=" + title + "\n---\nVerse\n" + line + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func hasDocuments(e *similarity.Engine) func() bool {
	return func() bool { return len(e.Documents()) > 0 }
}

func TestNew_Validation(t *testing.T) {
	engine := similarity.New()
	l := loader.New(loader.Config{})

	if _, err := New(Config{}, engine, l); err == nil {
		t.Error("New() should require a directory")
	}
	if _, err := New(Config{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, engine, l); err == nil {
		t.Error("New() should fail for a missing directory")
	}
}

func TestWatcher_NewSongsReachTheEngine(t *testing.T) {
	dir := t.TempDir()
	writeSong(t, filepath.Join(dir, "existing.sng"), "Existing", "already here")
	engine := startWatcher(t, dir)

	writeSong(t, filepath.Join(dir, "grace.sng"), "Amazing Grace", "amazing grace how sweet the sound")
	waitFor(t, "first song", hasDocuments(engine))

	writeSong(t, filepath.Join(dir, "holy.SNG"), "Holy", "holy holy holy")
	waitFor(t, "second song", func() bool { return len(engine.Documents()) == 2 })

	waitFor(t, "pair to be scored", func() bool { return engine.ScoredPairs() == 1 })

	for _, doc := range engine.Documents() {
		if doc.Title() == "Existing" {
			t.Error("songs present before watching are left to the initial load")
		}
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	engine := startWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("#Title=Notes\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeSong(t, filepath.Join(dir, "grace.sng"), "Amazing Grace", "amazing grace")
	waitFor(t, "song", hasDocuments(engine))

	time.Sleep(150 * time.Millisecond)
	docs := engine.Documents()
	if len(docs) != 1 || docs[0].Title() != "Amazing Grace" {
		t.Errorf("Documents() = %v, want only the song", docs)
	}
}

func TestWatcher_NewDirectories(t *testing.T) {
	dir := t.TempDir()
	engine := startWatcher(t, dir)

	sub := filepath.Join(dir, "hymns", "old")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSong(t, filepath.Join(sub, "grace.sng"), "Amazing Grace", "amazing grace")

	waitFor(t, "song in new directory", hasDocuments(engine))
	if got := engine.Documents()[0].SourceID(); got != filepath.Join(sub, "grace.sng") {
		t.Errorf("SourceID = %q", got)
	}
}

func TestWatcher_ChangedSongIsAddedAgain(t *testing.T) {
	dir := t.TempDir()
	engine := startWatcher(t, dir)
	path := filepath.Join(dir, "grace.sng")

	writeSong(t, path, "Amazing Grace", "amazing grace")
	waitFor(t, "first version", hasDocuments(engine))

	writeSong(t, path, "Amazing Grace", "how sweet the sound")
	waitFor(t, "second version", func() bool { return len(engine.Documents()) == 2 })

	docs := engine.Documents()
	if docs[0].SourceID() != docs[1].SourceID() {
		t.Error("both versions should come from the same file")
	}
	if docs[0].ID() == docs[1].ID() {
		t.Error("a changed song should be a different document")
	}
}
