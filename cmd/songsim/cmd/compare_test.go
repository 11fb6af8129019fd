package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mfenderov/songsim/internal/config"
	"github.com/mfenderov/songsim/internal/events"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/pkg/models"
)

func song(source, title string) *models.Document {
	doc := models.NewDocument(source)
	doc.SetTitle(title)
	doc.LoadLines([]string{title})
	return doc
}

func TestPrintScores(t *testing.T) {
	scores := []similarity.PairScore{
		{A: song("a.sng", "Grace"), B: song("b.sng", "Grace Again"), Score: 0.1},
		{A: song("a.sng", "Grace"), B: song("c.sng", "Holy"), Score: 0.9},
	}

	var buf bytes.Buffer
	if n := printScores(&buf, scores, 0.5); n != 1 {
		t.Errorf("printScores() = %d, want 1", n)
	}
	if got := buf.String(); got != "0.1000  Grace  <->  Grace Again\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	if n := printScores(&buf, scores, 1); n != 2 {
		t.Errorf("printScores() = %d, want 2", n)
	}
	if !strings.Contains(buf.String(), "Holy") {
		t.Error("all pairs should be printed with the default limit")
	}
}

func TestLibraryDirs(t *testing.T) {
	cfg := config.Defaults()
	cfg.Library.Dirs = []string{"/songs"}

	if got := libraryDirs(&cfg, []string{"a", "b"}); len(got) != 2 || got[0] != "a" {
		t.Errorf("arguments should win, got %v", got)
	}
	if got := libraryDirs(&cfg, nil); len(got) != 1 || got[0] != "/songs" {
		t.Errorf("config should be the fallback, got %v", got)
	}

	noDirs = true
	defer func() { noDirs = false }()
	if got := libraryDirs(&cfg, nil); got != nil {
		t.Errorf("--no-dirs should drop the configured dirs, got %v", got)
	}
}

func TestLibrarySources(t *testing.T) {
	cfg := config.Defaults()

	if _, err := librarySources(&cfg, nil); err == nil {
		t.Error("librarySources() should fail without any source")
	}

	fromURL = "https://songs.example.com/"
	defer func() { fromURL = "" }()
	sources, err := librarySources(&cfg, []string{"./hymns"})
	if err != nil {
		t.Fatalf("librarySources() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].Name() != "./hymns" || sources[1].Name() != "https://songs.example.com/" {
		t.Errorf("sources = %s, %s", sources[0].Name(), sources[1].Name())
	}
}

func TestLoadReporter(t *testing.T) {
	var buf bytes.Buffer
	report := loadReporter(&buf)
	report(events.LoadComplete{Source: "./hymns", Loaded: 12, Failed: 1, Duration: 1500 * time.Microsecond})

	want := "Loaded 12 songs from ./hymns (1 failed) in 2ms\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", ":9090", ":8080"); got != ":9090" {
		t.Errorf("firstNonEmpty() = %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q", got)
	}
}
