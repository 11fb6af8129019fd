// Package scraper discovers song files linked from web pages and downloads
// them.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/mfenderov/songsim/internal/songfile"
	"github.com/mfenderov/songsim/internal/storage"
)

// maxSongSize bounds a single download.
const maxSongSize = 4 << 20

// Config holds scraper configuration.
type Config struct {
	Delay       time.Duration
	MaxDepth    int
	FollowLinks bool
	UserAgent   string
	Timeout     time.Duration
}

// Scraper crawls index pages for links to song files.
type Scraper struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "songsim/1.0"
	}
	return &Scraper{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Discover crawls from startURL and returns the URLs of all song files found,
// sorted. Links are recognised by their .sng path; pages that are not HTML
// but whose body looks like a song are recorded too.
func (s *Scraper) Discover(ctx context.Context, startURL string) ([]string, error) {
	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if songfile.IsSongURL(startURL) {
		return []string{startURL}, nil
	}

	var mu sync.Mutex
	found := make(map[string]bool)
	add := func(u string) {
		mu.Lock()
		found[u] = true
		mu.Unlock()
	}
	var cancelled atomic.Bool

	slog.Debug("starting song discovery", "url", startURL, "max_depth", s.config.MaxDepth)

	c := colly.NewCollector(
		colly.MaxDepth(s.config.MaxDepth),
		colly.UserAgent(s.config.UserAgent),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: 2,
	})
	c.SetRequestTimeout(s.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("discovery cancelled", "url", r.URL.String())
			r.Abort()
			cancelled.Store(true)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			return
		}
		pageURL := r.Request.URL.String()
		contentType := r.Headers.Get("Content-Type")
		if songfile.Detect(r.Request.URL.Path, contentType, string(r.Body)) {
			slog.Debug("found song page", "url", pageURL)
			add(pageURL)
		}
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		absoluteURL := e.Request.AbsoluteURL(e.Attr("href"))
		if absoluteURL == "" {
			return
		}
		if songfile.IsSongURL(absoluteURL) {
			add(absoluteURL)
			return
		}
		if !s.config.FollowLinks {
			return
		}

		// Only follow links within the same host
		linkURL, err := url.Parse(absoluteURL)
		if err != nil {
			return
		}
		if linkURL.Host == parsedURL.Host {
			e.Request.Visit(absoluteURL)
		}
	})

	if err := c.Visit(startURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", startURL, err)
	}
	c.Wait()

	urls := make([]string, 0, len(found))
	for u := range found {
		urls = append(urls, u)
	}
	slices.Sort(urls)

	if cancelled.Load() {
		slog.Info("discovery cancelled by context", "songs_found", len(urls))
		return urls, ctx.Err()
	}

	slog.Debug("discovery complete", "url", startURL, "songs", len(urls))
	return urls, nil
}

// Fetch downloads a song file. The body is returned undecoded.
func (s *Scraper) Fetch(ctx context.Context, songURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, songURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", songURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", songURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSongSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", songURL, err)
	}
	if len(body) > maxSongSize {
		return nil, fmt.Errorf("song %s is larger than %d bytes", songURL, maxSongSize)
	}
	return body, nil
}

// Source returns a loader source over the songs reachable from startURL.
func (s *Scraper) Source(startURL string) *Source {
	return &Source{scraper: s, startURL: startURL}
}

// Source discovers songs on List and downloads them on Open.
type Source struct {
	scraper  *Scraper
	startURL string
}

// Name returns the start URL.
func (src *Source) Name() string {
	return src.startURL
}

// List crawls the start URL and returns the song URLs it links to.
func (src *Source) List(ctx context.Context) ([]string, error) {
	return src.scraper.Discover(ctx, src.startURL)
}

// Open downloads the song at the URL id.
func (src *Source) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	body, err := src.scraper.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// SongStore is where ScrapeToS3 writes songs.
type SongStore interface {
	PutSong(ctx context.Context, prefix, sourceID string, content []byte) (string, error)
	PutManifest(ctx context.Context, prefix string, manifest storage.Manifest) error
}

// ScrapeResult holds the result of a ScrapeToS3 operation.
type ScrapeResult struct {
	Prefix    string // S3 prefix where songs were written
	SongCount int    // Number of songs stored
	SourceURL string // Original URL that was scraped
	Errors    []error
}

// ScrapePrefix builds a unique prefix of the form imports/{host}/{timestamp}.
func ScrapePrefix(startURL string, now time.Time) (string, error) {
	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	return fmt.Sprintf("imports/%s/%s", parsedURL.Host, now.UTC().Format("2006-01-02T15-04-05")), nil
}

// ScrapeToS3 downloads every song reachable from startURL into store and
// writes a manifest mapping objects back to their URLs. Songs that fail to
// download are reported in the result and skipped.
func (s *Scraper) ScrapeToS3(ctx context.Context, startURL string, store SongStore) (*ScrapeResult, error) {
	prefix, err := ScrapePrefix(startURL, time.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("starting scrape to S3", "url", startURL, "prefix", prefix)

	urls, err := s.Discover(ctx, startURL)
	if err != nil && len(urls) == 0 {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	result := &ScrapeResult{Prefix: prefix, SourceURL: startURL}
	songs := make(map[string]string, len(urls))
	for _, songURL := range urls {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err())
			break
		}

		body, err := s.Fetch(ctx, songURL)
		if err != nil {
			slog.Warn("failed to download song", "url", songURL, "error", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		objectName, err := store.PutSong(ctx, prefix, songURL, body)
		if err != nil {
			slog.Error("failed to write to S3", "url", songURL, "error", err)
			result.Errors = append(result.Errors, err)
			continue
		}
		songs[objectName] = songURL
		slog.Debug("wrote song to S3", "url", songURL, "object", objectName)
	}
	result.SongCount = len(songs)

	manifest := storage.Manifest{
		SourceURL: startURL,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SongCount: len(songs),
		Songs:     songs,
	}
	if err := store.PutManifest(ctx, prefix, manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	slog.Info("scrape to S3 complete", "url", startURL, "prefix", prefix, "songs", result.SongCount)
	return result, nil
}
