package loader

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mfenderov/songsim/internal/songfile"
)

// Source lists song files and opens them by id.
// The id returned by List becomes the document's source id.
type Source interface {
	Name() string
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// DirSource finds song files below a set of directories.
type DirSource struct {
	Dirs []string
}

// NewDirSource creates a source over the given directories.
func NewDirSource(dirs ...string) *DirSource {
	return &DirSource{Dirs: dirs}
}

// Name returns the directories, comma separated.
func (s *DirSource) Name() string {
	return strings.Join(s.Dirs, ",")
}

// List walks every directory recursively and returns the song files in
// lexical order. A file reachable from two directories is listed once.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, dir := range s.Dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !songfile.IsSongFile(d.Name()) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// Open opens a song file.
func (s *DirSource) Open(_ context.Context, id string) (io.ReadCloser, error) {
	return os.Open(id)
}
