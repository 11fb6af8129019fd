// Package parser reads SongBeamer (.sng) lyric files into documents.
//
// A song file starts with a block of "#Key=Value" header lines. The body
// consists of verse headings ("Chorus", "Verse 2"), lyric lines and verse
// separators ("--" or "---"). Files are encoded in Windows-1252.
package parser

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/mfenderov/songsim/pkg/models"
)

// state of the line reader.
type state int

const (
	stateHeading state = iota
	stateVerseBoundary
	stateInVerse
)

func (s state) String() string {
	switch s {
	case stateHeading:
		return "heading"
	case stateVerseBoundary:
		return "verse_boundary"
	case stateInVerse:
		return "in_verse"
	default:
		return "unknown"
	}
}

const (
	headerMarker = "#"
	customMarker = "$$M="
	verseEnd     = "--"
	titleKey     = "Title"
)

var numberedMarker = regexp.MustCompile(`^##[0-9] `)

// ParseFile reads and parses the song file at path.
func ParseFile(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse decodes r as Windows-1252 and parses it into a document identified
// by sourceID. It only fails when r cannot be read; unexpected content is
// absorbed by the state machine.
func Parse(r io.Reader, sourceID string) (*models.Document, error) {
	reader := bufio.NewReader(charmap.Windows1252.NewDecoder().Reader(r))

	doc := models.NewDocument(sourceID)
	m := &machine{doc: doc}
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			m.feed(strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, unreadable(sourceID, err)
		}
	}

	doc.LoadLines(m.lines)
	return doc, nil
}

// machine holds the parse state of a single document.
type machine struct {
	doc   *models.Document
	state state
	lines []string
}

func (m *machine) feed(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	if m.state == stateHeading {
		if strings.HasPrefix(line, headerMarker) {
			m.header(line)
			return
		}
		// The heading is over; this line is handled as body below.
		m.state = stateVerseBoundary
	}

	if m.state == stateVerseBoundary && IsVerseHeading(line) {
		m.state = stateInVerse
		return
	}

	switch {
	case strings.HasPrefix(line, verseEnd):
		m.state = stateVerseBoundary
	case strings.HasPrefix(line, customMarker):
	default:
		m.lines = append(m.lines, stripMarker(line))
	}
}

// header records the metadata of a "#Key=Value" line.
func (m *machine) header(line string) {
	key, value, ok := strings.Cut(strings.TrimPrefix(line, headerMarker), "=")
	if !ok {
		return
	}
	if key == titleKey {
		m.doc.SetTitle(value)
	}
}

// stripMarker removes an inline marker such as "#C ", "#H " or "##2 ".
func stripMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "#C "), strings.HasPrefix(line, "#H "):
		return line[3:]
	case numberedMarker.MatchString(line):
		return line[4:]
	default:
		return line
	}
}
