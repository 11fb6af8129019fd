package models

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Line is one line of lyrics text inside a Document.
type Line struct {
	text string
	doc  *Document
	hash uint64
}

// NewLine creates a line owned by doc. The content hash is computed once here
// and never changes afterwards.
func NewLine(text string, doc *Document) *Line {
	return &Line{
		text: text,
		doc:  doc,
		hash: xxhash.Sum64String(text),
	}
}

// Text returns the line's text.
func (l *Line) Text() string {
	return l.text
}

// Document returns the document this line belongs to.
func (l *Line) Document() *Document {
	return l.doc
}

// ContentHash returns the xxhash64 of the line's text.
func (l *Line) ContentHash() uint64 {
	return l.hash
}

func (l *Line) String() string {
	return l.text
}

// Document represents a parsed song file.
// It is populated once by the parser (SetTitle, LoadLines) and is read-only
// afterwards, so it can be shared between goroutines without locking.
type Document struct {
	sourceID string
	title    string
	lines    []*Line
	id       string
}

// NewDocument creates an empty document for the given source identifier
// (file path, object key or URL).
func NewDocument(sourceID string) *Document {
	d := &Document{sourceID: sourceID}
	d.id = d.identity()
	return d
}

// SetTitle sets the title read from the song header.
func (d *Document) SetTitle(title string) {
	d.title = title
}

// LoadLines replaces the document's lines and recomputes its identity.
func (d *Document) LoadLines(texts []string) {
	lines := make([]*Line, len(texts))
	for i, text := range texts {
		lines[i] = NewLine(text, d)
	}
	d.lines = lines
	d.id = d.identity()
}

// identity hashes the source id followed by every line's content hash.
func (d *Document) identity() string {
	h := sha256.New()
	h.Write([]byte(d.sourceID))
	var buf [8]byte
	for _, line := range d.lines {
		binary.BigEndian.PutUint64(buf[:], line.hash)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ID returns the content-derived identity of the document.
// Two documents have the same ID when their source and every line match.
func (d *Document) ID() string {
	return d.id
}

// SourceID returns where the document was read from.
func (d *Document) SourceID() string {
	return d.sourceID
}

// Title returns the title from the song header, or "" if none was set.
func (d *Document) Title() string {
	return d.title
}

// Lines returns the content lines in file order.
// The returned slice must not be modified.
func (d *Document) Lines() []*Line {
	return d.lines
}

// Len returns the number of content lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Name returns the title, falling back to the base name of the source.
func (d *Document) Name() string {
	if d.title != "" {
		return d.title
	}
	return filepath.Base(d.sourceID)
}

// Text returns the lyrics joined by newlines.
func (d *Document) Text() string {
	texts := make([]string, len(d.lines))
	for i, line := range d.lines {
		texts[i] = line.text
	}
	return strings.Join(texts, "\n")
}

// Equal reports whether both documents come from the same source and
// contain the same lines in the same order.
func (d *Document) Equal(other *Document) bool {
	if other == nil {
		return false
	}
	if d == other {
		return true
	}
	if d.sourceID != other.sourceID || len(d.lines) != len(other.lines) {
		return false
	}
	for i, line := range d.lines {
		if line.hash != other.lines[i].hash || line.text != other.lines[i].text {
			return false
		}
	}
	return true
}

// GenerateDocumentID creates a deterministic ID from a source identifier.
// The ID is a SHA-256 hash (first 16 chars) of the source.
func GenerateDocumentID(sourceID string) string {
	hash := sha256.Sum256([]byte(sourceID))
	return hex.EncodeToString(hash[:])[:16]
}
