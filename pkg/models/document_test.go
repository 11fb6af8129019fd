package models

import (
	"sync"
	"testing"
)

func TestLine_ContentHashStable(t *testing.T) {
	doc := NewDocument("songs/a.sng")
	l1 := NewLine("Amazing grace, how sweet the sound", doc)
	l2 := NewLine("Amazing grace, how sweet the sound", doc)

	if l1.ContentHash() != l2.ContentHash() {
		t.Errorf("same text should hash equally: %d != %d", l1.ContentHash(), l2.ContentHash())
	}
	if l1.ContentHash() != l1.ContentHash() {
		t.Error("hash should be stable across calls")
	}
	if l1.Document() != doc {
		t.Error("line should reference its document")
	}

	other := NewLine("That saved a wretch like me", doc)
	if other.ContentHash() == l1.ContentHash() {
		t.Error("different text should hash differently")
	}
}

func TestDocument_LoadLines(t *testing.T) {
	doc := NewDocument("songs/grace.sng")
	doc.SetTitle("Amazing Grace")
	doc.LoadLines([]string{"Amazing grace, how sweet the sound", "That saved a wretch like me"})

	if doc.Title() != "Amazing Grace" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "Amazing Grace")
	}
	if doc.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", doc.Len())
	}
	for i, line := range doc.Lines() {
		if line.Document() != doc {
			t.Errorf("line %d should be owned by the document", i)
		}
	}
	if got, want := doc.Text(), "Amazing grace, how sweet the sound\nThat saved a wretch like me"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestDocument_Identity(t *testing.T) {
	newDoc := func(source string, lines ...string) *Document {
		d := NewDocument(source)
		d.LoadLines(lines)
		return d
	}

	tests := []struct {
		name  string
		a, b  *Document
		equal bool
	}{
		{
			name:  "same source and lines",
			a:     newDoc("a.sng", "one", "two"),
			b:     newDoc("a.sng", "one", "two"),
			equal: true,
		},
		{
			name:  "different source",
			a:     newDoc("a.sng", "one", "two"),
			b:     newDoc("b.sng", "one", "two"),
			equal: false,
		},
		{
			name:  "different line order",
			a:     newDoc("a.sng", "one", "two"),
			b:     newDoc("a.sng", "two", "one"),
			equal: false,
		},
		{
			name:  "extra line",
			a:     newDoc("a.sng", "one"),
			b:     newDoc("a.sng", "one", "two"),
			equal: false,
		},
		{
			name:  "both empty",
			a:     newDoc("a.sng"),
			b:     newDoc("a.sng"),
			equal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal() = %v, want %v", got, tt.equal)
			}
			if got := tt.a.ID() == tt.b.ID(); got != tt.equal {
				t.Errorf("ID equality = %v, want %v (%s vs %s)", got, tt.equal, tt.a.ID(), tt.b.ID())
			}
		})
	}
}

func TestDocument_IDChangesWithLines(t *testing.T) {
	doc := NewDocument("a.sng")
	empty := doc.ID()
	doc.LoadLines([]string{"line"})
	if doc.ID() == empty {
		t.Error("ID should change after lines are loaded")
	}
	if len(doc.ID()) != 16 {
		t.Errorf("ID length should be 16, got %d", len(doc.ID()))
	}
}

func TestDocument_Name(t *testing.T) {
	doc := NewDocument("/library/Amazing Grace.sng")
	if doc.Name() != "Amazing Grace.sng" {
		t.Errorf("Name() = %q, want base name fallback", doc.Name())
	}
	doc.SetTitle("Amazing Grace")
	if doc.Name() != "Amazing Grace" {
		t.Errorf("Name() = %q, want title", doc.Name())
	}
}

func TestDocument_ConcurrentReads(t *testing.T) {
	doc := NewDocument("a.sng")
	doc.LoadLines([]string{"one", "two", "three"})
	want := doc.ID()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, line := range doc.Lines() {
				_ = line.ContentHash()
			}
			if doc.ID() != want {
				t.Error("ID changed during concurrent reads")
			}
		}()
	}
	wg.Wait()
}

func TestGenerateDocumentID(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"file path", "/library/songs/grace.sng"},
		{"object key", "songs/grace.sng"},
		{"URL", "https://example.com/songs/grace.sng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := GenerateDocumentID(tt.source)

			if id == "" {
				t.Error("ID should not be empty")
			}

			id2 := GenerateDocumentID(tt.source)
			if id != id2 {
				t.Errorf("ID should be deterministic: got %q and %q", id, id2)
			}

			if len(id) != 16 {
				t.Errorf("ID length should be 16, got %d", len(id))
			}
		})
	}
}

func TestGenerateDocumentID_UniqueForDifferentSources(t *testing.T) {
	id1 := GenerateDocumentID("songs/page1.sng")
	id2 := GenerateDocumentID("songs/page2.sng")

	if id1 == id2 {
		t.Errorf("Different sources should generate different IDs: %q", id1)
	}
}
