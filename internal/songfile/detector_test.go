package songfile

import "testing"

func TestIsSongFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"lower case", "amazing-grace.sng", true},
		{"upper case", "AMAZING.SNG", true},
		{"mixed case", "Amazing.SnG", true},
		{"nested path", "library/hymns/grace.sng", true},
		{"windows path", `C:\Songs\grace.sng`, true},
		{"other extension", "grace.txt", false},
		{"sng in directory name", "sng/grace", false},
		{"no extension", "grace", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSongFile(tt.file); got != tt.want {
				t.Errorf("IsSongFile(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestIsSongURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"plain", "https://example.com/songs/grace.sng", true},
		{"query string", "https://example.com/songs/grace.sng?download=1", true},
		{"fragment", "https://example.com/grace.SNG#top", true},
		{"index page", "https://example.com/songs/", false},
		{"sng in query only", "https://example.com/get?file=grace.sng", false},
		{"invalid", "://bad url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSongURL(tt.url); got != tt.want {
				t.Errorf("IsSongURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestLooksLikeSong(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "header block",
			content: "#LangCount=1\n#Title=Amazing Grace\n---\nVerse 1\nAmazing grace",
			want:    true,
		},
		{
			name:    "separator only",
			content: "---\nVerse\nsome lyrics",
			want:    true,
		},
		{
			name:    "windows line endings",
			content: "#Title=Grace\r\n---\r\nVerse\r\n",
			want:    true,
		},
		{
			name:    "HTML document",
			content: "<!DOCTYPE html><html><body>#Title=Grace</body></html>",
			want:    false,
		},
		{
			name:    "markdown heading",
			content: "# Title\n\nSome text",
			want:    false,
		},
		{
			name:    "longer rule",
			content: "text\n-----\nmore",
			want:    false,
		},
		{
			name:    "empty",
			content: "   \n",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeSong(tt.content); got != tt.want {
				t.Errorf("LooksLikeSong() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		content     string
		want        bool
	}{
		{"song extension wins", "grace.sng", "text/html", "", true},
		{"plain text song content", "download", "text/plain; charset=windows-1252", "#Title=Grace\n---", true},
		{"octet stream song content", "download", "application/octet-stream", "#Title=Grace\n---", true},
		{"html content type", "download", "text/html", "#Title=Grace\n---", false},
		{"no hints", "notes.txt", "text/plain", "just some notes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.file, tt.contentType, tt.content); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}
