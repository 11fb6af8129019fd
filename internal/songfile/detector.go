// Package songfile recognises SongBeamer song files by name and content.
package songfile

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Extension is the SongBeamer song file extension.
const Extension = ".sng"

var (
	headerPattern    = regexp.MustCompile(`(?m)^#[A-Za-z][A-Za-z0-9]*=`)
	separatorPattern = regexp.MustCompile(`(?m)^---\r?$`)
)

// IsSongFile checks if a file name or path ends in .sng, in any case.
func IsSongFile(name string) bool {
	return strings.EqualFold(path.Ext(strings.ReplaceAll(name, `\`, "/")), Extension)
}

// IsSongURL checks if the path of a URL names a song file.
// Query strings and fragments are ignored.
func IsSongURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return IsSongFile(u.Path)
}

// LooksLikeSong uses heuristics to detect SongBeamer content.
func LooksLikeSong(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || looksLikeHTML(trimmed) {
		return false
	}
	return headerPattern.MatchString(trimmed) || separatorPattern.MatchString(trimmed)
}

func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	return strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body")
}

// IsTextContentType reports whether a Content-Type could carry a song file.
// Servers commonly send .sng files as text/plain or as an octet stream.
func IsTextContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "" ||
		strings.HasPrefix(ct, "text/plain") ||
		strings.HasPrefix(ct, "application/octet-stream")
}

// Detect combines all detection methods. The name decides first, then the
// Content-Type must be compatible and the content must look like a song.
func Detect(name, contentType, content string) bool {
	if IsSongFile(name) {
		return true
	}
	if !IsTextContentType(contentType) {
		return false
	}
	return LooksLikeSong(content)
}
