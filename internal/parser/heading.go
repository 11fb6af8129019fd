package parser

import (
	"regexp"
	"slices"
	"strings"
)

// verseHeadings may stand alone or be followed by a number like "2" or "12b".
var verseHeadings = []string{
	"Unbekannt", "Unbenannt", "Unknown", "Intro", "Vers", "Verse", "Strophe",
	"Pre-Bridge", "Bridge", "Misc", "Pre-Refrain", "Refrain", "Pre-Chorus",
	"Chorus", "Pre-Coda", "Zwischenspiel", "Instrumental", "Interlude", "Coda",
	"Ending", "Outro", "Teil", "Part", "Chor", "Solo",
}

// alphaVerseHeadings must be followed by a single uppercase letter.
var alphaVerseHeadings = []string{"Part", "Teil"}

var (
	verseNumber = regexp.MustCompile(`^[0-9][0-9]?[a-z]?$`)
	verseLetter = regexp.MustCompile(`^[A-Z]$`)
)

// IsVerseHeading reports whether line names a verse section, e.g. "Chorus",
// "Verse 2", "Refrain 12b" or "Part B".
func IsVerseHeading(line string) bool {
	tokens := strings.Split(line, " ")
	if len(tokens) > 2 {
		return false
	}

	heading := tokens[0]
	suffix := ""
	if len(tokens) == 2 {
		suffix = tokens[1]
	}

	if slices.Contains(verseHeadings, heading) && (suffix == "" || verseNumber.MatchString(suffix)) {
		return true
	}
	return slices.Contains(alphaVerseHeadings, heading) && verseLetter.MatchString(suffix)
}
