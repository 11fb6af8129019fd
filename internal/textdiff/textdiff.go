// Package textdiff lines up the lyrics of two songs and shows what changed.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mfenderov/songsim/internal/distance"
	"github.com/mfenderov/songsim/pkg/models"
)

// Op is the kind of a Change.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
	Replace
)

func (o Op) String() string {
	switch o {
	case Equal:
		return " "
	case Delete:
		return "-"
	case Insert:
		return "+"
	case Replace:
		return "~"
	default:
		return "?"
	}
}

// Change is one line of a diff. A holds the line of the first song, B the
// line of the second; Replace carries both and their relative distance.
type Change struct {
	Op       Op
	A, B     string
	Distance float64
}

// Lines diffs the lyrics of two documents.
func Lines(a, b *models.Document) []Change {
	return Diff(texts(a), texts(b))
}

// Diff compares two lists of lines. Runs of deleted lines followed by
// inserted ones are paired up as replacements.
func Diff(a, b []string) []Change {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(join(a), join(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineArray)

	var changes []Change
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		if d.Type == diffmatchpatch.DiffEqual {
			for _, line := range split(d.Text) {
				changes = append(changes, Change{Op: Equal, A: line, B: line})
			}
			continue
		}

		var deleted, inserted []string
		if d.Type == diffmatchpatch.DiffDelete {
			deleted = split(d.Text)
		} else {
			inserted = split(d.Text)
		}
		// A delete next to an insert is a modification.
		if i+1 < len(diffs) && diffs[i+1].Type != diffmatchpatch.DiffEqual && diffs[i+1].Type != d.Type {
			if diffs[i+1].Type == diffmatchpatch.DiffDelete {
				deleted = split(diffs[i+1].Text)
			} else {
				inserted = split(diffs[i+1].Text)
			}
			i++
		}
		changes = append(changes, pair(deleted, inserted)...)
	}
	return changes
}

func pair(deleted, inserted []string) []Change {
	n := min(len(deleted), len(inserted))
	changes := make([]Change, 0, max(len(deleted), len(inserted)))
	for k := range n {
		changes = append(changes, Change{
			Op:       Replace,
			A:        deleted[k],
			B:        inserted[k],
			Distance: distance.Relative(deleted[k], inserted[k]),
		})
	}
	for _, line := range deleted[n:] {
		changes = append(changes, Change{Op: Delete, A: line, Distance: 1})
	}
	for _, line := range inserted[n:] {
		changes = append(changes, Change{Op: Insert, B: line, Distance: 1})
	}
	return changes
}

// Summary counts the changes by kind.
type Summary struct {
	Equal, Deleted, Inserted, Replaced int
}

// Summarize counts changes.
func Summarize(changes []Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Op {
		case Equal:
			s.Equal++
		case Delete:
			s.Deleted++
		case Insert:
			s.Inserted++
		case Replace:
			s.Replaced++
		}
	}
	return s
}

// Format renders changes one line each, prefixed with " ", "-" or "+".
// A replacement is shown as its old and new line followed by their relative
// distance; with withLCS the longest common subsequence is shown as well.
func Format(changes []Change, withLCS bool) string {
	var sb strings.Builder
	for _, c := range changes {
		switch c.Op {
		case Equal:
			fmt.Fprintf(&sb, "  %s\n", c.A)
		case Delete:
			fmt.Fprintf(&sb, "- %s\n", c.A)
		case Insert:
			fmt.Fprintf(&sb, "+ %s\n", c.B)
		case Replace:
			fmt.Fprintf(&sb, "- %s\n", c.A)
			fmt.Fprintf(&sb, "+ %s\n", c.B)
			fmt.Fprintf(&sb, "    distance %.3f\n", c.Distance)
			if withLCS {
				fmt.Fprintf(&sb, "    common   %q\n", distance.LongestCommonSubsequence(c.A, c.B))
			}
		}
	}
	return sb.String()
}

func texts(doc *models.Document) []string {
	lines := make([]string, doc.Len())
	for i, line := range doc.Lines() {
		lines[i] = line.Text()
	}
	return lines
}

// join terminates every line so the last one diffs like the others.
func join(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
