// Package distance compares single lines of text.
//
// All functions operate on runes, so accented characters decoded from
// Windows-1252 count as one character. They hold no shared state and are
// safe to call from any number of goroutines.
package distance

import (
	"unicode/utf8"

	"github.com/mfenderov/songsim/pkg/models"
)

// Result holds both distances between two lines.
type Result struct {
	Absolute int
	Relative float64
}

// LineDistance compares the text of two lines.
func LineDistance(a, b *models.Line) Result {
	abs := Distance(a.Text(), b.Text())
	return Result{
		Absolute: abs,
		Relative: relative(abs, a.Text(), b.Text()),
	}
}

// Distance returns the Levenshtein distance between a and b: the minimum
// number of single-rune insertions, deletions and replacements needed to
// turn a into b.
//
// Only one row of the DP table is kept, sized by the shorter input.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	// Keep the row on the shorter string; distance is symmetric.
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			up := row[j]
			row[j] = min(up+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}
	return row[len(rb)]
}

// Relative returns Distance(a, b) divided by the rune length of the longer
// string. Two empty strings have a relative distance of 0.
func Relative(a, b string) float64 {
	return relative(Distance(a, b), a, b)
}

func relative(abs int, a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	return float64(abs) / float64(longest)
}
