// Package similarity scores pairs of song documents and keeps the scores of
// a growing document set up to date.
package similarity

import (
	"github.com/mfenderov/songsim/internal/distance"
	"github.com/mfenderov/songsim/pkg/models"
)

// Scorer compares two documents. It must be total and safe for concurrent use.
type Scorer func(a, b *models.Document) float64

// Score returns the mean relative line distance over every line of a paired
// with every line of b. Lines are treated as a bag; their order does not
// matter. 0 means identical text, values near 1 mean nothing in common.
// Documents without lines score 0.
func Score(a, b *models.Document) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}

	var sum float64
	for _, la := range a.Lines() {
		for _, lb := range b.Lines() {
			sum += distance.Relative(la.Text(), lb.Text())
		}
	}
	return sum / float64(a.Len()*b.Len())
}
