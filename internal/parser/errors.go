package parser

import (
	"errors"
	"fmt"
)

// ErrSourceUnreadable is returned when the raw text of a song could not be read.
var ErrSourceUnreadable = errors.New("source unreadable")

// SourceError records which source could not be read and why.
type SourceError struct {
	SourceID string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnreadable, e.SourceID, e.Err)
}

// Unwrap allows errors.Is to match both ErrSourceUnreadable and the cause.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnreadable, e.Err}
}

func unreadable(sourceID string, err error) error {
	return &SourceError{SourceID: sourceID, Err: err}
}
