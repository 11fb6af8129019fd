package events

import "time"

// PassComplete is sent when the similarity engine has settled: the last pass
// finished and no documents arrived while it ran.
type PassComplete struct {
	Passes        int           // Passes run since the engine was started, including restarts
	Documents     int           // Documents in the final snapshot
	PairsComputed int           // Pairs scored by these passes
	PairsSkipped  int           // Pairs found in the cache and not rescored
	Duration      time.Duration // Time from Start until settling
}

// LoadComplete is sent when a loader finishes reading a source.
type LoadComplete struct {
	Source   string        // Source name (directory, bucket prefix or URL)
	Loaded   int           // Documents parsed successfully
	Failed   int           // Documents that could not be read
	Duration time.Duration // How long loading took
}
