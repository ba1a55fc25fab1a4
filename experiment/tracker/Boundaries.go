package tracker

import (
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Progress counts the rounds, stages and games completed in each
// episode
type Progress struct {
	Rounds int
	Stages int
	Games  int
}

// Boundaries tracks and saves the number of round, stage and game
// boundaries in each episode of an experiment
type Boundaries struct {
	current  Progress
	episodes []Progress
	filename string
}

// NewBoundaries returns a new Boundaries Tracker which will save its
// data at the specified location filename
func NewBoundaries(filename string) *Boundaries {
	return &Boundaries{filename: filename}
}

// Track counts the boundaries reported by a TimeStep
func (b *Boundaries) Track(step ts.TimeStep) {
	if step.First() {
		b.current = Progress{}
		return
	}

	if step.Info.RoundDone {
		b.current.Rounds++
	}
	if step.Info.StageDone {
		b.current.Stages++
	}
	if step.Info.GameDone {
		b.current.Games++
	}
	if step.Last() {
		b.episodes = append(b.episodes, b.current)
		b.current = Progress{}
	}
}

// Episodes returns the progress of the episodes tracked so far
func (b *Boundaries) Episodes() []Progress {
	return append([]Progress(nil), b.episodes...)
}

// Save saves the data tracked by the Boundaries Tracker to disk
func (b *Boundaries) Save() error {
	return save(b.filename, b.episodes)
}
