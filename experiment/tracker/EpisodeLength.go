package tracker

import (
	"github.com/samuelfneumann/goarena/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment, counted in emulated frames.
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// length will not be saved.
type EpisodeLength struct {
	frames         int
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track tracks the episode lengths in an experiment. Frames are summed
// from the first TimeStep of an episode and the length is cached when
// the last TimeStep is tracked.
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.First() {
		e.frames = 0
		return
	}

	e.frames += t.Info.Frames
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, e.frames)
		e.frames = 0
	}
}

// Lengths returns the lengths of the episodes tracked so far
func (e *EpisodeLength) Lengths() []int {
	return append([]int(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return save(e.filename, e.episodeLengths)
}
