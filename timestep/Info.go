package timestep

import "fmt"

// Boundary holds the four boundary flags reported on every step, in
// increasing order of severity. Round, stage and game boundaries are
// soft: the episode continues. An episode boundary is hard: the caller
// must reset the environment.
type Boundary struct {
	RoundDone   bool
	StageDone   bool
	GameDone    bool
	EpisodeDone bool
}

// Soft returns whether a soft boundary occurred, that is a round,
// stage or game ended while the episode continues
func (b Boundary) Soft() bool {
	return !b.EpisodeDone && (b.RoundDone || b.StageDone || b.GameDone)
}

// Hard returns whether the episode ended
func (b Boundary) Hard() bool {
	return b.EpisodeDone
}

func (b Boundary) String() string {
	return fmt.Sprintf("round: %v, stage: %v, game: %v, episode: %v",
		b.RoundDone, b.StageDone, b.GameDone, b.EpisodeDone)
}

// Role is the side of the screen an agent controls in an episode
type Role string

const (
	P1 Role = "P1"
	P2 Role = "P2"
)

// Opponent returns the role on the other side of the screen
func (r Role) Opponent() Role {
	if r == P1 {
		return P2
	}
	return P1
}

// Valid returns whether r is P1 or P2
func (r Role) Valid() bool {
	return r == P1 || r == P2
}

// EpisodeSettings is the snapshot of the settings in effect for the
// current episode. Roles may differ between consecutive episodes when
// they are randomised at reset.
type EpisodeSettings struct {
	// Roles[i] is the role of agent i
	Roles []Role

	// Characters[i] is the character id of the fighter on the side of
	// agent i
	Characters []int

	Difficulty int
	Seed       uint64
}

// Role returns the role of agent i
func (e EpisodeSettings) Role(agent int) Role {
	return e.Roles[agent]
}

// Clone returns a deep copy of the settings
func (e EpisodeSettings) Clone() EpisodeSettings {
	e.Roles = append([]Role(nil), e.Roles...)
	e.Characters = append([]int(nil), e.Characters...)
	return e
}

// Info carries the auxiliary information returned with each TimeStep
type Info struct {
	Boundary
	Settings EpisodeSettings

	// Frames is the number of emulated frames elapsed during the step
	Frames int
}
