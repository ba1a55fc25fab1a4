package arena

import (
	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/timestep"
)

// EngineInfo is the static metadata an engine reports about the game
// it runs
type EngineInfo struct {
	// FrameShape is the (height, width, channels) of raw frames
	FrameShape [3]int

	Moves                 int
	Attacks               int
	AttacksNoCombinations int

	RAMStates []environment.RAMState
}

// RawObservation is the payload returned by the engine on every reset
// and step
type RawObservation struct {
	// Frame holds the pixels of the current frame in row-major H×W×C
	// order
	Frame []uint8

	// RAM holds readings which are not tied to a side of the screen
	RAM map[string]float64

	// Players holds the per-player readings of P1 and P2
	Players map[timestep.Role]map[string]float64

	// Reward is from the perspective of the first agent
	Reward float64

	Boundary timestep.Boundary
}

// Engine is the client of a running game engine. Transport, connection
// handling and error translation are the responsibility of the
// implementation; the base environment only relies on this contract.
type Engine interface {
	Info() EngineInfo

	// Reset starts a new episode with the given settings
	Reset(settings timestep.EpisodeSettings, stepRatio int) (RawObservation,
		error)

	// Step advances the engine by one step with one (move, attack)
	// pair per agent
	Step(actions [][2]int) (RawObservation, error)

	Close() error
}
