// Package arenatest provides a scripted engine for testing environments
// and wrappers without running a game
package arenatest

import (
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/timestep"
)

// Engine is a scripted engine. Every pixel of the frame returned after
// the i-th step of an episode holds the value i, and the frame returned
// at reset holds 0.
type Engine struct {
	info arena.EngineInfo

	// Boundaries maps step numbers to the boundary flags reported on
	// that step. Step numbers restart at 1 after every reset.
	Boundaries map[int]timestep.Boundary

	// Rewards maps step numbers to rewards. Missing steps return
	// DefaultReward.
	Rewards       map[int]float64
	DefaultReward float64

	// Pixel overrides the value of pixel element i on episode step t
	// when non-nil
	Pixel func(t, i int) uint8

	// Modify edits the observation returned on episode step t when
	// non-nil
	Modify func(t int, raw *arena.RawObservation)

	// ResetErr and StepErr are returned by Reset and Step when non-nil
	ResetErr error
	StepErr  error

	// Recorded interactions
	Resets    int
	Steps     int
	Actions   [][][2]int
	Settings  []timestep.EpisodeSettings
	StepRatio int
	Closed    bool

	step int
}

// RAMStates returns the RAM catalog of the scripted engine
func RAMStates() []environment.RAMState {
	return []environment.RAMState{
		{Name: "stage", Kind: environment.Categorical,
			Range: r1.Interval{Min: 1, Max: 8}},
		{Name: "timer", Kind: environment.Continuous,
			Range: r1.Interval{Min: 0, Max: 99}},
		{Name: "health", Kind: environment.Continuous,
			Range: r1.Interval{Min: 0, Max: 160}, PerPlayer: true},
		{Name: "side", Kind: environment.Binary,
			Range: r1.Interval{Min: 0, Max: 1}, PerPlayer: true},
		{Name: "wins", Kind: environment.Categorical,
			Range: r1.Interval{Min: 0, Max: 2}, PerPlayer: true},
	}
}

// NewEngine returns a scripted engine producing frames of the given
// shape. The engine offers 9 moves and 8 attacks, 4 of which remain
// once button combinations are removed.
func NewEngine(frameShape [3]int) *Engine {
	return &Engine{
		info: arena.EngineInfo{
			FrameShape:            frameShape,
			Moves:                 9,
			Attacks:               8,
			AttacksNoCombinations: 4,
			RAMStates:             RAMStates(),
		},
		Boundaries: make(map[int]timestep.Boundary),
		Rewards:    make(map[int]float64),
	}
}

// Info implements the arena.Engine interface
func (e *Engine) Info() arena.EngineInfo {
	return e.info
}

// Reset implements the arena.Engine interface
func (e *Engine) Reset(settings timestep.EpisodeSettings,
	stepRatio int) (arena.RawObservation, error) {
	if e.ResetErr != nil {
		return arena.RawObservation{}, e.ResetErr
	}
	e.Resets++
	e.Settings = append(e.Settings, settings)
	e.StepRatio = stepRatio
	e.step = 0

	return e.observation(timestep.Boundary{}, 0), nil
}

// Step implements the arena.Engine interface
func (e *Engine) Step(actions [][2]int) (arena.RawObservation, error) {
	if e.StepErr != nil {
		return arena.RawObservation{}, e.StepErr
	}
	e.step++
	e.Steps++
	e.Actions = append(e.Actions, append([][2]int(nil), actions...))

	reward, ok := e.Rewards[e.step]
	if !ok {
		reward = e.DefaultReward
	}
	return e.observation(e.Boundaries[e.step], reward), nil
}

// Close implements the arena.Engine interface
func (e *Engine) Close() error {
	e.Closed = true
	return nil
}

// EpisodeStep returns the number of steps taken since the last reset
func (e *Engine) EpisodeStep() int {
	return e.step
}

func (e *Engine) observation(b timestep.Boundary,
	reward float64) arena.RawObservation {
	shape := e.info.FrameShape
	frame := make([]uint8, shape[0]*shape[1]*shape[2])
	for i := range frame {
		if e.Pixel != nil {
			frame[i] = e.Pixel(e.step, i)
		} else {
			frame[i] = uint8(e.step)
		}
	}

	// P1 loses health every step while P2 keeps half of it
	players := map[timestep.Role]map[string]float64{
		timestep.P1: {"health": 160 - float64(e.step%160), "side": 0, "wins": 0},
		timestep.P2: {"health": 80, "side": 1, "wins": 1},
	}

	raw := arena.RawObservation{
		Frame:    frame,
		RAM:      map[string]float64{"stage": 1, "timer": 99},
		Players:  players,
		Reward:   reward,
		Boundary: b,
	}
	if e.Modify != nil {
		e.Modify(e.step, &raw)
	}
	return raw
}
