// Package mockengine implements a small two-dimensional fighting game
// which satisfies the arena.Engine contract. Fighters are simulated with
// box2d and frames are rendered with gg, so that the whole environment
// pipeline can be run without a real game engine.
//
// A round ends when a fighter runs out of health or the round timer
// expires, and is won by the healthier fighter. The first fighter to win
// RoundsToWin rounds wins the stage. With a single agent, the agent
// fights a CPU opponent through Stages stages and the episode ends when
// the agent loses a stage or clears the last one. With two agents the
// episode ends with the first stage.
package mockengine

import (
	"errors"
	"fmt"

	"github.com/ByteArena/box2d"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/timestep"
)

// Moves and attacks available to every fighter. Attacks from
// AttacksNoCombinations onward are multi-button combinations.
const (
	Moves                 int = 9
	Attacks               int = 8
	AttacksNoCombinations int = 4
)

// Config configures the game played by the mock engine
type Config struct {
	FrameShape    [3]int
	Stages        int
	RoundsToWin   int
	RoundSeconds  float64
	MaxHealth     float64
	NumCharacters int
}

// DefaultConfig returns the default game configuration
func DefaultConfig() Config {
	return Config{
		FrameShape:    [3]int{64, 96, 3},
		Stages:        3,
		RoundsToWin:   2,
		RoundSeconds:  40,
		MaxHealth:     160,
		NumCharacters: 8,
	}
}

// Validate returns an error if the configuration is invalid
func (c Config) Validate() error {
	if c.FrameShape[0] < 1 || c.FrameShape[1] < 1 {
		return fmt.Errorf("validate: frame size must be positive, got %v",
			c.FrameShape)
	}
	if c.FrameShape[2] != 1 && c.FrameShape[2] != 3 {
		return fmt.Errorf("validate: frames must have 1 or 3 channels, got "+
			"%v", c.FrameShape[2])
	}
	if c.Stages < 1 || c.RoundsToWin < 1 || c.NumCharacters < 1 {
		return fmt.Errorf("validate: stages, rounds to win and characters " +
			"must be positive")
	}
	if c.RoundSeconds <= 0 || c.MaxHealth <= 0 {
		return fmt.Errorf("validate: round time and health must be positive")
	}
	return nil
}

// Engine is the mock game engine
type Engine struct {
	config Config

	world    box2d.B2World
	fighters map[timestep.Role]*fighter

	// controlled[i] is the fighter controlled by agent i
	controlled []timestep.Role

	settings  timestep.EpisodeSettings
	stepRatio int

	rng    *rand.Rand
	cpu    distuv.Bernoulli
	spawn  distuv.Uniform
	bounds r1.Interval

	stage       int
	frames      int
	started     bool
	episodeOver bool
}

// New returns a new mock engine
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return &Engine{
		config: config,
		bounds: r1.Interval{Min: FighterHalfW, Max: ArenaWidth - FighterHalfW},
	}, nil
}

// Info implements the arena.Engine interface
func (e *Engine) Info() arena.EngineInfo {
	return arena.EngineInfo{
		FrameShape:            e.config.FrameShape,
		Moves:                 Moves,
		Attacks:               Attacks,
		AttacksNoCombinations: AttacksNoCombinations,
		RAMStates: []environment.RAMState{
			{
				Name:  "stage",
				Kind:  environment.Categorical,
				Range: r1.Interval{Min: 1, Max: float64(e.config.Stages)},
			},
			{
				Name:  "timer",
				Kind:  environment.Continuous,
				Range: r1.Interval{Min: 0, Max: e.config.RoundSeconds},
			},
			{
				Name:      "health",
				Kind:      environment.Continuous,
				Range:     r1.Interval{Min: 0, Max: e.config.MaxHealth},
				PerPlayer: true,
			},
			{
				Name:      "side",
				Kind:      environment.Binary,
				Range:     r1.Interval{Min: 0, Max: 1},
				PerPlayer: true,
			},
			{
				Name:      "wins",
				Kind:      environment.Categorical,
				Range:     r1.Interval{Min: 0, Max: float64(e.config.RoundsToWin)},
				PerPlayer: true,
			},
			{
				Name:  "character",
				Kind:  environment.Categorical,
				Range: r1.Interval{Min: 0, Max: float64(e.config.NumCharacters - 1)},

				PerPlayer: true,
			},
		},
	}
}

// Reset implements the arena.Engine interface
func (e *Engine) Reset(settings timestep.EpisodeSettings,
	stepRatio int) (arena.RawObservation, error) {
	if len(settings.Roles) < 1 || len(settings.Roles) > 2 {
		return arena.RawObservation{}, fmt.Errorf("reset: expected 1 or 2 "+
			"roles, got %v", len(settings.Roles))
	}
	if stepRatio < 1 {
		return arena.RawObservation{}, fmt.Errorf("reset: step ratio must "+
			"be positive, got %v", stepRatio)
	}

	src := rand.NewSource(settings.Seed)
	e.rng = rand.New(src)
	e.cpu = distuv.Bernoulli{P: 0.04 * float64(settings.Difficulty), Src: src}
	e.spawn = distuv.Uniform{Min: -0.5, Max: 0.5, Src: src}

	e.settings = settings.Clone()
	e.stepRatio = stepRatio
	e.controlled = append([]timestep.Role(nil), settings.Roles...)

	characters := make(map[timestep.Role]int, 2)
	for i, role := range e.controlled {
		if i < len(settings.Characters) {
			characters[role] = settings.Characters[i] % e.config.NumCharacters
		} else {
			characters[role] = e.rng.Intn(e.config.NumCharacters)
		}
	}
	for _, role := range []timestep.Role{timestep.P1, timestep.P2} {
		if _, ok := characters[role]; !ok {
			characters[role] = e.rng.Intn(e.config.NumCharacters)
		}
	}

	e.stage = 1
	e.fighters = map[timestep.Role]*fighter{
		timestep.P1: {role: timestep.P1, character: characters[timestep.P1]},
		timestep.P2: {role: timestep.P2, character: characters[timestep.P2]},
	}
	e.newRound()
	for _, f := range e.fighters {
		f.wins = 0
	}

	e.started = true
	e.episodeOver = false

	return e.observation(0, timestep.Boundary{})
}

// newRound rebuilds the world and places both fighters at full health
func (e *Engine) newRound() {
	e.world = box2d.MakeB2World(box2d.B2Vec2{X: 0, Y: Gravity})

	// Ground and walls
	edges := [][2]box2d.B2Vec2{
		{box2d.MakeB2Vec2(0, GroundY), box2d.MakeB2Vec2(ArenaWidth, GroundY)},
		{box2d.MakeB2Vec2(0, GroundY), box2d.MakeB2Vec2(0, ArenaHeight)},
		{box2d.MakeB2Vec2(ArenaWidth, GroundY),
			box2d.MakeB2Vec2(ArenaWidth, ArenaHeight)},
	}
	for _, edge := range edges {
		def := box2d.NewB2BodyDef()
		def.Type = 0 // Static body
		body := e.world.CreateBody(def)

		shape := box2d.NewB2EdgeShape()
		shape.Set(edge[0], edge[1])

		fix := box2d.MakeB2FixtureDef()
		fix.Shape = shape
		body.CreateFixtureFromDef(&fix)
	}

	start := map[timestep.Role]float64{
		timestep.P1: ArenaWidth/4 + e.spawn.Rand(),
		timestep.P2: 3*ArenaWidth/4 + e.spawn.Rand(),
	}
	for role, old := range e.fighters {
		f := newFighter(&e.world, role, old.character, start[role],
			e.config.MaxHealth)
		f.wins = old.wins
		e.fighters[role] = f
	}
	e.frames = 0
}

// Step implements the arena.Engine interface
func (e *Engine) Step(actions [][2]int) (arena.RawObservation, error) {
	if !e.started {
		return arena.RawObservation{}, errors.New("step: engine must be " +
			"reset before stepping")
	}
	if e.episodeOver {
		return arena.RawObservation{}, errors.New("step: episode is over, " +
			"engine must be reset")
	}
	if len(actions) != len(e.controlled) {
		return arena.RawObservation{}, fmt.Errorf("step: expected actions "+
			"for %v agents, got %v", len(e.controlled), len(actions))
	}
	for i, a := range actions {
		if a[0] < 0 || a[0] >= Moves || a[1] < 0 || a[1] >= Attacks {
			return arena.RawObservation{}, fmt.Errorf("step: agent %v "+
				"action %v out of range", i, a)
		}
	}

	commands := make(map[timestep.Role][2]int, 2)
	for i, role := range e.controlled {
		commands[role] = actions[i]
	}
	if len(e.controlled) == 1 {
		cpu := e.controlled[0].Opponent()
		commands[cpu] = e.cpuAction(cpu)
	}

	own := e.fighters[e.controlled[0]]
	opp := e.fighters[e.controlled[0].Opponent()]
	ownHealth, oppHealth := own.health, opp.health

	var boundary timestep.Boundary
	for frame := 0; frame < e.stepRatio; frame++ {
		e.simulate(commands)
		if e.roundOver() {
			break
		}
	}
	reward := (oppHealth - opp.health) - (ownHealth - own.health)

	if e.roundOver() {
		boundary = e.endRound()
	}
	if boundary.EpisodeDone {
		e.episodeOver = true
	}

	return e.observation(reward, boundary)
}

// simulate advances the world by a single frame
func (e *Engine) simulate(commands map[timestep.Role][2]int) {
	for role, c := range commands {
		e.fighters[role].move(c[0])
	}
	for role, c := range commands {
		f := e.fighters[role]
		f.attack(c[1], AttacksNoCombinations, e.fighters[role.Opponent()])
	}

	e.world.Step(1.0/FPS, 6, 2)

	for _, f := range e.fighters {
		f.tick()
		pos := f.body.GetPosition()
		if x := clamp(pos.X, e.bounds); x != pos.X {
			f.body.SetTransform(box2d.MakeB2Vec2(x, pos.Y), 0)
		}
	}
	e.frames++
}

// cpuAction returns the action of the CPU-controlled fighter
func (e *Engine) cpuAction(role timestep.Role) [2]int {
	self, opp := e.fighters[role], e.fighters[role.Opponent()]

	move := 0
	switch dx := opp.x() - self.x(); {
	case dx > 0.8*Reach:
		move = 5
	case dx < -0.8*Reach:
		move = 1
	}

	attack := 0
	if e.cpu.Rand() == 1 {
		attack = 1 + e.rng.Intn(AttacksNoCombinations-1)
	}
	return [2]int{move, attack}
}

// timer returns the seconds left in the current round
func (e *Engine) timer() float64 {
	t := e.config.RoundSeconds - float64(e.frames)/FPS
	if t < 0 {
		return 0
	}
	return t
}

func (e *Engine) roundOver() bool {
	for _, f := range e.fighters {
		if f.health <= 0 {
			return true
		}
	}
	return e.timer() <= 0
}

// endRound awards the round to the healthier fighter, or to both
// fighters on a draw, advances stages
// and starts the next round. It returns the boundary flags raised.
func (e *Engine) endRound() timestep.Boundary {
	b := timestep.Boundary{RoundDone: true}

	p1, p2 := e.fighters[timestep.P1], e.fighters[timestep.P2]
	switch {
	case p1.health > p2.health:
		p1.wins++
	case p2.health > p1.health:
		p2.wins++
	default:
		// Draws count for both fighters
		p1.wins++
		p2.wins++
	}

	agent := e.fighters[e.controlled[0]]
	opp := e.fighters[e.controlled[0].Opponent()]
	if agent.wins >= e.config.RoundsToWin || opp.wins >= e.config.RoundsToWin {
		b.StageDone = true
		agentWon := opp.wins < e.config.RoundsToWin
		if len(e.controlled) == 2 || !agentWon || e.stage == e.config.Stages {
			b.GameDone = true
			b.EpisodeDone = true
		} else {
			e.stage++
			p1.wins, p2.wins = 0, 0

			// A new stage brings a new opponent
			opp.character = e.rng.Intn(e.config.NumCharacters)
		}
	}

	if !b.EpisodeDone {
		e.newRound()
	}
	return b
}

// observation returns the raw observation of the current state
func (e *Engine) observation(reward float64,
	b timestep.Boundary) (arena.RawObservation, error) {
	frame, err := e.render()
	if err != nil {
		return arena.RawObservation{}, fmt.Errorf("observation: %w", err)
	}

	players := make(map[timestep.Role]map[string]float64, 2)
	for role, f := range e.fighters {
		side := 0.0
		if f.x() > e.fighters[role.Opponent()].x() {
			side = 1.0
		}
		players[role] = map[string]float64{
			"health":    f.health,
			"side":      side,
			"wins":      float64(f.wins),
			"character": float64(f.character),
		}
	}

	return arena.RawObservation{
		Frame: frame,
		RAM: map[string]float64{
			"stage": float64(e.stage),
			"timer": e.timer(),
		},
		Players:  players,
		Reward:   reward,
		Boundary: b,
	}, nil
}

// Close implements the arena.Engine interface
func (e *Engine) Close() error {
	e.started = false
	e.fighters = nil
	return nil
}

func clamp(x float64, bounds r1.Interval) float64 {
	if x < bounds.Min {
		return bounds.Min
	}
	if x > bounds.Max {
		return bounds.Max
	}
	return x
}
