package mockengine

import (
	"image/color"
	"math"

	"github.com/ByteArena/box2d"

	"github.com/samuelfneumann/goarena/timestep"
)

// Physical constants of the arena, in world units
const (
	ArenaWidth  float64 = 12.0
	ArenaHeight float64 = 8.0
	GroundY     float64 = 1.0

	FighterHalfW float64 = 0.4
	FighterHalfH float64 = 0.9

	Gravity   float64 = -30.0
	WalkSpeed float64 = 4.0
	JumpSpeed float64 = 11.0

	// Reach is the largest horizontal distance between fighters at which
	// an attack connects
	Reach float64 = 1.4

	// AttackCooldown is the number of frames a fighter waits between
	// attacks
	AttackCooldown int = 12

	FPS float64 = 60.0
)

// directions holds the (dx, dy) of each move. Move 0 stands still and
// the remaining moves go around the compass starting from the left.
var directions = [...][2]float64{
	{0, 0},
	{-1, 0},
	{-1, 1},
	{0, 1},
	{1, 1},
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, -1},
}

var characterColours = []color.RGBA{
	{R: 204, G: 51, B: 51, A: 255},
	{R: 51, G: 102, B: 204, A: 255},
	{R: 51, G: 153, B: 51, A: 255},
	{R: 230, G: 179, B: 26, A: 255},
	{R: 153, G: 77, B: 179, A: 255},
	{R: 26, G: 179, B: 179, A: 255},
	{R: 230, G: 115, B: 26, A: 255},
	{R: 128, G: 128, B: 128, A: 255},
}

// fighter is one of the two characters in the arena
type fighter struct {
	role      timestep.Role
	character int
	body      *box2d.B2Body

	health   float64
	wins     int
	cooldown int

	// crouched is set while the fighter holds a downward move
	crouched bool

	// attacking counts down the frames during which the fighter is
	// drawn with its arm extended
	attacking int
}

// newFighter creates the body of a fighter standing on the ground at x
func newFighter(world *box2d.B2World, role timestep.Role, character int,
	x, health float64) *fighter {
	def := box2d.MakeB2BodyDef()
	def.Type = 2 // Dynamic body
	def.Position = box2d.MakeB2Vec2(x, GroundY+FighterHalfH)
	def.FixedRotation = true
	body := world.CreateBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(FighterHalfW, FighterHalfH)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = 1.0
	fix.Friction = 0.0
	fix.Restitution = 0.0
	body.CreateFixtureFromDef(&fix)

	return &fighter{
		role:      role,
		character: character,
		body:      body,
		health:    health,
	}
}

// x returns the horizontal position of the fighter
func (f *fighter) x() float64 {
	return f.body.GetPosition().X
}

// grounded returns whether the fighter stands on the ground
func (f *fighter) grounded() bool {
	pos := f.body.GetPosition()
	vel := f.body.GetLinearVelocity()
	return pos.Y <= GroundY+FighterHalfH+0.05 && math.Abs(vel.Y) < 0.1
}

// move sets the velocity of the fighter for the coming frame
func (f *fighter) move(m int) {
	dir := directions[m]
	f.crouched = dir[1] < 0
	vel := f.body.GetLinearVelocity()
	vy := vel.Y
	if dir[1] > 0 && f.grounded() {
		vy = JumpSpeed
	}
	f.body.SetLinearVelocity(box2d.MakeB2Vec2(dir[0]*WalkSpeed, vy))
}

// attack strikes the opponent if the fighter is ready and within reach.
// It returns the damage dealt.
func (f *fighter) attack(a, noCombinations int, opponent *fighter) float64 {
	if a == 0 || f.cooldown > 0 {
		return 0
	}
	f.cooldown = AttackCooldown
	f.attacking = AttackCooldown / 2
	if math.Abs(f.x()-opponent.x()) > Reach {
		return 0
	}

	damage := 4.0 + 2.0*float64(a)
	if a >= noCombinations {
		// Button combinations hit twice
		damage *= 2
	}
	if opponent.crouching() {
		damage /= 2
	}
	opponent.health = math.Max(0, opponent.health-damage)
	return damage
}

// crouching fighters take half damage
func (f *fighter) crouching() bool {
	return f.crouched && f.grounded()
}

// tick advances the timers of the fighter by one frame
func (f *fighter) tick() {
	if f.cooldown > 0 {
		f.cooldown--
	}
	if f.attacking > 0 {
		f.attacking--
	}
}

// colour returns the colour of the fighter's character
func (f *fighter) colour() color.RGBA {
	return characterColours[f.character%len(characterColours)]
}
