// Package world holds the entity store and spatial index that back the
// simulation: the authoritative registry of every cell in play, keyed by
// node id, plus the uniform grid used to answer neighbourhood queries in the
// collision loop.
package world

import "github.com/go-gl/mathgl/mgl32"

// Type identifies which of the five cell variants a Cell represents.
type Type uint8

const (
	Player Type = iota
	Food
	Virus
	EjectedMass
	MotherCell
)

// String returns a human-readable name for t, used in log lines.
func (t Type) String() string {
	switch t {
	case Player:
		return "player"
	case Food:
		return "food"
	case Virus:
		return "virus"
	case EjectedMass:
		return "eject"
	case MotherCell:
		return "mother"
	default:
		return "unknown"
	}
}

// Color is an RGB triple as transmitted on the wire.
type Color struct{ R, G, B uint8 }

// Boost is the transient motion state of a cell produced by a split or
// eject: the cell travels toward Direction, covering a tenth of the
// remaining Distance every tick, until Distance drops below one unit.
type Boost struct {
	Distance  float32
	Direction mgl32.Vec2
	Angle     float32
}

// Cell is the central entity of the simulation. All five variants share this
// common attribute block; variant-specific extras are the plain fields at
// the end, meaningful only for their respective Type.
//
// radius = size² and mass = size²/100 are invariants maintained solely by
// SetSize; no other code may write Size, Radius or Mass directly.
type Cell struct {
	NodeID      uint32
	OwnerID     uint32 // valid iff HasOwner
	HasOwner    bool
	Type        Type
	Position    mgl32.Vec2
	Size        float32
	Radius      float32
	Mass        float32
	Color       Color
	TickOfBirth uint64
	Boost       *Boost
	IsRemoved   bool
	Spiked      bool // viruses render spiked
	Agitated    bool // mother cells render agitated after eating
	Skin        string
	Name        string

	// Player-cell extras.
	CanRemerge    bool
	RemergeAtTick uint64

	// Mother-cell extras.
	MinSize float32
}

// NewCell constructs a Cell of the given type at position pos with the given
// size, correctly deriving Radius and Mass.
func NewCell(id uint32, typ Type, pos mgl32.Vec2, size float32, tick uint64) *Cell {
	c := &Cell{NodeID: id, Type: typ, Position: pos, TickOfBirth: tick}
	c.SetSize(size)
	return c
}

// SetSize updates Size and recomputes Radius and Mass, preserving the
// invariant radius ≡ size² and mass ≡ radius/100.
func (c *Cell) SetSize(size float32) {
	c.Size = size
	c.Radius = size * size
	c.Mass = c.Radius / 100
}

// SetRadius is the inverse of SetSize, used after eating when the new
// radius (not size) is known directly.
func (c *Cell) SetRadius(radius float32) {
	if radius < 0 {
		radius = 0
	}
	c.SetSize(sqrt32(radius))
}

// Age returns the number of ticks since the cell was created.
func (c *Cell) Age(currentTick uint64) uint64 {
	if currentTick < c.TickOfBirth {
		return 0
	}
	return currentTick - c.TickOfBirth
}

// SetBoost gives the cell a boost of the given distance toward angle
// (radians), matching the reference convention direction = (sin, cos).
func (c *Cell) SetBoost(distance, angle float32) {
	c.Boost = &Boost{Distance: distance, Direction: mgl32.Vec2{sin32(angle), cos32(angle)}, Angle: angle}
}

// SetBoostDirection gives the cell a boost of the given distance toward an
// already-normalized direction vector.
func (c *Cell) SetBoostDirection(distance float32, dir mgl32.Vec2) {
	c.Boost = &Boost{Distance: distance, Direction: dir, Angle: atan2_32(dir.Y(), dir.X())}
}

// ClampToBorder clamps the cell's position to stay fully within b, per the
// invariant min+size/2 ≤ position ≤ max-size/2.
func (c *Cell) ClampToBorder(b Border) {
	half := c.Size / 2
	c.Position[0] = clamp32(c.Position.X(), b.MinX+half, b.MaxX-half)
	c.Position[1] = clamp32(c.Position.Y(), b.MinY+half, b.MaxY-half)
}

// StepBoost advances the boost state by one tick: the cell moves a tenth of
// the remaining distance toward Direction and that amount is subtracted from
// Distance. When Distance drops below one unit the boost is cleared and
// StepBoost returns false. Clamps to the border after moving.
func (c *Cell) StepBoost(b Border) bool {
	if c.Boost == nil {
		return false
	}
	if c.Boost.Distance < 1 {
		c.Boost = nil
		return false
	}
	move := c.Boost.Distance / 10
	c.Boost.Distance -= move
	c.Position = c.Position.Add(c.Boost.Direction.Mul(move))
	c.ClampToBorder(b)
	return true
}

func clamp32(v, lo, hi float32) float32 {
	if hi < lo {
		// Degenerate border (world narrower than the cell); keep the
		// cell centred rather than producing lo > hi.
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
