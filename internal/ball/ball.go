// Package ball simulates point-mass spheres under gravity, air drag and
// lossy reflection off the world box.
package ball

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRadius is the radius given to spawned balls.
const DefaultRadius = 20.0

// State tags what the hand last did to a ball. Renderers map it to a color.
type State uint8

const (
	Free State = iota
	Held
	Thrown
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Held:
		return "held"
	case Thrown:
		return "thrown"
	default:
		return "free"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Physics holds the integration constants applied every tick.
type Physics struct {
	Gravity        float64 // added to vy per tick, +y is down
	Drag           float64 // per-tick multiplier on all velocity components
	Bounce         float64 // velocity fraction kept (and reversed) on a wall hit
	GroundFriction float64 // extra vx multiplier on ground contact
}

// DefaultPhysics returns the standard playground constants.
func DefaultPhysics() Physics {
	return Physics{
		Gravity:        0.3,
		Drag:           0.99,
		Bounce:         0.8,
		GroundFriction: 0.9,
	}
}

// Bounds is the simulation box. Near is negative so balls can come in
// front of the screen plane before bouncing.
type Bounds struct {
	Width  float64
	Height float64
	Near   float64
	Far    float64
}

// Default depth constants.
const (
	DefaultDepthFar  = 800.0
	DefaultNearScale = 0.8
)

// NewBounds builds Bounds whose near plane sits at -focal*nearScale.
func NewBounds(width, height, focal, nearScale, far float64) Bounds {
	return Bounds{
		Width:  width,
		Height: height,
		Near:   -focal * nearScale,
		Far:    far,
	}
}

// Contact is a bitmask of the walls hit during one Update.
type Contact uint8

const (
	ContactSide Contact = 1 << iota
	ContactTop
	ContactGround
	ContactDepth
)

// Ball is a simulated sphere.
type Ball struct {
	ID     uint64
	Pos    r3.Vec
	Vel    r3.Vec
	Radius float64
	State  State
	Trail  *Trail
}

// New creates a free ball. A non-positive radius falls back to DefaultRadius.
func New(id uint64, pos, vel r3.Vec, radius float64, trailCap int) *Ball {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Ball{
		ID:     id,
		Pos:    pos,
		Vel:    vel,
		Radius: radius,
		Trail:  NewTrail(trailCap),
	}
}

// Update advances the ball one tick: record trail, apply gravity then drag,
// integrate position, then reflect off each axis independently.
func (b *Ball) Update(box Bounds, p Physics) Contact {
	b.Trail.Push(b.Pos)

	b.Vel.Y += p.Gravity
	b.Vel = r3.Scale(p.Drag, b.Vel)
	b.Pos = r3.Add(b.Pos, b.Vel)

	var hit Contact
	r := b.Radius

	if b.Pos.X-r <= 0 || b.Pos.X+r >= box.Width {
		b.Vel.X = -b.Vel.X * p.Bounce
		b.Pos.X = clamp(b.Pos.X, r, box.Width-r)
		hit |= ContactSide
	}

	if b.Pos.Y-r <= 0 {
		b.Vel.Y = -b.Vel.Y * p.Bounce
		b.Pos.Y = r
		hit |= ContactTop
	}

	if b.Pos.Y+r >= box.Height {
		b.Vel.Y = -b.Vel.Y * p.Bounce
		b.Pos.Y = box.Height - r
		b.Vel.X *= p.GroundFriction
		hit |= ContactGround
	}

	if b.Pos.Z < box.Near || b.Pos.Z > box.Far {
		b.Vel.Z = -b.Vel.Z * p.Bounce
		b.Pos.Z = clamp(b.Pos.Z, box.Near, box.Far)
		hit |= ContactDepth
	}

	return hit
}

// DistanceTo returns the distance from the ball center to p.
func (b *Ball) DistanceTo(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(b.Pos, p))
}

// Finite reports whether position and velocity hold no NaN or Inf.
func (b *Ball) Finite() bool {
	for _, v := range [...]float64{b.Pos.X, b.Pos.Y, b.Pos.Z, b.Vel.X, b.Vel.Y, b.Vel.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
