// Package game owns the live ball population and drives one simulation tick
// at a time: integrate, cull, resolve the hand, spawn and cap.
package game

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/pinchball/internal/ball"
	"github.com/ayusman/pinchball/internal/event"
	"github.com/ayusman/pinchball/internal/interaction"
	"github.com/ayusman/pinchball/internal/projection"
	"github.com/ayusman/pinchball/internal/skeleton"
	"gonum.org/v1/gonum/spatial/r3"
)

// bounceEventSpeed is the reflected-axis speed below which a wall contact
// is treated as resting or rolling and does not emit a Bounce event.
const bounceEventSpeed = 1.0

// Config holds the world parameters, fixed at construction.
type Config struct {
	Width         float64
	Height        float64
	Cap           int // max live balls, oldest evicted first
	SpawnInterval int // ticks between automatic spawns
	CullMargin    float64
	InitialBalls  int
	TrailCapacity int
	Radius        float64
	Focal         float64
	Physics       ball.Physics
}

// DefaultConfig returns the standard playground for a 640x480 camera.
func DefaultConfig() Config {
	return Config{
		Width:         640,
		Height:        480,
		Cap:           8,
		SpawnInterval: 180,
		CullMargin:    200,
		InitialBalls:  3,
		TrailCapacity: ball.DefaultTrailCapacity,
		Radius:        ball.DefaultRadius,
		Focal:         projection.DefaultFocalLength,
		Physics:       ball.DefaultPhysics(),
	}
}

// World is the simulation state. It is not safe for concurrent use; the
// owner serializes Tick, Spawn and Snapshot.
type World struct {
	config  Config
	bounds  ball.Bounds
	rng     *rand.Rand
	session *interaction.Session

	balls      []*ball.Ball
	nextID     uint64
	spawnTimer int
	tick       uint64
	posture    skeleton.Posture
	handedness skeleton.Handedness
}

// New creates an empty world. A nil rng uses a randomly seeded source.
func New(config Config, session *interaction.Session, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if session == nil {
		session = interaction.NewSession(interaction.DefaultTuning(), interaction.ModePinch)
	}
	return &World{
		config:  config,
		bounds:  ball.NewBounds(config.Width, config.Height, config.Focal, ball.DefaultNearScale, ball.DefaultDepthFar),
		rng:     rng,
		session: session,
		nextID:  1,
	}
}

// Config returns the construction parameters.
func (w *World) Config() Config {
	return w.config
}

// Session returns the hand interaction session.
func (w *World) Session() *interaction.Session {
	return w.session
}

// Balls returns live balls in creation order. The slice must not be
// retained across ticks.
func (w *World) Balls() []*ball.Ball {
	return w.balls
}

// Ball returns the live ball with the given ID, or nil.
func (w *World) Ball(id uint64) *ball.Ball {
	for _, b := range w.balls {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Len returns the number of live balls.
func (w *World) Len() int {
	return len(w.balls)
}

// Ticks returns the number of ticks run so far.
func (w *World) Ticks() uint64 {
	return w.tick
}

// Seed spawns n balls at random positions.
func (w *World) Seed(n int) {
	for i := 0; i < n; i++ {
		w.Spawn(nil)
	}
}

// Spawn adds a ball at pos, or at a random position in the spawn band when
// pos is nil. Velocity is always random. The population cap is enforced on
// the next Tick.
func (w *World) Spawn(pos *r3.Vec) *ball.Ball {
	var p r3.Vec
	if pos != nil {
		p = *pos
	} else {
		p = r3.Vec{
			X: w.uniform(100, w.config.Width-100),
			Y: w.uniform(100, 200),
			Z: w.uniform(0, 200),
		}
	}
	v := r3.Vec{
		X: w.uniform(-3, 3),
		Y: w.uniform(-8, -4),
		Z: w.uniform(-2, 2),
	}

	b := ball.New(w.nextID, p, v, w.config.Radius, w.config.TrailCapacity)
	w.nextID++
	w.balls = append(w.balls, b)
	return b
}

// Remove deletes the ball with the given ID and releases any grab on it.
func (w *World) Remove(id uint64) bool {
	for i, b := range w.balls {
		if b.ID == id {
			w.removeAt(i)
			return true
		}
	}
	return false
}

// Tick advances the world by one step. sk is the tracked hand, nil when
// absent. The returned events are in the order they happened.
func (w *World) Tick(sk *skeleton.Skeleton) []event.Event {
	w.tick++
	var evs []event.Event

	for _, b := range w.balls {
		if c := b.Update(w.bounds, w.config.Physics); bounced(c, b.Vel) {
			evs = append(evs, event.Event{Kind: event.Bounce, BallID: b.ID})
		}
	}

	evs = append(evs, w.cull()...)

	evs = append(evs, w.session.Resolve(sk, w)...)
	w.posture = sk.Classify()
	w.handedness = skeleton.Unknown
	if sk != nil {
		w.handedness = sk.Handedness
	}

	w.spawnTimer++
	if w.config.SpawnInterval > 0 && w.spawnTimer >= w.config.SpawnInterval {
		b := w.Spawn(nil)
		w.spawnTimer = 0
		evs = append(evs, event.Event{Kind: event.Spawn, BallID: b.ID})
	}

	for w.config.Cap > 0 && len(w.balls) > w.config.Cap {
		id := w.balls[0].ID
		w.removeAt(0)
		evs = append(evs, event.Event{Kind: event.Evict, BallID: id})
	}

	return evs
}

// bounced reports whether any wall in c was hit hard enough to count as a
// bounce, judged by the velocity component that wall reflected.
func bounced(c ball.Contact, v r3.Vec) bool {
	switch {
	case c&ball.ContactSide != 0 && math.Abs(v.X) > bounceEventSpeed:
		return true
	case c&(ball.ContactTop|ball.ContactGround) != 0 && math.Abs(v.Y) > bounceEventSpeed:
		return true
	case c&ball.ContactDepth != 0 && math.Abs(v.Z) > bounceEventSpeed:
		return true
	}
	return false
}

// cull removes balls that have left the world through the sides or bottom.
func (w *World) cull() []event.Event {
	var evs []event.Event
	m := w.config.CullMargin

	kept := w.balls[:0]
	for _, b := range w.balls {
		if b.Pos.Y > w.config.Height+m || b.Pos.X < -m || b.Pos.X > w.config.Width+m || !b.Finite() {
			w.session.Release(b.ID)
			evs = append(evs, event.Event{Kind: event.Cull, BallID: b.ID})
			continue
		}
		kept = append(kept, b)
	}
	clear(w.balls[len(kept):])
	w.balls = kept
	return evs
}

func (w *World) removeAt(i int) {
	w.session.Release(w.balls[i].ID)
	w.balls = append(w.balls[:i], w.balls[i+1:]...)
}

func (w *World) uniform(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}
