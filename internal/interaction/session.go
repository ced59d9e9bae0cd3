// Package interaction resolves what the tracked hand does to the balls each
// tick: pinch grabs, throws on release, and bone collisions.
package interaction

import (
	"math"

	"github.com/ayusman/pinchball/internal/ball"
	"github.com/ayusman/pinchball/internal/event"
	"github.com/ayusman/pinchball/internal/skeleton"
	"gonum.org/v1/gonum/spatial/r3"
)

// World is the view of the live ball set the session acts on.
type World interface {
	// Balls returns live balls in creation order.
	Balls() []*ball.Ball
	// Ball returns the live ball with the given ID, or nil.
	Ball(id uint64) *ball.Ball
}

// Stats counts interactions over the session lifetime.
type Stats struct {
	Grabs  int `json:"grabs" msgpack:"grabs"`
	Throws int `json:"throws" msgpack:"throws"`
	Hits   int `json:"hits" msgpack:"hits"`
	Drops  int `json:"drops" msgpack:"drops"`
}

// Session is the hand state that persists across ticks. It is not safe for
// concurrent use.
type Session struct {
	Tuning Tuning
	Mode   Mode

	// Grabbed is the ID of the held ball, 0 when nothing is held.
	Grabbed uint64

	Pinching       bool
	PinchPoint     r3.Vec
	PrevPinchPoint r3.Vec
	PinchVelocity  r3.Vec
	HandVelocity   r3.Vec

	hasPinch     bool
	hasPrevPinch bool

	current  *skeleton.Skeleton
	previous *skeleton.Skeleton

	Score int
	Stats Stats
}

// NewSession creates an idle session.
func NewSession(t Tuning, m Mode) *Session {
	return &Session{Tuning: t, Mode: m}
}

// Skeleton returns the skeleton seen on the latest tick, nil when absent.
func (s *Session) Skeleton() *skeleton.Skeleton {
	return s.current
}

// HasPinchPoint reports whether PinchPoint holds a value for this tick.
func (s *Session) HasPinchPoint() bool {
	return s.hasPinch
}

// Release clears the grab if it refers to id. The world calls it whenever a
// ball is removed.
func (s *Session) Release(id uint64) {
	if s.Grabbed == id {
		s.Grabbed = 0
	}
}

// SetMode switches the interaction mode. Any pinch grab or follow hold is
// let go without an event so no ball stays held under the new mode.
func (s *Session) SetMode(m Mode, w World) {
	if m == s.Mode {
		return
	}
	s.Mode = m
	s.Grabbed = 0
	releaseHeld(w)
}

// releaseHeld frees every ball tagged as held.
func releaseHeld(w World) {
	for _, b := range w.Balls() {
		if b.State == ball.Held {
			b.State = ball.Free
		}
	}
}

// Resolve runs one tick of hand interaction against w. sk is nil when no
// hand was detected.
func (s *Session) Resolve(sk *skeleton.Skeleton, w World) []event.Event {
	if s.Grabbed != 0 && w.Ball(s.Grabbed) == nil {
		s.Grabbed = 0
	}

	s.observe(sk)

	if sk == nil {
		evs := s.dropGrab(w)
		if s.Mode == ModeFollow {
			releaseHeld(w)
		}
		return evs
	}

	if s.Mode == ModeFollow {
		return s.follow(w)
	}

	if s.Grabbed != 0 {
		return s.hold(w)
	}

	if s.Pinching {
		if evs, ok := s.tryGrab(w); ok {
			return evs
		}
	}

	return s.collide(w)
}

// observe swaps skeleton snapshots and derives pinch and palm motion.
func (s *Session) observe(sk *skeleton.Skeleton) {
	s.previous, s.current = s.current, sk

	if sk == nil {
		s.Pinching = false
		s.hasPinch, s.hasPrevPinch = false, false
		s.PinchVelocity = r3.Vec{}
		s.HandVelocity = r3.Vec{}
		return
	}

	s.PrevPinchPoint, s.hasPrevPinch = s.PinchPoint, s.hasPinch
	s.PinchPoint, s.hasPinch = sk.PinchPoint(), true
	s.Pinching = sk.IsPinching(s.Tuning.PinchThreshold)

	if s.hasPrevPinch {
		s.PinchVelocity = r3.Scale(s.Tuning.ThrowPower, r3.Sub(s.PinchPoint, s.PrevPinchPoint))
	} else {
		s.PinchVelocity = r3.Vec{}
	}

	if s.previous != nil {
		s.HandVelocity = r3.Sub(sk.Palm(), s.previous.Palm())
	} else {
		s.HandVelocity = r3.Vec{}
	}
}

// dropGrab lets go of a held ball without imparting velocity.
func (s *Session) dropGrab(w World) []event.Event {
	if s.Grabbed == 0 {
		return nil
	}

	id := s.Grabbed
	s.Grabbed = 0
	if b := w.Ball(id); b != nil && b.State == ball.Held {
		b.State = ball.Free
	}
	s.Stats.Drops++
	return []event.Event{{Kind: event.Drop, BallID: id}}
}

// hold keeps the held ball on the pinch point, or throws it once the pinch
// opens.
func (s *Session) hold(w World) []event.Event {
	b := w.Ball(s.Grabbed)

	if s.Pinching {
		b.Pos = s.PinchPoint
		b.Vel = r3.Vec{}
		b.State = ball.Held
		return nil
	}

	b.Vel = s.PinchVelocity
	b.State = ball.Thrown
	s.Grabbed = 0
	s.Stats.Throws++
	return []event.Event{{Kind: event.Throw, BallID: b.ID}}
}

// tryGrab captures the first ball within catch distance of the pinch point.
func (s *Session) tryGrab(w World) ([]event.Event, bool) {
	for _, b := range w.Balls() {
		if b.DistanceTo(s.PinchPoint) < s.Tuning.CatchDistance {
			s.Grabbed = b.ID
			b.State = ball.Held
			s.Score += s.Tuning.GrabBonus
			s.Stats.Grabs++
			return []event.Event{{Kind: event.Grab, BallID: b.ID, Score: s.Tuning.GrabBonus}}, true
		}
	}
	return nil, false
}

// collide bats every ball touching a hand bone.
func (s *Session) collide(w World) []event.Event {
	var evs []event.Event

	// Per-bone velocity is not tracked; every bone moves with the palm.
	boneVel := r3.Scale(s.Tuning.ThrowPower, s.HandVelocity)
	speed := r3.Norm(boneVel)

	for _, b := range w.Balls() {
		_, point, dist := s.current.NearestBone(b.Pos)
		if dist >= b.Radius+s.Tuning.CatchDistance/2 {
			continue
		}

		if speed <= s.Tuning.MinImpact {
			b.Vel = r3.Scale(s.Tuning.ContactDamping, b.Vel)
			continue
		}

		normal := r3.Sub(b.Pos, point)
		if n := r3.Norm(normal); n > 0 {
			normal = r3.Scale(1/n, normal)
		}
		impact := math.Abs(r3.Dot(boneVel, normal))

		b.Vel = r3.Add(boneVel, r3.Scale(impact*s.Tuning.ImpulseFactor, normal))
		b.Pos = r3.Add(b.Pos, b.Vel)
		b.State = ball.Thrown

		s.Score += s.Tuning.HitScore
		s.Stats.Hits++
		evs = append(evs, event.Event{Kind: event.Hit, BallID: b.ID, Score: s.Tuning.HitScore})
	}
	return evs
}

// follow drags the first ball near the palm along with it and flings it
// when the palm moves fast enough.
func (s *Session) follow(w World) []event.Event {
	s.Grabbed = 0
	palm := s.current.Palm()
	vel := r3.Scale(s.Tuning.FollowThrowPower, s.HandVelocity)

	var target *ball.Ball
	for _, b := range w.Balls() {
		if target == nil && b.DistanceTo(palm) < s.Tuning.CatchDistance {
			target = b
			continue
		}
		if b.State == ball.Held {
			b.State = ball.Free
		}
	}
	if target == nil {
		return nil
	}

	if r3.Norm(vel) > s.Tuning.FollowMinSpeed {
		target.Vel = vel
		target.State = ball.Thrown
		s.Score += s.Tuning.HitScore
		s.Stats.Throws++
		return []event.Event{{Kind: event.Throw, BallID: target.ID, Score: s.Tuning.HitScore}}
	}

	target.Pos = palm
	target.Vel = r3.Scale(s.Tuning.FollowDamping, target.Vel)
	target.State = ball.Held
	return nil
}
