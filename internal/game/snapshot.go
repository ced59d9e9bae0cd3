package game

import (
	"sort"

	"github.com/ayusman/pinchball/internal/ball"
	"github.com/ayusman/pinchball/internal/interaction"
	"github.com/ayusman/pinchball/internal/projection"
	"github.com/ayusman/pinchball/internal/skeleton"
)

// Telemetry is the scalar game state published every tick.
type Telemetry struct {
	Tick       uint64              `json:"tick" msgpack:"tick"`
	Score      int                 `json:"score" msgpack:"score"`
	BallCount  int                 `json:"ball_count" msgpack:"ball_count"`
	Pinching   bool                `json:"pinching" msgpack:"pinching"`
	Grabbed    uint64              `json:"grabbed" msgpack:"grabbed"`
	Posture    skeleton.Posture    `json:"posture" msgpack:"posture"`
	Handedness skeleton.Handedness `json:"handedness" msgpack:"handedness"`
	Mode       string              `json:"mode" msgpack:"mode"`
	Stats      interaction.Stats   `json:"stats" msgpack:"stats"`
}

// BallView is a ball as it appears on screen.
type BallView struct {
	ID     uint64             `json:"id" msgpack:"id"`
	Screen projection.Point   `json:"screen" msgpack:"screen"`
	Radius float64            `json:"radius" msgpack:"radius"`
	Depth  float64            `json:"depth" msgpack:"depth"`
	State  ball.State         `json:"state" msgpack:"state"`
	Trail  []projection.Point `json:"trail,omitempty" msgpack:"trail,omitempty"`
}

// HandView is the tracked hand in screen space. Rotation is the wrist to
// middle-base angle in degrees.
type HandView struct {
	Joints     []projection.Point `json:"joints" msgpack:"joints"`
	PinchPoint projection.Point   `json:"pinch_point" msgpack:"pinch_point"`
	Pinching   bool               `json:"pinching" msgpack:"pinching"`
	Center     projection.Point   `json:"center" msgpack:"center"`
	Rotation   float64            `json:"rotation" msgpack:"rotation"`
	FingersUp  [5]bool            `json:"fingers_up" msgpack:"fingers_up"`
}

// Fingers returns how many fingers are extended.
func (h *HandView) Fingers() int {
	n := 0
	for _, up := range h.FingersUp {
		if up {
			n++
		}
	}
	return n
}

// Snapshot is the render output of one tick.
type Snapshot struct {
	Telemetry `msgpack:",inline"`
	Width  float64    `json:"width" msgpack:"width"`
	Height float64    `json:"height" msgpack:"height"`
	Balls  []BallView `json:"balls" msgpack:"balls"`
	Hand   *HandView  `json:"hand,omitempty" msgpack:"hand,omitempty"`
}

// Telemetry returns the scalar state of the last tick.
func (w *World) Telemetry() Telemetry {
	s := w.session
	return Telemetry{
		Tick:       w.tick,
		Score:      s.Score,
		BallCount:  len(w.balls),
		Pinching:   s.Pinching,
		Grabbed:    s.Grabbed,
		Posture:    w.posture,
		Handedness: w.handedness,
		Mode:       s.Mode.String(),
		Stats:      s.Stats,
	}
}

// Snapshot projects the world for drawing. Balls that cannot be projected
// or are too small to see are omitted. The rest are ordered far to near so
// they can be painted in sequence.
func (w *World) Snapshot() Snapshot {
	center := projection.Point{X: w.config.Width / 2, Y: w.config.Height / 2}

	snap := Snapshot{
		Telemetry: w.Telemetry(),
		Width:     w.config.Width,
		Height:    w.config.Height,
		Balls:     make([]BallView, 0, len(w.balls)),
	}

	for _, b := range w.balls {
		p, ok := projection.Project(b.Pos, w.config.Focal, center)
		if !ok || !p.Visible(b.Radius) {
			continue
		}

		view := BallView{
			ID:     b.ID,
			Screen: projection.Point{X: p.X, Y: p.Y},
			Radius: p.Radius(b.Radius),
			Depth:  b.Pos.Z,
			State:  b.State,
		}
		for _, tp := range b.Trail.Points() {
			if tproj, ok := projection.Project(tp, w.config.Focal, center); ok {
				view.Trail = append(view.Trail, projection.Point{X: tproj.X, Y: tproj.Y})
			}
		}
		snap.Balls = append(snap.Balls, view)
	}

	sort.SliceStable(snap.Balls, func(i, j int) bool {
		return snap.Balls[i].Depth > snap.Balls[j].Depth
	})

	if sk := w.session.Skeleton(); sk != nil {
		c := sk.Center()
		hv := &HandView{
			Joints:    make([]projection.Point, len(sk.Joints)),
			Pinching:  w.session.Pinching,
			Center:    projection.Point{X: c.X, Y: c.Y},
			Rotation:  sk.Rotation(),
			FingersUp: sk.FingersUp(),
		}
		for i, j := range sk.Joints {
			hv.Joints[i] = projection.Point{X: j.X, Y: j.Y}
		}
		pp := sk.PinchPoint()
		hv.PinchPoint = projection.Point{X: pp.X, Y: pp.Y}
		snap.Hand = hv
	}

	return snap
}
