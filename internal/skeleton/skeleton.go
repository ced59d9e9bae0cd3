// Package skeleton holds the per-frame hand pose in simulation space and the
// geometric queries the interaction engine runs against it.
package skeleton

import (
	"math"

	"github.com/ayusman/pinchball/internal/hand"
	"gonum.org/v1/gonum/spatial/r3"
)

// DepthScale converts normalized landmark depth into simulation units,
// as a fraction of the frame width.
const DepthScale = 0.8

// Handedness identifies which hand the skeleton belongs to.
type Handedness uint8

const (
	Unknown Handedness = iota
	Left
	Right
)

// String returns the estimator's label for h.
func (h Handedness) String() string {
	switch h {
	case Left:
		return hand.Left
	case Right:
		return hand.Right
	default:
		return "Unknown"
	}
}

// MarshalText encodes the handedness label.
func (h Handedness) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// ParseHandedness maps an estimator label to Handedness.
func ParseHandedness(label string) Handedness {
	switch label {
	case hand.Left:
		return Left
	case hand.Right:
		return Right
	default:
		return Unknown
	}
}

// Bone is a segment between two joints.
type Bone struct {
	A, B int
}

// Bones is the fixed connectivity of the hand, scanned in this order.
var Bones = [...]Bone{
	{hand.Wrist, hand.ThumbCMC}, {hand.ThumbCMC, hand.ThumbMCP}, {hand.ThumbMCP, hand.ThumbIP}, {hand.ThumbIP, hand.ThumbTip},
	{hand.Wrist, hand.IndexMCP}, {hand.IndexMCP, hand.IndexPIP}, {hand.IndexPIP, hand.IndexDIP}, {hand.IndexDIP, hand.IndexTip},
	{hand.IndexMCP, hand.MiddleMCP}, {hand.MiddleMCP, hand.MiddlePIP}, {hand.MiddlePIP, hand.MiddleDIP}, {hand.MiddleDIP, hand.MiddleTip},
	{hand.MiddleMCP, hand.RingMCP}, {hand.RingMCP, hand.RingPIP}, {hand.RingPIP, hand.RingDIP}, {hand.RingDIP, hand.RingTip},
	{hand.RingMCP, hand.PinkyMCP}, {hand.PinkyMCP, hand.PinkyPIP}, {hand.PinkyPIP, hand.PinkyDIP}, {hand.PinkyDIP, hand.PinkyTip},
	{hand.Wrist, hand.PinkyMCP},
}

// Skeleton is a fully populated hand pose. An absent hand is a nil *Skeleton.
type Skeleton struct {
	Joints     [hand.NumLandmarks]r3.Vec
	Handedness Handedness
}

// FromLandmarks maps normalized landmarks into a width x height world.
func FromLandmarks(h *hand.Landmarks, width, height float64) *Skeleton {
	if h == nil {
		return nil
	}

	s := &Skeleton{Handedness: ParseHandedness(h.Handedness)}
	for i, p := range h.Points {
		s.Joints[i] = r3.Vec{
			X: p.X * width,
			Y: p.Y * height,
			Z: p.Z * width * DepthScale,
		}
	}
	return s
}

// Palm returns the middle finger base, used as the palm center.
func (s *Skeleton) Palm() r3.Vec {
	return s.Joints[hand.MiddleMCP]
}

// PinchDistance returns the thumb tip to index tip distance.
func (s *Skeleton) PinchDistance() float64 {
	return r3.Norm(r3.Sub(s.Joints[hand.ThumbTip], s.Joints[hand.IndexTip]))
}

// PinchPoint returns the midpoint of thumb tip and index tip.
func (s *Skeleton) PinchPoint() r3.Vec {
	return r3.Scale(0.5, r3.Add(s.Joints[hand.ThumbTip], s.Joints[hand.IndexTip]))
}

// IsPinching reports whether the pinch distance is below threshold.
func (s *Skeleton) IsPinching(threshold float64) bool {
	return s.PinchDistance() < threshold
}

// Segment returns the endpoints of b.
func (s *Skeleton) Segment(b Bone) (r3.Vec, r3.Vec) {
	return s.Joints[b.A], s.Joints[b.B]
}

// NearestPointOnBone projects target onto the finite segment b.
// The returned parameter t is clamped to [0, 1]; a zero-length bone yields t = 0.
func (s *Skeleton) NearestPointOnBone(b Bone, target r3.Vec) (r3.Vec, float64) {
	p1, p2 := s.Segment(b)
	return closestOnSegment(p1, p2, target)
}

// NearestBone scans Bones in order and returns the first bone at minimum
// distance from target, with the closest point on it and that distance.
func (s *Skeleton) NearestBone(target r3.Vec) (Bone, r3.Vec, float64) {
	best := Bones[0]
	bestPoint := r3.Vec{}
	bestDist := math.Inf(1)

	for _, b := range Bones {
		p, _ := s.NearestPointOnBone(b, target)
		d := r3.Norm(r3.Sub(target, p))
		if d < bestDist {
			best, bestPoint, bestDist = b, p, d
		}
	}
	return best, bestPoint, bestDist
}

var tipIDs = [5]int{hand.ThumbTip, hand.IndexTip, hand.MiddleTip, hand.RingTip, hand.PinkyTip}

// FingersUp reports extension of thumb, index, middle, ring and pinky.
// The thumb test runs along x and its direction depends on handedness
// (mirrored camera); an Unknown hand reports the thumb as down. The other
// fingers are up when the tip is above (smaller y) the joint two below it.
func (s *Skeleton) FingersUp() [5]bool {
	var up [5]bool

	tip, below := s.Joints[tipIDs[0]], s.Joints[tipIDs[0]-1]
	switch s.Handedness {
	case Right:
		up[0] = tip.X < below.X
	case Left:
		up[0] = tip.X > below.X
	}

	for i := 1; i < len(tipIDs); i++ {
		up[i] = s.Joints[tipIDs[i]].Y < s.Joints[tipIDs[i]-2].Y
	}
	return up
}

func closestOnSegment(p1, p2, target r3.Vec) (r3.Vec, float64) {
	line := r3.Sub(p2, p1)
	lenSq := r3.Dot(line, line)

	t := 0.0
	if lenSq > 0 {
		t = r3.Dot(r3.Sub(target, p1), line) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return r3.Add(p1, r3.Scale(t, line)), t
}
