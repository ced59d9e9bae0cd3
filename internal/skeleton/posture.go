package skeleton

import (
	"math"

	"github.com/ayusman/pinchball/internal/hand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Posture is a coarse whole-hand gesture.
type Posture uint8

const (
	PostureNone Posture = iota
	PostureFist
	PostureOpenHand
	PosturePointing
	PosturePeace
	PostureThumbUp
)

var postureNames = map[Posture]string{
	PostureNone:     "none",
	PostureFist:     "fist",
	PostureOpenHand: "open_hand",
	PosturePointing: "pointing",
	PosturePeace:    "peace",
	PostureThumbUp:  "thumb_up",
}

// String returns the snake_case posture name.
func (p Posture) String() string {
	if name, ok := postureNames[p]; ok {
		return name
	}
	return "none"
}

// MarshalText encodes the posture by name.
func (p Posture) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// tip/PIP pairs in thumb-to-pinky order; the thumb uses its IP joint.
var (
	postureTips = [5]int{hand.ThumbTip, hand.IndexTip, hand.MiddleTip, hand.RingTip, hand.PinkyTip}
	posturePIPs = [5]int{hand.ThumbIP, hand.IndexPIP, hand.MiddlePIP, hand.RingPIP, hand.PinkyPIP}
)

// curled reports, per finger, whether the tip hangs below its PIP joint.
func (s *Skeleton) curled() [5]bool {
	var out [5]bool
	for i := range postureTips {
		out[i] = s.Joints[postureTips[i]].Y > s.Joints[posturePIPs[i]].Y
	}
	return out
}

// extended reports, per finger, whether the tip is above its PIP joint.
func (s *Skeleton) extended() [5]bool {
	var out [5]bool
	for i := range postureTips {
		out[i] = s.Joints[postureTips[i]].Y < s.Joints[posturePIPs[i]].Y
	}
	return out
}

func count(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Classify picks the first matching posture in the order thumb-up, peace,
// pointing, fist, open hand.
func (s *Skeleton) Classify() Posture {
	if s == nil {
		return PostureNone
	}

	down := s.curled()
	up := s.extended()

	thumb, thumbIP, thumbMCP := s.Joints[hand.ThumbTip], s.Joints[hand.ThumbIP], s.Joints[hand.ThumbMCP]
	thumbRaised := thumb.Y < thumbIP.Y && thumbIP.Y < thumbMCP.Y

	switch {
	case thumbRaised && count(down[1:]) >= 3:
		return PostureThumbUp
	case up[1] && up[2] && count([]bool{down[0], down[3], down[4]}) >= 2:
		return PosturePeace
	case up[1] && count([]bool{down[0], down[2], down[3], down[4]}) >= 3:
		return PosturePointing
	case count(down[:]) >= 4:
		return PostureFist
	case count(up[:]) >= 4:
		return PostureOpenHand
	}
	return PostureNone
}

// Center returns the mean of all joints.
func (s *Skeleton) Center() r3.Vec {
	var sum r3.Vec
	for _, j := range s.Joints {
		sum = r3.Add(sum, j)
	}
	return r3.Scale(1/float64(len(s.Joints)), sum)
}

// Rotation returns the wrist to middle-base angle in degrees, in the
// screen plane.
func (s *Skeleton) Rotation() float64 {
	w, m := s.Joints[hand.Wrist], s.Joints[hand.MiddleMCP]
	return math.Atan2(m.Y-w.Y, m.X-w.X) * 180 / math.Pi
}
