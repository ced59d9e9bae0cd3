// Package hand defines the 21-point hand landmark model produced by the pose
// estimator, in normalized image coordinates.
package hand

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the estimator.
const (
	Left  = "Left"
	Right = "Right"
)

// Point3D is a landmark position. X and Y are normalized to the frame
// size; Z is relative depth with roughly the same scale as X.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks represents the 21 hand landmarks of one detected hand.
type Landmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Mirror returns a copy flipped horizontally (x -> 1-x) with the
// handedness label swapped, matching a horizontally flipped camera image.
func (h Landmarks) Mirror() Landmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	switch h.Handedness {
	case Left:
		out.Handedness = Right
	case Right:
		out.Handedness = Left
	}
	return out
}

// Translate returns a copy with every point shifted by (dx, dy, dz).
func (h Landmarks) Translate(dx, dy, dz float64) Landmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
		out.Points[i].Z += dz
	}
	return out
}
