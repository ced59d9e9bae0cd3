// Package render composites the simulation over the camera frame with GoCV:
// hand skeleton, projected balls with trails, and the HUD.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ayusman/pinchball/internal/game"
	"github.com/ayusman/pinchball/internal/skeleton"
	"github.com/tanema/gween/ease"
	"gocv.io/x/gocv"
)

// rotationTick is the length in pixels of the hand rotation marker.
const rotationTick = 30.0

// Overlay holds per-frame values drawn on the HUD beside the snapshot.
type Overlay struct {
	Paused bool
	Best   int
	FPS    float64
}

// Compositor draws snapshots onto camera frames. It keeps the HUD counter
// state between frames and is not safe for concurrent use.
type Compositor struct {
	width  int
	height int
	focal  float64
	fade   ease.TweenFunc
	score  Counter
}

// NewCompositor creates a compositor for a width x height world.
func NewCompositor(width, height int, focal float64) *Compositor {
	return &Compositor{
		width:  width,
		height: height,
		focal:  focal,
		fade:   ease.Linear,
	}
}

// Compose returns a new world-sized BGR image with snap drawn over frame.
// A nil or empty frame yields a plain background. dt is the time since the
// previous call in seconds. The caller must Close the result.
func (c *Compositor) Compose(frame *gocv.Mat, snap game.Snapshot, ov Overlay, dt float32) gocv.Mat {
	out := c.background(frame)

	if snap.Hand != nil {
		c.drawHand(&out, snap.Hand)
	}
	for i := range snap.Balls {
		c.drawBall(&out, &snap.Balls[i])
	}

	c.score.Set(snap.Score)
	c.drawHUD(&out, snap, ov, c.score.Update(dt))

	return out
}

func (c *Compositor) background(frame *gocv.Mat) gocv.Mat {
	if frame == nil || frame.Empty() {
		out := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
		out.SetTo(gocv.NewScalar(float64(ColorEmpty.B), float64(ColorEmpty.G), float64(ColorEmpty.R), 0))
		return out
	}

	out := gocv.NewMat()
	if frame.Cols() != c.width || frame.Rows() != c.height {
		gocv.Resize(*frame, &out, image.Point{X: c.width, Y: c.height}, 0, 0, gocv.InterpolationLinear)
	} else {
		frame.CopyTo(&out)
	}
	return out
}

func (c *Compositor) drawHand(img *gocv.Mat, h *game.HandView) {
	for _, b := range skeleton.Bones {
		p1, p2 := h.Joints[b.A], h.Joints[b.B]
		gocv.Line(img, p1.Pt(), p2.Pt(), ColorBone, 2)
	}
	for _, j := range h.Joints {
		gocv.Circle(img, j.Pt(), 3, ColorJoint, -1)
	}
	if h.Pinching {
		gocv.Circle(img, h.PinchPoint.Pt(), 8, ColorHeld, 2)
	}

	// Center marker with a tick pointing along the hand rotation.
	center := h.Center.Pt()
	rad := h.Rotation * math.Pi / 180
	tip := image.Point{
		X: center.X + int(rotationTick*math.Cos(rad)),
		Y: center.Y + int(rotationTick*math.Sin(rad)),
	}
	gocv.Circle(img, center, 5, ColorHint, 1)
	gocv.Line(img, center, tip, ColorHint, 1)
}

func (c *Compositor) drawBall(img *gocv.Mat, b *game.BallView) {
	base := StateColor(b.State)

	n := len(b.Trail)
	for i := 0; i+1 < n; i++ {
		alpha := TrailAlpha(c.fade, i, n)
		thick := max(1, int(b.Radius*alpha*0.5))
		p1, p2 := b.Trail[i], b.Trail[i+1]
		gocv.Line(img, p1.Pt(), p2.Pt(), Shade(base, alpha), thick)
	}

	center := b.Screen.Pt()
	r := int(b.Radius + 0.5)
	gocv.Circle(img, center, r, Shade(base, DepthBrightness(b.Depth, c.focal)), -1)
	gocv.Circle(img, center, r, ColorOutline, 2)
}

// hudLine is one line of the left HUD column.
type hudLine struct {
	text  string
	y     int
	scale float64
	color color.RGBA
	thick int
}

// hudLines lays out the left HUD column for snap. score is the rolling
// counter value.
func hudLines(snap game.Snapshot, ov Overlay, score int) []hudLine {
	status, statusColor := "Open", ColorText
	if snap.Pinching {
		status, statusColor = "Pinch", ColorHeld
	}
	if snap.Hand == nil {
		status = "No hand"
	}

	lines := []hudLine{
		{fmt.Sprintf("Score: %d", score), 40, 1.0, ColorText, 2},
		{fmt.Sprintf("Best: %d", max(ov.Best, snap.Score)), 70, 0.6, ColorText, 1},
		{fmt.Sprintf("Balls: %d", snap.BallCount), 95, 0.6, ColorText, 1},
		{"State: " + status, 120, 0.6, statusColor, 1},
	}
	if h := snap.Hand; h != nil {
		lines = append(lines,
			hudLine{fmt.Sprintf("%s hand, %s", snap.Handedness, snap.Posture), 145, 0.5, ColorHint, 1},
			hudLine{fmt.Sprintf("Fingers: %d, rotation %.0f deg", h.Fingers(), h.Rotation), 170, 0.5, ColorHint, 1},
		)
	}
	return lines
}

func (c *Compositor) drawHUD(img *gocv.Mat, snap game.Snapshot, ov Overlay, score int) {
	for _, l := range hudLines(snap, ov, score) {
		text(img, l.text, 20, l.y, l.scale, l.color, l.thick)
	}
	if ov.FPS > 0 {
		text(img, fmt.Sprintf("FPS: %.0f", ov.FPS), c.width-110, 30, 0.6, ColorJoint, 1)
	}
	if ov.Paused {
		text(img, "PAUSED", c.width/2-60, c.height/2, 1.2, ColorHeld, 2)
	}

	hint := "Pinch to grab, release to throw"
	if snap.Mode == "follow" {
		hint = "Move your palm to carry and fling"
	}
	text(img, hint, 20, c.height-20, 0.5, ColorHint, 1)
}

func text(img *gocv.Mat, s string, x, y int, scale float64, col color.RGBA, thick int) {
	gocv.PutText(img, s, image.Point{X: x, Y: y}, gocv.FontHersheySimplex, scale, col, thick)
}
