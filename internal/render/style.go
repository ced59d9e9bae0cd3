package render

import (
	"image/color"

	"github.com/ayusman/pinchball/internal/ball"
	"github.com/tanema/gween/ease"
)

// Palette
var (
	ColorFree    = color.RGBA{R: 255, G: 100, B: 100, A: 255}
	ColorHeld    = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	ColorThrown  = color.RGBA{R: 100, G: 255, B: 100, A: 255}
	ColorOutline = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorBone    = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	ColorJoint   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	ColorText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorHint    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	ColorEmpty   = color.RGBA{R: 50, G: 30, B: 30, A: 255}
)

// StateColor maps a ball state to its display color.
func StateColor(s ball.State) color.RGBA {
	switch s {
	case ball.Held:
		return ColorHeld
	case ball.Thrown:
		return ColorThrown
	default:
		return ColorFree
	}
}

// Shade scales the color channels of c by f in [0, 1], keeping alpha.
func Shade(c color.RGBA, f float64) color.RGBA {
	f = max(0, min(1, f))
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// DepthBrightness dims balls linearly with depth, reaching black at twice
// the focal length.
func DepthBrightness(z, focal float64) float64 {
	return max(0, min(1, 1-z/(focal*2)))
}

// maxTrailAlpha is the brightness of the newest trail segment.
const maxTrailAlpha = 0.8

// TrailAlpha returns the brightness of trail segment i of n, oldest first,
// following fade from 0 toward maxTrailAlpha.
func TrailAlpha(fade ease.TweenFunc, i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(fade(float32(i), 0, maxTrailAlpha, float32(n)))
}
