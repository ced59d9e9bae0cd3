// Package projection maps simulation-space points onto the screen with a
// pinhole perspective model.
package projection

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultFocalLength is the virtual camera focal length in simulation units.
const DefaultFocalLength = 500.0

// Point is a 2D screen-space position.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Projection is the screen-space result of projecting a 3D point.
type Projection struct {
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Scale float64 `json:"scale" msgpack:"scale"`
}

// Project maps p onto the screen plane around center.
// It returns false when p lies on or behind the camera plane (scale <= 0);
// callers must skip drawing in that case.
func Project(p r3.Vec, focal float64, center Point) (Projection, bool) {
	denom := focal + p.Z
	if denom == 0 {
		return Projection{}, false
	}
	scale := focal / denom
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return Projection{}, false
	}

	return Projection{
		X:     (p.X-center.X)*scale + center.X,
		Y:     (p.Y-center.Y)*scale + center.Y,
		Scale: scale,
	}, true
}

// Radius returns the apparent on-screen radius of a sphere of radius r.
func (p Projection) Radius(r float64) float64 {
	return r * p.Scale
}

// Visible reports whether a sphere of radius r is large enough to draw.
func (p Projection) Visible(r float64) bool {
	return math.Round(p.Radius(r)) >= 1
}

// Pt returns the integer pixel position, truncated toward zero.
func (p Point) Pt() image.Point {
	return image.Point{X: int(p.X), Y: int(p.Y)}
}
