package projection

import (
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

func TestProject(t *testing.T) {
	center := Point{X: 320, Y: 240}

	tests := []struct {
		name      string
		point     r3.Vec
		wantOK    bool
		wantX     float64
		wantY     float64
		wantScale float64
	}{
		{
			name:      "point on the screen plane keeps its position",
			point:     r3.Vec{X: 100, Y: 50, Z: 0},
			wantOK:    true,
			wantX:     100,
			wantY:     50,
			wantScale: 1,
		},
		{
			name:      "farther point shrinks toward center",
			point:     r3.Vec{X: 420, Y: 340, Z: 500},
			wantOK:    true,
			wantX:     370,
			wantY:     290,
			wantScale: 0.5,
		},
		{
			name:      "nearer point grows away from center",
			point:     r3.Vec{X: 420, Y: 240, Z: -250},
			wantOK:    true,
			wantX:     520,
			wantY:     240,
			wantScale: 2,
		},
		{
			name:   "point on camera plane is not projected",
			point:  r3.Vec{X: 0, Y: 0, Z: -500},
			wantOK: false,
		},
		{
			name:   "point behind camera is not projected",
			point:  r3.Vec{X: 0, Y: 0, Z: -900},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Project(tt.point, DefaultFocalLength, center)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(got.X-tt.wantX) > epsilon {
				t.Errorf("X = %f, want %f", got.X, tt.wantX)
			}
			if math.Abs(got.Y-tt.wantY) > epsilon {
				t.Errorf("Y = %f, want %f", got.Y, tt.wantY)
			}
			if math.Abs(got.Scale-tt.wantScale) > epsilon {
				t.Errorf("Scale = %f, want %f", got.Scale, tt.wantScale)
			}
		})
	}
}

func TestProject_DepthOrdering(t *testing.T) {
	center := Point{X: 400, Y: 300}
	depths := []float64{-350, -100, 0, 120, 400, 800}

	prev := math.Inf(1)
	for _, z := range depths {
		p, ok := Project(r3.Vec{X: 10, Y: 10, Z: z}, DefaultFocalLength, center)
		if !ok {
			t.Fatalf("z=%f: expected projection", z)
		}
		if p.Scale >= prev {
			t.Errorf("z=%f: scale %f should be smaller than nearer point's %f", z, p.Scale, prev)
		}
		prev = p.Scale
	}
}

func TestProjection_Visible(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		radius float64
		want   bool
	}{
		{"full size", 1, 20, true},
		{"rounds up to one", 0.03, 20, true},
		{"rounds down to zero", 0.02, 20, false},
		{"tiny radius", 1, 0.4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Projection{Scale: tt.scale}
			if got := p.Visible(tt.radius); got != tt.want {
				t.Errorf("Visible(%f) at scale %f = %v, want %v", tt.radius, tt.scale, got, tt.want)
			}
		})
	}
}

func TestPoint_Pt(t *testing.T) {
	tests := []struct {
		p    Point
		want image.Point
	}{
		{Point{X: 320.9, Y: 240.2}, image.Point{X: 320, Y: 240}},
		{Point{X: -3.7, Y: 0}, image.Point{X: -3, Y: 0}},
	}
	for _, tt := range tests {
		if got := tt.p.Pt(); got != tt.want {
			t.Errorf("%+v.Pt() = %v, want %v", tt.p, got, tt.want)
		}
	}
}
