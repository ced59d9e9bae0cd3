package window

import (
	"image"
	"testing"
)

type stubSource struct {
	frame  *image.RGBA
	seq    uint64
	spawns int
	pauses int
}

func (s *stubSource) Frame() (*image.RGBA, uint64) { return s.frame, s.seq }
func (s *stubSource) RequestSpawn()                 { s.spawns++ }
func (s *stubSource) TogglePause()                  { s.pauses++ }

func TestGame_Layout(t *testing.T) {
	g := New(&stubSource{}, 640, 480)

	for _, size := range [][2]int{{640, 480}, {1280, 960}, {300, 200}} {
		w, h := g.Layout(size[0], size[1])
		if w != 640 || h != 480 {
			t.Errorf("Layout(%v) = %dx%d, want 640x480", size, w, h)
		}
	}
}

func TestGame_DrawWithoutFrame(t *testing.T) {
	g := New(&stubSource{}, 640, 480)

	// No frame yet: Draw must return before touching the screen.
	g.Draw(nil)
	if g.img != nil {
		t.Error("image allocated without a frame")
	}
}

func TestGame_QuitTerminates(t *testing.T) {
	g := New(&stubSource{}, 640, 480)
	g.Quit()

	if err := g.Update(); err == nil {
		t.Error("Update() after Quit() = nil, want termination")
	}
}
