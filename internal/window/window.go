// Package window shows the composited frames in a desktop window and
// forwards keyboard controls to the pipeline.
package window

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Title is the window caption.
const Title = "Pinch Ball"

// Source supplies frames and accepts player commands.
type Source interface {
	// Frame returns the latest composited frame and a counter that changes
	// whenever a new frame is available. The image must not be modified.
	Frame() (*image.RGBA, uint64)
	RequestSpawn()
	TogglePause()
}

// Game adapts a Source to ebiten.Game.
type Game struct {
	src    Source
	width  int
	height int
	img    *ebiten.Image
	seq    uint64
	quit   bool
}

// New creates a window game with a width x height logical screen.
func New(src Source, width, height int) *Game {
	return &Game{src: src, width: width, height: height}
}

// Run opens the window and blocks until it closes. It must be called from
// the main goroutine.
func Run(g *Game, scale int) error {
	ebiten.SetWindowTitle(Title)
	ebiten.SetWindowSize(g.width*max(scale, 1), g.height*max(scale, 1))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Quit makes the next Update end the game loop.
func (g *Game) Quit() {
	g.quit = true
}

func (g *Game) Update() error {
	if g.quit || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.src.RequestSpawn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.src.TogglePause()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame, seq := g.src.Frame()
	if frame == nil {
		return
	}

	b := frame.Bounds()
	if g.img == nil || g.img.Bounds().Dx() != b.Dx() || g.img.Bounds().Dy() != b.Dy() {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(b.Dx(), b.Dy())
		g.seq = seq - 1
	}
	if seq != g.seq {
		g.img.WritePixels(frame.Pix)
		g.seq = seq
	}

	op := &ebiten.DrawImageOptions{}
	if b.Dx() != g.width || b.Dy() != g.height {
		op.GeoM.Scale(float64(g.width)/float64(b.Dx()), float64(g.height)/float64(b.Dy()))
	}
	screen.DrawImage(g.img, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
