// Package tray provides the system tray menu: pause/resume, manual spawn,
// the live score and quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onPause func(paused bool)
	onSpawn func()
	onOpen  func()
	onQuit  func()
	paused  bool
	score   int
	best    int
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuPause *systray.MenuItem
	menuScore *systray.MenuItem
}

// New creates a new Tray in the running state.
func New() *Tray {
	return &Tray{}
}

// OnPause sets the callback invoked with the new state when pause is toggled.
func (t *Tray) OnPause(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnSpawn sets the callback invoked when the spawn item is clicked.
func (t *Tray) OnSpawn(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSpawn = fn
}

// OnOpen sets the callback invoked when the open stream item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Pinch Ball")
	systray.SetTooltip("Pinch Ball AR playground")

	t.mu.Lock()
	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Pause or resume the simulation")
	t.menuScore = systray.AddMenuItem(scoreTitle(t.score, t.best), "Current and best score")
	t.menuScore.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSpawn := systray.AddMenuItem("Spawn Ball", "Drop a new ball")
	menuOpen := systray.AddMenuItem("Open Stream...", "Open the AR stream in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Pinch Ball")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuSpawn.ClickedCh:
				t.handleSpawn()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handlePause flips the paused state and notifies the callback.
func (t *Tray) handlePause() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
	callback := t.onPause
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleSpawn() {
	t.mu.RLock()
	callback := t.onSpawn
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetPaused syncs the menu with a pause made elsewhere.
func (t *Tray) SetPaused(paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
}

// SetScore updates the score line when it changed.
func (t *Tray) SetScore(score, best int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if score == t.score && best == t.best {
		return
	}
	t.score, t.best = score, best
	if t.menuScore != nil {
		t.menuScore.SetTitle(scoreTitle(score, best))
	}
}

// IsPaused returns the current paused state.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

func pauseTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Running"
}

func scoreTitle(score, best int) string {
	return fmt.Sprintf("Score: %d (best %d)", score, best)
}
