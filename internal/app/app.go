// Package app wires the camera, hand detector, simulation, audio and
// compositor together and runs the frame pipeline.
package app

import (
	"fmt"
	"image"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/pinchball/internal/audio"
	"github.com/ayusman/pinchball/internal/capture"
	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/detector"
	"github.com/ayusman/pinchball/internal/game"
	"github.com/ayusman/pinchball/internal/interaction"
	"github.com/ayusman/pinchball/internal/plugin"
	"github.com/ayusman/pinchball/internal/render"
	"github.com/ayusman/pinchball/internal/store"
)

const (
	// SpawnQueueSize bounds pending manual spawn requests.
	SpawnQueueSize = 16
	// FlushInterval is how many ticks pass between session record updates.
	FlushInterval = 300
	// ReadErrorLogEvery throttles logging of consecutive camera failures.
	ReadErrorLogEvery = 300
	// HookWorkers is the number of concurrent event hook runs.
	HookWorkers = 2
)

// Options holds the collaborators of an App. Nil fields get defaults: a
// camera built from Config, MediaPipe falling back to the mock detector,
// and a randomly seeded source.
type Options struct {
	Config   config.Config
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector
	Rand     *rand.Rand
}

// App owns the pipeline goroutine. The world, compositor and session record
// are touched only from that goroutine; everything published to readers is
// guarded by mu.
type App struct {
	store      *store.Store
	camera     capture.Camera
	gate       *capture.MotionGate
	detector   detector.Detector
	world      *game.World
	compositor *render.Compositor
	sound      *audio.SoundManager
	hooks      *plugin.Manager
	dispatcher *plugin.Dispatcher

	spawnCh chan struct{}

	// Pipeline-owned state.
	record       *store.Session
	pending      []store.EventRecord
	handSeen     bool
	readFailures int
	lastTick     time.Time
	fps          float64

	mu       sync.RWMutex
	cfg      config.Config
	dirty    bool
	paused   bool
	best     int
	snapshot game.Snapshot
	jpeg     []byte
	rgba     *image.RGBA
	seq      uint64
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates an App. Persisted settings from the store override cfg.
func New(opts Options) *App {
	cfg := opts.Config

	if opts.Store != nil {
		if saved, err := opts.Store.Settings().All(); err != nil {
			log.Printf("Failed to load settings: %v", err)
		} else if err := cfg.Apply(saved); err != nil {
			log.Printf("Ignoring stored settings: %v", err)
		}
	}

	a := &App{
		store:    opts.Store,
		camera:   opts.Camera,
		detector: opts.Detector,
		gate:     capture.NewMotionGate(cfg.MotionThreshold, capture.DefaultMaxSkip),
		sound:    audio.NewSoundManager(),
		hooks:    plugin.NewManager(cfg.PluginDir),
		spawnCh:  make(chan struct{}, SpawnQueueSize),
		cfg:      cfg,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Config{
			DeviceID: cfg.CameraID,
			Width:    cfg.Width,
			Height:   cfg.Height,
			FPS:      cfg.FPS,
			Mirror:   cfg.Mirror,
		})
	}

	if a.detector == nil {
		dcfg := detector.DefaultConfig()
		dcfg.MinConfidence = cfg.MinConfidence
		if mp, err := detector.NewMediaPipeDetector(dcfg); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	wcfg := game.DefaultConfig()
	wcfg.Width = float64(cfg.Width)
	wcfg.Height = float64(cfg.Height)
	session := interaction.NewSession(cfg.Tuning, cfg.Mode)
	a.world = game.New(wcfg, session, opts.Rand)
	a.world.Seed(wcfg.InitialBalls)
	a.compositor = render.NewCompositor(cfg.Width, cfg.Height, wcfg.Focal)
	a.snapshot = a.world.Snapshot()

	if opts.Store != nil {
		if best, err := opts.Store.Sessions().BestScore(); err == nil {
			a.best = best
		}
	}

	if cfg.PluginDir != "" {
		n, err := a.hooks.Discover()
		if err != nil {
			log.Printf("Failed to discover event hooks: %v", err)
		} else if n > 0 {
			log.Printf("Loaded %d event hooks from %s", n, cfg.PluginDir)
		}
	}

	return a
}

// Start opens the camera and audio and launches the pipeline. Calling it
// while running is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.cfg.FPS)

	a.sound.SetVolume(a.cfg.Volume)
	if a.cfg.Audio {
		if err := a.sound.Initialize(); err != nil {
			log.Printf("Audio disabled: %v", err)
		}
	}

	a.openRecord()
	a.dispatcher = plugin.NewDispatcher(a.hooks, plugin.NewExecutor(plugin.DefaultTimeout), HookWorkers)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh, a.cfg.FPS)

	log.Println("Pipeline started")
	return nil
}

// Stop halts the pipeline, closes the session record and releases devices.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	a.closeRecord()
	a.dispatcher.Close()
	a.dispatcher = nil

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.gate.Close()
	if err := a.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	a.sound.Cleanup()

	log.Println("Pipeline stopped")
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SetPaused freezes or resumes the simulation. The camera keeps streaming.
func (a *App) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.paused != paused {
		log.Printf("Paused: %v", paused)
	}
	a.paused = paused
}

// Paused reports whether the simulation is frozen.
func (a *App) Paused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paused
}

// TogglePause flips the paused state.
func (a *App) TogglePause() {
	a.SetPaused(!a.Paused())
}

// RequestSpawn queues a ball to be spawned on the next tick. Requests
// beyond the queue size are dropped.
func (a *App) RequestSpawn() {
	select {
	case a.spawnCh <- struct{}{}:
	default:
	}
}

// Snapshot returns the state published by the latest tick.
func (a *App) Snapshot() game.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// JPEG returns the latest composited frame encoded as JPEG and its frame
// sequence number. The bytes must not be modified.
func (a *App) JPEG() ([]byte, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg, a.seq
}

// Frame returns the latest composited frame as RGBA and its sequence
// number. The image must not be modified.
func (a *App) Frame() (*image.RGBA, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rgba, a.seq
}

// Best returns the best score across stored sessions and the current run.
func (a *App) Best() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return max(a.best, a.snapshot.Score)
}

// Settings returns the tunable options currently in effect.
func (a *App) Settings() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Settings()
}

// ApplySettings validates values and applies them on the next tick. Only
// tunable keys are accepted. Nothing is applied when any value is invalid.
func (a *App) ApplySettings(values map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for k := range values {
		if !config.IsTunable(k) {
			return fmt.Errorf("%w: %q is not tunable", config.ErrInvalid, k)
		}
	}

	next := a.cfg
	if err := next.Apply(values); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	a.cfg = next
	a.dirty = true
	return nil
}

// World returns the simulation. It must only be used while the pipeline is
// stopped.
func (a *App) World() *game.World {
	return a.world
}
