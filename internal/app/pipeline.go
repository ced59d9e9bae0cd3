package app

import (
	"log"
	"time"

	"github.com/ayusman/pinchball/internal/detector"
	"github.com/ayusman/pinchball/internal/event"
	"github.com/ayusman/pinchball/internal/game"
	"github.com/ayusman/pinchball/internal/render"
	"github.com/ayusman/pinchball/internal/skeleton"
	"github.com/ayusman/pinchball/internal/store"
	"gocv.io/x/gocv"
)

// runPipeline drives one tick per frame interval until stopCh closes.
//
// Each tick:
// 1. Apply pending settings and spawn requests
// 2. Read a camera frame (a failed read runs the tick with no hand)
// 3. Run hand detection unless the motion gate skips the frame
// 4. Advance the world and play the event cues
// 5. Composite the frame and publish the snapshot, JPEG and RGBA image
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}, fps int) {
	defer close(doneCh)

	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	a.lastTick = time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			a.step(now)
		}
	}
}

// step runs a single pipeline tick.
func (a *App) step(now time.Time) {
	dt := now.Sub(a.lastTick).Seconds()
	a.lastTick = now
	if dt > 0 {
		a.fps = 0.9*a.fps + 0.1/dt
	}

	a.mu.Lock()
	cfg, dirty, paused := a.cfg, a.dirty, a.paused
	a.dirty = false
	a.mu.Unlock()

	if dirty {
		s := a.world.Session()
		s.Tuning = cfg.Tuning
		s.SetMode(cfg.Mode, a.world)
		a.gate.SetThreshold(cfg.MotionThreshold)
		a.sound.SetEnabled(cfg.Audio)
		a.sound.SetVolume(cfg.Volume)
		log.Printf("Settings applied: mode=%s throw_power=%g volume=%g", cfg.Mode, cfg.Tuning.ThrowPower, cfg.Volume)
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		if a.readFailures%ReadErrorLogEvery == 0 {
			log.Printf("Error reading frame (%d in a row): %v", a.readFailures+1, err)
		}
		a.readFailures++
		frame = nil
	} else {
		a.readFailures = 0
		defer frame.Close()
	}

	if !paused {
		var evs []event.Event
		evs = append(evs, a.drainSpawns()...)
		evs = append(evs, a.world.Tick(a.track(frame, cfg.MinConfidence))...)
		a.handle(evs)
	}

	snap := a.world.Snapshot()

	a.mu.RLock()
	best := max(a.best, snap.Score)
	a.mu.RUnlock()

	out := a.compositor.Compose(frame, snap, render.Overlay{Paused: paused, Best: best, FPS: a.fps}, float32(dt))
	defer out.Close()

	a.publish(snap, out)

	if !paused && a.world.Ticks()%FlushInterval == 0 {
		a.flushRecord(nil)
	}
}

// track returns the skeleton of the primary hand in frame, or nil.
func (a *App) track(frame *gocv.Mat, minConfidence float64) *skeleton.Skeleton {
	if frame == nil || !a.gate.Allow(frame, a.handSeen) {
		a.handSeen = false
		return nil
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		a.handSeen = false
		return nil
	}

	cfg := a.world.Config()
	sk := skeleton.FromLandmarks(detector.Primary(hands, minConfidence), cfg.Width, cfg.Height)
	a.handSeen = sk != nil
	return sk
}

// drainSpawns spawns one ball per queued request.
func (a *App) drainSpawns() []event.Event {
	var evs []event.Event
	for {
		select {
		case <-a.spawnCh:
			b := a.world.Spawn(nil)
			evs = append(evs, event.Event{Kind: event.Spawn, BallID: b.ID})
		default:
			return evs
		}
	}
}

// handle plays cues for evs, queues the scoring ones for the session
// record and hands all of them to the event hooks.
func (a *App) handle(evs []event.Event) {
	if len(evs) == 0 {
		return
	}
	a.sound.Play(evs)

	tick := a.world.Ticks()
	for _, e := range evs {
		switch e.Kind {
		case event.Grab, event.Throw, event.Hit, event.Drop:
			a.pending = append(a.pending, store.EventRecord{
				Tick:   tick,
				Kind:   e.Kind.String(),
				BallID: e.BallID,
				Score:  e.Score,
			})
		}
		switch e.Kind {
		case event.Grab, event.Throw, event.Drop:
			log.Printf("Ball %d: %s", e.BallID, e.Kind)
		}
	}

	if a.dispatcher != nil {
		var sessionID string
		if a.record != nil {
			sessionID = a.record.ID
		}
		a.dispatcher.Notify(evs, tick, a.world.Session().Score, sessionID)
	}
}

// publish encodes out and stores it with snap for readers. Encoding
// failures keep the previous frame.
func (a *App) publish(snap game.Snapshot, out gocv.Mat) {
	jpeg, err := render.EncodeJPEG(out, render.DefaultJPEGQuality)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
	}
	rgba, err := render.ToRGBA(out)
	if err != nil {
		log.Printf("Error converting frame: %v", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot = snap
	if jpeg != nil {
		a.jpeg = jpeg
	}
	if rgba != nil {
		a.rgba = rgba
	}
	a.seq++
}
