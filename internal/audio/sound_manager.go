// Package audio plays short synthesized cues for simulation events.
// Audio is optional: every method is safe to call when the speaker could
// not be opened.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/pinchball/internal/event"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	// MaxVoices bounds how many cues are mixed at once. Cues beyond it in a
	// single batch are dropped.
	MaxVoices = 6
)

// Cue describes the sound played for one event kind.
type Cue struct {
	From     float64 // start pitch in Hz
	To       float64 // end pitch in Hz
	Duration time.Duration
	Thud     bool // low rumble instead of a chirp
	Gain     float64
}

// Cues maps event kinds to sounds. Kinds without an entry are silent.
var Cues = map[event.Kind]Cue{
	event.Grab:   {From: 520, To: 880, Duration: 90 * time.Millisecond, Gain: 0.25},
	event.Throw:  {From: 900, To: 300, Duration: 160 * time.Millisecond, Gain: 0.25},
	event.Hit:    {From: 140, Duration: 120 * time.Millisecond, Thud: true, Gain: 0.4},
	event.Bounce: {From: 90, Duration: 60 * time.Millisecond, Thud: true, Gain: 0.15},
	event.Drop:   {From: 400, To: 180, Duration: 220 * time.Millisecond, Gain: 0.2},
	event.Spawn:  {From: 1200, To: 1500, Duration: 50 * time.Millisecond, Gain: 0.1},
}

// SoundManager mixes event cues onto the speaker.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      *effects.Volume
	initialized bool
	enabled     bool
	seed        uint32
}

// NewSoundManager creates a sound manager. It does not touch the audio
// device until Initialize.
func NewSoundManager() *SoundManager {
	mixer := &beep.Mixer{}
	return &SoundManager{
		mixer:   mixer,
		volume:  &effects.Volume{Streamer: mixer, Base: 2},
		enabled: true,
		seed:    1,
	}
}

// Initialize opens the speaker. Calling it again is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(sm.volume)
	sm.initialized = true
	return nil
}

// SetEnabled mutes or unmutes all cues.
func (sm *SoundManager) SetEnabled(on bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = on
}

// SetVolume sets the master volume in [0, 1].
func (sm *SoundManager) SetVolume(v float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	if v <= 0 {
		sm.volume.Silent = true
		return
	}
	sm.volume.Silent = false
	sm.volume.Volume = math.Log2(math.Min(v, 1))
}

// Play queues the cues for events. It never blocks on the device.
func (sm *SoundManager) Play(events []event.Event) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || !sm.enabled {
		return 0
	}

	streams := sm.streams(events)
	if len(streams) == 0 {
		return 0
	}

	speaker.Lock()
	sm.mixer.Add(streams...)
	speaker.Unlock()
	return len(streams)
}

// streams builds one streamer per audible event, at most one per kind and
// at most MaxVoices in total.
func (sm *SoundManager) streams(events []event.Event) []beep.Streamer {
	var out []beep.Streamer
	seen := make(map[event.Kind]bool)
	for _, e := range events {
		cue, ok := Cues[e.Kind]
		if !ok || seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		sm.seed = sm.seed*1664525 + 1013904223
		out = append(out, NewCueStreamer(cue, sm.seed))
		if len(out) == MaxVoices {
			break
		}
	}
	return out
}

// NewCueStreamer renders a cue as a finite streamer.
func NewCueStreamer(c Cue, seed uint32) beep.Streamer {
	n := sampleRate.N(c.Duration)
	if c.Thud {
		return beep.Take(n, NewThudGenerator(sampleRate, c.From, n, c.Gain, seed))
	}
	to := c.To
	if to == 0 {
		to = c.From
	}
	return beep.Take(n, NewChirpGenerator(sampleRate, c.From, to, n, c.Gain))
}

// Cleanup stops all sounds and closes the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	sm.initialized = false
}
