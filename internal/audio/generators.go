package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// ChirpGenerator plays a sine that glides from one pitch to another with an
// exponential decay.
type ChirpGenerator struct {
	sr     beep.SampleRate
	from   float64
	to     float64
	length int
	decay  float64
	gain   float64
	pos    int
	phase  float64
}

// NewChirpGenerator creates a chirp lasting length samples.
func NewChirpGenerator(sr beep.SampleRate, from, to float64, length int, gain float64) *ChirpGenerator {
	return &ChirpGenerator{
		sr:     sr,
		from:   from,
		to:     to,
		length: max(length, 1),
		decay:  6,
		gain:   gain,
	}
}

func (g *ChirpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.length {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.length {
			return i, true
		}
		progress := float64(g.pos) / float64(g.length)
		freq := g.from + (g.to-g.from)*progress
		g.phase += 2 * math.Pi * freq / float64(g.sr)

		// Short attack avoids a click at the start
		attack := math.Min(float64(g.pos)/float64(g.sr)/0.005, 1.0)
		envelope := attack * math.Exp(-progress*g.decay)

		sample := g.gain * envelope * math.Sin(g.phase)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChirpGenerator) Err() error {
	return nil
}

// ThudGenerator plays a low rumble mixed with filtered noise for impacts.
type ThudGenerator struct {
	sr     beep.SampleRate
	freq   float64
	length int
	gain   float64
	pos    int
	seed   uint32
	last   float64
}

// NewThudGenerator creates a thud lasting length samples. seed makes the
// noise reproducible.
func NewThudGenerator(sr beep.SampleRate, freq float64, length int, gain float64, seed uint32) *ThudGenerator {
	return &ThudGenerator{
		sr:     sr,
		freq:   freq,
		length: max(length, 1),
		gain:   gain,
		seed:   seed | 1,
	}
}

func (g *ThudGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.length {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.length {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)
		progress := float64(g.pos) / float64(g.length)

		g.seed = g.seed*1664525 + 1013904223
		noise := float64(g.seed)/float64(math.MaxUint32)*2 - 1
		// One-pole low-pass keeps the noise dull
		g.last += 0.2 * (noise - g.last)

		envelope := math.Exp(-progress * 8)
		sample := g.gain * envelope * (0.6*math.Sin(2*math.Pi*g.freq*t) + 0.4*g.last)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ThudGenerator) Err() error {
	return nil
}
