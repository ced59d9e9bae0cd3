package ball

import "gonum.org/v1/gonum/spatial/r3"

// DefaultTrailCapacity is the number of past positions kept per ball.
const DefaultTrailCapacity = 15

// Trail is a fixed-capacity ring buffer of past positions.
// Once full, each push evicts the oldest entry.
type Trail struct {
	data []r3.Vec
	pos  int
	full bool
}

// NewTrail creates a Trail holding at most capacity positions.
// A non-positive capacity falls back to DefaultTrailCapacity.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultTrailCapacity
	}
	return &Trail{data: make([]r3.Vec, capacity)}
}

// Push appends a position, evicting the oldest when full.
func (t *Trail) Push(p r3.Vec) {
	t.data[t.pos] = p
	t.pos++
	if t.pos >= len(t.data) {
		t.pos = 0
		t.full = true
	}
}

// Len returns the number of stored positions.
func (t *Trail) Len() int {
	if t.full {
		return len(t.data)
	}
	return t.pos
}

// Cap returns the trail capacity.
func (t *Trail) Cap() int {
	return len(t.data)
}

// Points returns the stored positions, oldest first.
func (t *Trail) Points() []r3.Vec {
	n := t.Len()
	out := make([]r3.Vec, n)
	if t.full {
		copy(out, t.data[t.pos:])
		copy(out[len(t.data)-t.pos:], t.data[:t.pos])
	} else {
		copy(out, t.data[:t.pos])
	}
	return out
}
