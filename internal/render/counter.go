package render

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CounterDuration is how long the HUD score takes to roll to a new value, in seconds.
const CounterDuration = 0.4

// Counter rolls a displayed integer toward its target instead of jumping.
type Counter struct {
	tween  *gween.Tween
	shown  float32
	target int
}

// Set retargets the counter. Setting the current target is a no-op.
func (c *Counter) Set(target int) {
	if target == c.target {
		return
	}
	c.target = target
	c.tween = gween.New(c.shown, float32(target), CounterDuration, ease.OutCubic)
}

// Update advances the roll by dt seconds and returns the value to display.
func (c *Counter) Update(dt float32) int {
	if c.tween != nil {
		v, done := c.tween.Update(dt)
		c.shown = v
		if done {
			c.shown = float32(c.target)
			c.tween = nil
		}
	}
	return int(c.shown + 0.5)
}

