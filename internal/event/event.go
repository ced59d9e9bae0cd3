// Package event defines the notifications the simulation emits each tick.
package event

// Kind identifies what happened.
type Kind uint8

const (
	Grab   Kind = iota + 1 // pinch captured a ball
	Throw                  // un-pinch released a held ball with the pinch velocity
	Drop                   // hand vanished while holding a ball
	Hit                    // hand bone struck a ball
	Bounce                 // ball hit a wall
	Spawn                  // ball created
	Cull                   // ball left the world margin
	Evict                  // ball removed by the population cap
)

var kindNames = map[Kind]string{
	Grab:   "grab",
	Throw:  "throw",
	Drop:   "drop",
	Hit:    "hit",
	Bounce: "bounce",
	Spawn:  "spawn",
	Cull:   "cull",
	Evict:  "evict",
}

// String returns the lowercase event name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a single notification. Score is the points awarded, if any.
type Event struct {
	Kind   Kind   `json:"kind" msgpack:"kind"`
	BallID uint64 `json:"ball_id" msgpack:"ball_id"`
	Score  int    `json:"score,omitempty" msgpack:"score,omitempty"`
}
