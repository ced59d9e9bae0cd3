package interaction

import "fmt"

// Tuning holds the hand interaction constants, in simulation units per tick.
type Tuning struct {
	PinchThreshold float64 // thumb-index distance below which the hand pinches
	CatchDistance  float64 // pinch point to ball center distance for a grab
	ThrowPower     float64 // multiplier on pinch and bone velocity
	GrabBonus      int
	HitScore       int
	MinImpact      float64 // bone speed above which contact becomes a hit
	ImpulseFactor  float64 // share of the normal impact speed added as push
	ContactDamping float64 // velocity multiplier on slow contact

	// Follow mode.
	FollowThrowPower float64
	FollowMinSpeed   float64
	FollowDamping    float64
}

// DefaultTuning returns the standard interaction constants.
func DefaultTuning() Tuning {
	return Tuning{
		PinchThreshold: 35,
		CatchDistance:  50,
		ThrowPower:     1.2,
		GrabBonus:      5,
		HitScore:       10,
		MinImpact:      5,
		ImpulseFactor:  0.8,
		ContactDamping: -0.3,

		FollowThrowPower: 0.3,
		FollowMinSpeed:   2,
		FollowDamping:    0.9,
	}
}

// Mode selects the interaction model.
type Mode uint8

const (
	// ModePinch grabs with a pinch, throws on release and bats balls with
	// the hand skeleton.
	ModePinch Mode = iota
	// ModeFollow drags balls near the palm and throws them when the palm
	// moves fast.
	ModeFollow
)

// String returns the config name of the mode.
func (m Mode) String() string {
	if m == ModeFollow {
		return "follow"
	}
	return "pinch"
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "pinch":
		return ModePinch, nil
	case "follow":
		return ModeFollow, nil
	}
	return ModePinch, fmt.Errorf("unknown interaction mode %q", s)
}
