package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// NewBrain creates a new AI brain for the named strategy.
func NewBrain(strategy string, rng *rand.Rand) (Brain, error) {
	switch strategy {
	case "wanderer":
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &Wanderer{rng: rng}, nil
	case "", "hunter":
		return &Hunter{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %q", strategy)
	}
}
