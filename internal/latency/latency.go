// Package latency simulates network round-trip delay for the in-memory stores.
package latency

import (
	"context"
	"math/rand/v2"
	"time"
)

// Simulator sleeps for a random duration in [Min, Max] before a store
// operation. The zero value never sleeps.
type Simulator struct {
	Min time.Duration
	Max time.Duration
}

// None returns a simulator that never sleeps. Used in tests.
func None() Simulator {
	return Simulator{}
}

// New returns a simulator for the given millisecond window. A max below min
// is raised to min.
func New(minMS, maxMS int) Simulator {
	if minMS < 0 {
		minMS = 0
	}
	if maxMS < minMS {
		maxMS = minMS
	}
	return Simulator{
		Min: time.Duration(minMS) * time.Millisecond,
		Max: time.Duration(maxMS) * time.Millisecond,
	}
}

// Duration picks the delay for one call.
func (s Simulator) Duration() time.Duration {
	if s.Max <= 0 {
		return 0
	}
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + rand.N(s.Max-s.Min+1)
}

// Wait blocks for one simulated round trip. It returns ctx.Err() if the
// context ends first.
func (s Simulator) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := s.Duration()
	if d == 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
