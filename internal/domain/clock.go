package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// The lookback cutoff ("now minus N days") is the only wall-clock read in
// this package.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// LookbackCutoff returns the start of the lookback window: midnight in the
// reference zone, days before now. Day-level granularity matches how the
// archive is filtered upstream.
func LookbackCutoff(days int) time.Time {
	now := clock.Now().In(referenceZone)
	return FloorDay(now.AddDate(0, 0, -days))
}
