package app

import "time"

// Clock is the host's monotonic time source. The countdown of every play
// reads from tickers created here.
type Clock interface {
	Now() time.Time
	// NewTicker returns a channel firing every d and a func that stops it.
	NewTicker(d time.Duration) (<-chan time.Time, func())
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
