package core

import (
	"time"

	"github.com/benbjohnson/clock"
)

// sweepEvery is how many checks pass between scans for stale senders.
const sweepEvery = 256

// senderLimiter enforces a minimum spacing between accepted messages per
// display name. It is owned by the hub loop.
type senderLimiter struct {
	clock    clock.Clock
	interval time.Duration
	last     map[string]time.Time
	checks   int
}

func newSenderLimiter(clk clock.Clock, interval time.Duration) *senderLimiter {
	return &senderLimiter{
		clock:    clk,
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// allow reports whether name may send now. The timestamp is only recorded
// for accepted messages.
func (l *senderLimiter) allow(name string) bool {
	if l.interval <= 0 {
		return true
	}
	now := l.clock.Now()

	l.checks++
	if l.checks%sweepEvery == 0 {
		l.sweep(now)
	}

	if last, ok := l.last[name]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[name] = now
	return true
}

// sweep forgets senders whose last message is older than the interval.
func (l *senderLimiter) sweep(now time.Time) {
	for name, last := range l.last {
		if now.Sub(last) >= l.interval {
			delete(l.last, name)
		}
	}
}
