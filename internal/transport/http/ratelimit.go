package http

import (
	"time"

	"github.com/benbjohnson/clock"
)

// frameLimiter caps inbound frames per connection in fixed one-minute
// windows. It is used by a single read loop and is not safe for concurrent use.
type frameLimiter struct {
	clock   clock.Clock
	limit   int
	counter int
	window  time.Time
}

func newFrameLimiter(clk clock.Clock, limit int) *frameLimiter {
	return &frameLimiter{
		clock:  clk,
		limit:  limit,
		window: clk.Now(),
	}
}

func (r *frameLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	if now := r.clock.Now(); now.Sub(r.window) >= time.Minute {
		r.window = now
		r.counter = 0
	}
	r.counter++
	return r.counter <= r.limit
}
