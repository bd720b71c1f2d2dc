package ratelimit

import "time"

// RejectionMessage is the body text returned to callers that exceed the limit.
const RejectionMessage = "Too many requests. Please try again later."

// Decision is the outcome of one limiter call for one identity.
type Decision struct {
	Allowed    bool
	Identity   string
	Count      int64
	Limit      int
	Remaining  int
	Reset      time.Time
	FailedOpen bool
}

// RetryAfter returns the whole seconds until the window resets, never below 1.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.Reset.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
