package session

import "time"

// Remaining returns how much of the answer window is left at the given
// instant, clamped at zero. The countdown is derived fresh on every
// render; there is no background ticker and reaching zero never blocks
// submission.
func Remaining(start time.Time, duration time.Duration, now time.Time) time.Duration {
	left := duration - now.Sub(start)
	if left < 0 {
		return 0
	}
	return left
}
