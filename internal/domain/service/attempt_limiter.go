package service

import "time"

// AttemptDecision is the result of recording one verification attempt.
type AttemptDecision struct {
	// Allowed is false when the identifier has exhausted its attempt budget
	// for the current window.
	Allowed bool

	// RetryAfter is the remaining cooldown when Allowed is false.
	RetryAfter time.Duration
}

// AttemptLimiter tracks verification attempts per principal identifier over a
// sliding timeout window. Counters are process-local and not persisted; a
// process restart resets all limits, which is a documented limitation of this
// component rather than a bug.
type AttemptLimiter interface {
	// CheckAndRecord unconditionally counts one attempt for the identifier and
	// reports whether it may proceed. Attempts, not failures: even allowed
	// calls consume budget, matching the cost of a verification round-trip.
	CheckAndRecord(identifier string) AttemptDecision

	// Clear drops the identifier's counter. Called by the verification flow on
	// success; the limiter never clears on its own within a live window.
	Clear(identifier string)
}
