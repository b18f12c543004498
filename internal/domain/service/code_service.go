package service

import "time"

// CodeVerdict is the outcome of validating a submitted one-time code.
type CodeVerdict int

const (
	// CodeValid means the submission matches the outstanding code and is fresh.
	CodeValid CodeVerdict = iota
	// CodeMalformed means the submission is not exactly six decimal digits.
	// Checked before anything else, including expiry.
	CodeMalformed
	// CodeMismatched means the well-formed submission does not equal the expected code.
	CodeMismatched
	// CodeExpired means the code's validity window has passed. An expired but
	// otherwise correct code still yields this verdict.
	CodeExpired
)

// CodeChallenge is a freshly generated one-time code bound to its expiry.
type CodeChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// OneTimeCodeService produces and validates the six-digit MFA codes.
// Implementations must draw codes uniformly from a cryptographic source;
// code predictability is a direct account-takeover vector.
type OneTimeCodeService interface {
	// Generate returns a new random six-digit code expiring a fixed window after now.
	Generate(now time.Time) (*CodeChallenge, error)

	// Validate checks a submission against the expected code and its expiry.
	Validate(submitted, expected string, expiresAt, now time.Time) CodeVerdict
}
