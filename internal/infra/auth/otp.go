// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"backoffice/config"
	"backoffice/internal/domain/service"

	"github.com/pkg/errors"
)

// codeLength is fixed by the challenge contract: six decimal digits.
const codeLength = 6

// otpService implements service.OneTimeCodeService with crypto/rand digits.
type otpService struct {
	ttl time.Duration
}

// NewOTPService is the constructor for otpService.
func NewOTPService(cfg *config.Config) service.OneTimeCodeService {
	return &otpService{ttl: cfg.MFA.CodeTTL}
}

// Generate returns a fresh random six-digit code expiring ttl after now.
// Each digit is drawn independently from crypto/rand, so the code space
// 000000-999999 is covered uniformly.
func (s *otpService) Generate(now time.Time) (*service.CodeChallenge, error) {
	var b strings.Builder
	b.Grow(codeLength)

	ten := big.NewInt(10)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw otp digit")
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return &service.CodeChallenge{
		Code:      b.String(),
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// Validate checks the submission shape first, then equality, then freshness.
// The ordering matters: a malformed submission is rejected before expiry is
// even consulted, and an expired code fails even if it would otherwise match.
func (s *otpService) Validate(submitted, expected string, expiresAt, now time.Time) service.CodeVerdict {
	if !wellFormed(submitted) {
		return service.CodeMalformed
	}

	if submitted != expected {
		return service.CodeMismatched
	}

	if !now.Before(expiresAt) {
		return service.CodeExpired
	}

	return service.CodeValid
}

func wellFormed(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
