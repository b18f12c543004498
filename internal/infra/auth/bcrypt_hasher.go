// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"unicode"

	"backoffice/config"
	domainerrors "backoffice/internal/domain/errors"
	"backoffice/internal/domain/service"

	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
//
// It also carries the temporary migration shim for rows imported from the
// legacy system, where the stored value may still be plaintext. Every pass
// through that shim logs a warning so it can be monitored to zero and removed.
type bcryptHasher struct {
	cost     int
	strength *config.PasswordStrengthConfig
	logger   *slog.Logger
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config, logger *slog.Logger) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	return &bcryptHasher{
		cost:     cost,
		strength: cfg.PasswordStrength,
		logger:   logger,
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Check compares a plaintext password with a stored value. Recognized bcrypt
// hashes go through bcrypt's own constant-time comparison; anything else is
// treated as a legacy plaintext row and compared with subtle.ConstantTimeCompare.
func (h *bcryptHasher) Check(password, stored string) bool {
	if !h.IsLegacy(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	// Legacy plaintext fallback. Deliberate migration shim: accepted only for
	// exact equality, warned on every invocation.
	h.logger.Warn("legacy plaintext credential compared, row needs rehash")

	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// IsLegacy reports whether the stored value is not a recognized bcrypt hash.
func (h *bcryptHasher) IsLegacy(stored string) bool {
	return !strings.HasPrefix(stored, "$2a$") &&
		!strings.HasPrefix(stored, "$2b$") &&
		!strings.HasPrefix(stored, "$2y$")
}

// ValidatePasswordStrength verifies the password against the configured policy.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	policy := h.strength
	if policy == nil {
		return nil
	}

	if policy.MinLength > 0 && len(password) < policy.MinLength {
		return domainerrors.ErrPasswordStrength
	}
	if policy.MaxLength > 0 && len(password) > policy.MaxLength {
		return domainerrors.ErrPasswordStrength
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUppercase && !hasUpper {
		return domainerrors.ErrPasswordStrength
	}
	if policy.RequireLowercase && !hasLower {
		return domainerrors.ErrPasswordStrength
	}
	if policy.RequireNumbers && !hasDigit {
		return domainerrors.ErrPasswordStrength
	}
	if policy.RequireSpecial && !hasSpecial {
		return domainerrors.ErrPasswordStrength
	}

	return nil
}
