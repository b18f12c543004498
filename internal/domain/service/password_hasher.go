// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored value. Implementations
	// must use constant-time comparison, including for legacy values that are
	// not in a recognized hash format.
	Check(password, stored string) bool

	// IsLegacy reports whether the stored value is not in the recognized hash
	// format and was therefore compared through the plaintext migration shim.
	IsLegacy(stored string) bool

	// ValidatePasswordStrength verifies the password satisfies the configured policy.
	ValidatePasswordStrength(password string) error
}
