// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"backoffice/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required for a principal to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput defines the data required to register a new customer account.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	BirthDate time.Time
}

// IssueChallengeInput identifies the pending-MFA principal a one-time code
// must be generated and delivered for.
type IssueChallengeInput struct {
	PrincipalID uuid.UUID
	Identity    string
	DisplayName string
}

// VerifyCodeInput carries a code submission together with the outstanding
// challenge it is checked against. The challenge state itself lives in the
// caller's session; the usecase only judges the submission.
type VerifyCodeInput struct {
	PrincipalID uuid.UUID
	Identity    string
	Submitted   string
	Expected    string
	ExpiresAt   time.Time
}

// --- Output DTOs ---

// LoginOutput returns the authenticated principal after the secret check passed.
// The caller still has to run the one-time-code stage before granting access.
type LoginOutput struct {
	User *entity.User
}

// RegisterOutput returns the newly created principal's basic information.
type RegisterOutput struct {
	User *entity.User
}

// ChallengeOutput returns a freshly generated one-time code and its expiry,
// already delivered to the principal out-of-band.
type ChallengeOutput struct {
	Code      string
	ExpiresAt time.Time
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Login checks the identity and secret. Unknown identity and wrong secret
	// return the same error so responses cannot be used for account enumeration.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Register creates a new customer account after validating the birth date
	// and password policy.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// IssueChallenge generates a one-time code and delivers it to the
	// principal. A delivery failure is returned as an error; no code must be
	// considered outstanding in that case.
	IssueChallenge(ctx context.Context, input *IssueChallengeInput) (*ChallengeOutput, error)

	// VerifyCode judges one code submission. Every call consumes attempt
	// budget; exceeding it returns a rate-limit error carrying the cooldown.
	// A nil return means the submission is valid and the attempt counter has
	// been cleared.
	VerifyCode(ctx context.Context, input *VerifyCodeInput) error

	// RecordLogout writes the audit record for a voluntary session end.
	RecordLogout(ctx context.Context, principalID uuid.UUID, identity string)
}
