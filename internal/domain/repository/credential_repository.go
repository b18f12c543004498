// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"backoffice/internal/domain/entity"
)

// ErrCredentialNotFound is returned when no credential exists for an identity.
// The usecase layer maps it onto the unified invalid-credentials error before
// anything reaches the HTTP surface.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines the operations for password-credential persistence.
type CredentialRepository interface {
	// CreateCredential persists a new password credential.
	CreateCredential(ctx context.Context, cred *entity.Credential) error

	// FindCredentialByEmail retrieves the credential for an identity, exact match.
	FindCredentialByEmail(ctx context.Context, email string) (*entity.Credential, error)

	// UpdateCredential replaces the stored hash, used when rehashing legacy rows.
	UpdateCredential(ctx context.Context, cred *entity.Credential) error
}
