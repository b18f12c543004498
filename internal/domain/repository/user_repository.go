// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"backoffice/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a principal is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for principal persistence.
// The authentication core only ever reads through this interface.
type UserRepository interface {
	// FindByID retrieves a single principal by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single principal by their normalized email, exact match.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new principal to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing principal in the storage.
	Update(ctx context.Context, user *entity.User) error
}
