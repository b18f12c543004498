// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential represents a principal's password credential. The stored value is
// a bcrypt hash; during the migration away from the legacy system it may still
// be a plaintext value, which the hasher accepts behind a logged compatibility
// path until every row has been rehashed.
type Credential struct {
	ID           uuid.UUID // The unique ID for this credential record itself.
	UserID       uuid.UUID // Links this credential to the User it belongs to.
	Email        string    // The identity string this credential authenticates, exact match.
	PasswordHash string    // The bcrypt-hashed secret (or a legacy plaintext value pending rehash).
	CreatedAt    time.Time // Timestamp of when this credential was created.
}
