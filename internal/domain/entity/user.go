// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity of the system, representing a back-office principal.
// The authentication core reads it through the credential store and never
// mutates it except for role lookups.
type User struct {
	ID        uuid.UUID // The global unique identifier for the principal.
	Email     string    // The principal's login identity, stored normalized (trimmed, lower-cased).
	Name      string    // The principal's display name.
	BirthDate time.Time // Used by registration to enforce the minimum-age policy.
	Role      Role      // The principal's role, a closed enumerated set.
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}
