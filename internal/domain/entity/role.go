// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role a principal can have in the back office.
type Role string

const (
	// RoleAdministrator can manage the catalog and other back-office resources.
	RoleAdministrator Role = "administrator"
	// RoleCustomer is the default role assigned at registration.
	RoleCustomer Role = "customer"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleCustomer:
		return true
	default:
		return false
	}
}

// LandingPath returns the default destination for a freshly verified session of this role.
func (r Role) LandingPath() string {
	if r == RoleAdministrator {
		return "/admin/products"
	}

	return "/customer"
}
