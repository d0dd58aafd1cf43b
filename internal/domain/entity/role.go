// Package entity contains the core business objects of the project.
package entity

// Role represents the access level of a user in the system.
type Role string

const (
	// RoleCustomer indicates a regular customer account.
	RoleCustomer Role = "customer"
	// RoleStaff indicates a staff member with access to the admin listing
	// and user management endpoints.
	RoleStaff Role = "staff"
	// RoleAdmin indicates a fully privileged administrator.
	RoleAdmin Role = "admin"
)

// roleLevels defines the explicit ordering of roles. Federation and
// bootstrap promotion only ever move a user upward in this ordering.
var roleLevels = map[Role]int{
	RoleCustomer: 0,
	RoleStaff:    1,
	RoleAdmin:    2,
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the numeric rank of the role within the ordering.
// Unknown roles rank below customer.
func (r Role) Level() int {
	if level, ok := roleLevels[r]; ok {
		return level
	}

	return -1
}

// AtLeast reports whether the role grants at least the access of other.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// MaxRole returns the higher-ranked of the two roles. It is the
// escalate-only-upward comparison used by the federation path: the stored
// role is never silently downgraded.
func MaxRole(a, b Role) Role {
	if b.Level() > a.Level() {
		return b
	}

	return a
}

// ParseRole converts a string into a Role, reporting whether it is valid.
func ParseRole(s string) (Role, bool) {
	role := Role(s)

	return role, role.IsValid()
}
