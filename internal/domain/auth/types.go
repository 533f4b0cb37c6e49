// Package auth contains domain-level types for caller identity.
// It is pure and free of framework/adapter concerns.
package auth

// Role represents an application's authorization role.
// Keep string form for easy persistence and claims mapping.
type Role string

const (
	// RoleActor is the talent side of the marketplace: browses the feed,
	// applies to jobs, withdraws applications, reads messages.
	RoleActor Role = "actor"
	// RoleHirer owns job postings and drives applications through the funnel.
	RoleHirer Role = "hirer"
	// RoleAdmin has unrestricted access; used by internal tooling.
	RoleAdmin Role = "admin"
)

// Valid returns true if the Role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleActor || r == RoleHirer || r == RoleAdmin
}

// Identity represents the authenticated principal returned by an identity provider.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID string // stable user identifier (e.g., sub claim)
	Email  string
	Role   Role
}

// IsHirer returns true if the identity carries the hirer role.
func (i Identity) IsHirer() bool { return i.Role == RoleHirer }

// IsActor returns true if the identity carries the actor role.
func (i Identity) IsActor() bool { return i.Role == RoleActor }

// IsAdmin returns true if the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
