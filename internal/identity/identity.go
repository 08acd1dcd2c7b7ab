// Package identity defines the authenticated caller's context. The value is
// established once at the transport boundary and threaded through every core
// call; services never re-derive it.
package identity

// Role is the closed set of caller roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string { return string(r) }

// Identity is the immutable {subject, role} pair attached to each request.
type Identity struct {
	SubjectID int64
	Role      Role
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }
