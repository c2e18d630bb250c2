// internal/app/system/authz/roles.go

// Package authz implements the organization role hierarchy and the
// membership authorization decision. Both are pure: no I/O, no mutation.
// The caller's membership set is loaded once per request elsewhere and
// passed in.
package authz

// Role is an organization-level role token. Roles travel on the wire and
// in the database as uppercase strings.
type Role string

// Organization roles, from most to least privileged.
const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// Level maps a role to its privilege level. Higher grants more. Unknown
// or corrupted tokens map to 0 so they fail every check instead of
// crashing the request.
func Level(r Role) int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleMember:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether a caller holding actual meets a required
// minimum role. A zero-value required role is satisfied by any known role.
func Satisfies(actual, required Role) bool {
	return Level(actual) >= Level(required)
}

// IsValid reports whether r is one of the defined role tokens.
func IsValid(r Role) bool { return Level(r) > 0 }
