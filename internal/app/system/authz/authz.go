// internal/app/system/authz/authz.go
package authz

import "errors"

// Authorization failures. NotMember and InsufficientRole are surfaced to
// users identically (both "forbidden") so a non-member cannot learn
// whether an organization exists; they stay distinct here for logging.
var (
	ErrNotMember        = errors.New("caller is not a member of the organization")
	ErrInsufficientRole = errors.New("caller's role does not meet the required minimum")
)

// Membership pairs an organization id with the role the caller holds in
// it. A caller holds at most one Membership per organization.
type Membership struct {
	OrgID string
	Role  Role
}

// Authorize decides access for one (caller, org, minimum role) triple.
//
// memberships is the caller's full membership set, loaded once for the
// request. Matching is by exact org id; there is no prefix matching and
// no cross-org inheritance. If min is the zero value, any membership in
// the org suffices.
//
// On success the matching Membership is returned so the caller's role can
// be attached to the request context. On failure the error is ErrNotMember
// or ErrInsufficientRole; both are terminal for the request.
func Authorize(memberships []Membership, orgID string, min Role) (Membership, error) {
	for _, m := range memberships {
		if m.OrgID != orgID {
			continue
		}
		if min != "" && !Satisfies(m.Role, min) {
			return Membership{}, ErrInsufficientRole
		}
		return m, nil
	}
	return Membership{}, ErrNotMember
}
