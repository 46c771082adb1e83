package auth

// Authorize applies the route role gate.
//
// An empty required set allows everyone, including unauthenticated callers. Otherwise the
// principal must be present, must hold at least one role, and must hold any one of the
// required roles.
func Authorize(p *Principal, required RoleSet) error {
	if len(required) == 0 {
		return nil
	}
	if p == nil {
		return ErrAuthenticationRequired
	}
	if len(p.Roles) == 0 {
		return ErrNoRoleAssigned
	}
	if !p.Roles.Intersects(required) {
		return ErrInsufficientRole
	}
	return nil
}
