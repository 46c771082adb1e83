package auth

// Package auth contains domain-level types for bearer-token authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and token claims.
type Role string

const (
	RoleUser      Role = "USER"
	RoleArtisan   Role = "ARTISAN"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// AllRoles lists the fixed role enumeration in ascending privilege order.
func AllRoles() []Role {
	return []Role{RoleUser, RoleArtisan, RoleModerator, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleArtisan, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role. Matching is exact; claims are never coerced.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains r.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Clone returns an independent copy of the set.
func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

// Intersects reports whether the two sets share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for r := range small {
		if large.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles sorted by name, which keeps JSON output and logs stable.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Strings returns the sorted roles as plain strings.
func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// String implements fmt.Stringer.
func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// ParseRoleSet converts raw role names into a RoleSet, failing on the first unknown name.
func ParseRoleSet(raw []string) (RoleSet, error) {
	set := make(RoleSet, len(raw))
	for _, name := range raw {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		set[r] = struct{}{}
	}
	return set, nil
}

// UserSnapshot is the user view embedded in a session record.
// The store is authoritative for every field here.
type UserSnapshot struct {
	UserID      string
	IsDisabled  bool
	Roles       RoleSet
	Email       string
	DisplayName string
}

// SessionRecord is the durable session as returned by the session store.
type SessionRecord struct {
	SessionID  string
	UserID     string
	IsRevoked  bool
	ExpiresAt  time.Time
	LastUsedAt time.Time
	User       UserSnapshot
}

// Principal is the authenticated caller attached to a request after every validity check passed.
type Principal struct {
	UserID      string   `json:"user_id"`
	SessionID   string   `json:"session_id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Roles       RoleSet  `json:"-"`
	RoleNames   []string `json:"roles"`
}

// NewPrincipal derives a Principal from a session record. Identity fields come from the
// store's user snapshot, never from token claims.
func NewPrincipal(rec SessionRecord) *Principal {
	roles := rec.User.Roles.Clone()
	return &Principal{
		UserID:      rec.UserID,
		SessionID:   rec.SessionID,
		Email:       rec.User.Email,
		DisplayName: rec.User.DisplayName,
		Roles:       roles,
		RoleNames:   roles.Strings(),
	}
}
