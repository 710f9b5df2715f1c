package entity

import "strings"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleStaff        Role = "staff"
)

var roles = []Role{RoleAdmin, RoleReceptionist, RoleStaff}

// ParseRole normalises case and surrounding space before matching.
func ParseRole(s string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range roles {
		if r == candidate {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// RoleSet is the set of roles a route accepts. An empty set accepts any
// authenticated account.
type RoleSet map[Role]struct{}

func NewRoleSet(allowed ...Role) RoleSet {
	set := make(RoleSet, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Allows(r Role) bool {
	if len(s) == 0 {
		return true
	}
	normalized, ok := ParseRole(string(r))
	if !ok {
		return false
	}
	_, exists := s[normalized]
	return exists
}
